package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// Role represents an account role
type Role string

const (
	RoleCreator Role = "creator"
	RoleClipper Role = "clipper"
	RoleAdmin   Role = "admin"
)

// DefaultCPM is the rate assigned to newly created creator accounts.
const DefaultCPM = 5.0

// ParseRole normalizes an untrusted role string into a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCreator:
		return RoleCreator, true
	case RoleClipper:
		return RoleClipper, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Account represents a creator or clipper profile in the system
type Account struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Role         Role        `json:"role" db:"role"`
	CPM          float64     `json:"cpm" db:"cpm"`
	Balance      float64     `json:"balance" db:"balance"`
	ProfilePic   string      `json:"profile_pic,omitempty" db:"profile_pic"`
	PortfolioURL string      `json:"portfolio_url,omitempty" db:"portfolio_url"`
	SocialLinks  SocialLinks `json:"social_links" db:"social_links"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// SocialLinks holds a creator's public channel links
type SocialLinks struct {
	YouTube string `json:"youtube,omitempty"`
	Twitch  string `json:"twitch,omitempty"`
	TikTok  string `json:"tiktok,omitempty"`
}

// Value implements driver.Valuer for database storage
func (s SocialLinks) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *SocialLinks) Scan(value interface{}) error {
	if value == nil {
		*s = SocialLinks{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, s)
}
