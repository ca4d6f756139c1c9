package models

import (
	"strings"
	"time"
)

// ClipStatus represents a clip's moderation state
type ClipStatus string

const (
	ClipStatusPending  ClipStatus = "pending"
	ClipStatusApproved ClipStatus = "approved"
	ClipStatusRejected ClipStatus = "rejected"
)

// ParseClipStatus normalizes an untrusted status string into a ClipStatus.
func ParseClipStatus(s string) (ClipStatus, bool) {
	switch ClipStatus(strings.ToLower(strings.TrimSpace(s))) {
	case ClipStatusPending:
		return ClipStatusPending, true
	case ClipStatusApproved:
		return ClipStatusApproved, true
	case ClipStatusRejected:
		return ClipStatusRejected, true
	default:
		return "", false
	}
}

// Clip represents a reposted clip submitted by a clipper for a creator.
// CPMSnapshot holds the creator's rate at the last earnings computation,
// which may lag behind the creator's current CPM until the next moderation.
type Clip struct {
	ID          string     `json:"id" db:"id"`
	CreatorID   string     `json:"creator_id" db:"creator_id"`
	ClipperID   string     `json:"clipper_id" db:"clipper_id"`
	Title       string     `json:"title" db:"title"`
	MediaRef    string     `json:"media_ref" db:"media_ref"`
	Views       int64      `json:"views" db:"views"`
	Status      ClipStatus `json:"status" db:"status"`
	CPMSnapshot float64    `json:"cpm_snapshot" db:"cpm_snapshot"`
	Earnings    float64    `json:"earnings" db:"earnings"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
