// Package memstore provides in-memory account and clip stores with the
// same contracts as the postgres repository. Used by tests and local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clipzone/clipzone/internal/apperr"
	"github.com/clipzone/clipzone/internal/earnings"
	"github.com/clipzone/clipzone/pkg/models"
	"github.com/google/uuid"
)

// Store holds accounts and clips behind a single mutex, so the moderation
// write and the conditional balance credit are one atomic unit, matching
// the postgres transaction.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	clips    map[string]*models.Clip
	byEmail  map[string]string
}

// New creates an empty store
func New() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		clips:    make(map[string]*models.Clip),
		byEmail:  make(map[string]string),
	}
}

// Health reports the store as always reachable
func (s *Store) Health(ctx context.Context) error {
	return nil
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

func copyClip(c *models.Clip) *models.Clip {
	cp := *c
	return &cp
}

// CreateAccount creates a new account record
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if _, exists := s.byEmail[account.Email]; exists {
		return apperr.New(apperr.KindConflict, "email already registered")
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	s.accounts[account.ID] = copyAccount(account)
	s.byEmail[account.Email] = account.ID
	return nil
}

// GetAccount retrieves an account by ID
func (s *Store) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "account not found")
	}
	return copyAccount(account), nil
}

// GetAccountByEmail retrieves an account by email
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "account not found")
	}
	return copyAccount(s.accounts[id]), nil
}

// ListCreators retrieves all creator-role accounts ordered by name
func (s *Store) ListCreators(ctx context.Context) ([]*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var creators []*models.Account
	for _, account := range s.accounts {
		if account.Role == models.RoleCreator {
			creators = append(creators, copyAccount(account))
		}
	}
	sort.Slice(creators, func(i, j int) bool { return creators[i].Name < creators[j].Name })
	return creators, nil
}

// SetCPM updates a creator's CPM rate
func (s *Store) SetCPM(ctx context.Context, id string, cpm float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "account not found")
	}
	account.CPM = cpm
	account.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateClip creates a new clip record
func (s *Store) CreateClip(ctx context.Context, clip *models.Clip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if clip.ID == "" {
		clip.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	clip.CreatedAt = now
	clip.UpdatedAt = now

	s.clips[clip.ID] = copyClip(clip)
	return nil
}

// GetClip retrieves a clip by ID
func (s *Store) GetClip(ctx context.Context, id string) (*models.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, ok := s.clips[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "clip not found")
	}
	return copyClip(clip), nil
}

// ModerateClip persists a moderation decision, crediting the clipper's
// balance in the same critical section when credit is set. The stored
// status must still equal the status the decision was made against.
func (s *Store) ModerateClip(ctx context.Context, clip *models.Clip, prior models.ClipStatus, credit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.clips[clip.ID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "clip not found")
	}
	if stored.Status != prior {
		return apperr.New(apperr.KindConflict, "clip was modified concurrently")
	}

	now := time.Now().UTC()
	stored.Status = clip.Status
	stored.Views = clip.Views
	stored.CPMSnapshot = clip.CPMSnapshot
	stored.Earnings = clip.Earnings
	stored.UpdatedAt = now
	clip.UpdatedAt = now

	if credit {
		clipper, ok := s.accounts[clip.ClipperID]
		if !ok {
			return apperr.New(apperr.KindNotFound, "clipper account not found")
		}
		clipper.Balance = earnings.Round(clipper.Balance + clip.Earnings)
		clipper.UpdatedAt = now
	}

	return nil
}

// ListClipsByCreator retrieves all clips submitted for a creator
func (s *Store) ListClipsByCreator(ctx context.Context, creatorID string) ([]*models.Clip, error) {
	return s.listClips(func(c *models.Clip) bool { return c.CreatorID == creatorID })
}

// ListClipsByClipper retrieves all clips owned by a clipper
func (s *Store) ListClipsByClipper(ctx context.Context, clipperID string) ([]*models.Clip, error) {
	return s.listClips(func(c *models.Clip) bool { return c.ClipperID == clipperID })
}

func (s *Store) listClips(match func(*models.Clip) bool) ([]*models.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var clips []*models.Clip
	for _, clip := range s.clips {
		if match(clip) {
			clips = append(clips, copyClip(clip))
		}
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].CreatedAt.After(clips[j].CreatedAt) })
	return clips, nil
}
