// Package engine implements the clip lifecycle and earnings settlement
// rules: clip submission, moderation state transitions, CPM snapshots and
// the credit-once rule for clipper balances.
package engine

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/clipzone/clipzone/internal/apperr"
	"github.com/clipzone/clipzone/internal/earnings"
	"github.com/clipzone/clipzone/internal/logging"
	"github.com/clipzone/clipzone/internal/metrics"
	"github.com/clipzone/clipzone/internal/tracing"
	"github.com/clipzone/clipzone/pkg/models"
	"github.com/google/uuid"
)

// AccountStore is the account persistence the engine depends on
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	SetCPM(ctx context.Context, id string, cpm float64) error
}

// ClipStore is the clip persistence the engine depends on. ModerateClip
// must apply the clip write and the conditional balance credit as a single
// unit of work, guarded on the prior status.
type ClipStore interface {
	CreateClip(ctx context.Context, clip *models.Clip) error
	GetClip(ctx context.Context, id string) (*models.Clip, error)
	ModerateClip(ctx context.Context, clip *models.Clip, prior models.ClipStatus, credit bool) error
}

// EventPublisher receives settlement events when a clip is first approved
type EventPublisher interface {
	PublishSettlement(ctx context.Context, event models.SettlementEvent) error
}

// Engine orchestrates moderation decisions against the stores
type Engine struct {
	accounts AccountStore
	clips    ClipStore
	events   EventPublisher
	logger   *logging.Logger
}

// New creates a new engine. events may be nil when no settlement
// notification pipeline is configured.
func New(accounts AccountStore, clips ClipStore, events EventPublisher, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		accounts: accounts,
		clips:    clips,
		events:   events,
		logger:   logger,
	}
}

// SubmitClip creates a pending clip for a creator, snapshotting the
// creator's current CPM and computing initial earnings from it.
func (e *Engine) SubmitClip(ctx context.Context, clipperID, creatorID, title, mediaRef string, views int64) (*models.Clip, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.SubmitClip")
	defer tracing.FinishSpan(span)

	title = strings.TrimSpace(title)
	mediaRef = strings.TrimSpace(mediaRef)

	if title == "" {
		return nil, apperr.New(apperr.KindValidation, "title is required")
	}
	if mediaRef == "" {
		return nil, apperr.New(apperr.KindValidation, "media reference is required")
	}
	if views < 0 {
		return nil, apperr.New(apperr.KindValidation, "views must be non-negative")
	}

	clipper, err := e.accounts.GetAccount(ctx, clipperID)
	if err != nil {
		return nil, err
	}
	if clipper.Role == models.RoleCreator {
		return nil, apperr.New(apperr.KindForbidden, "creators cannot submit clips")
	}

	creator, err := e.accounts.GetAccount(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator.Role != models.RoleCreator {
		return nil, apperr.New(apperr.KindValidation, "target account is not a creator")
	}

	clip := &models.Clip{
		ID:          uuid.New().String(),
		CreatorID:   creator.ID,
		ClipperID:   clipper.ID,
		Title:       title,
		MediaRef:    mediaRef,
		Views:       views,
		Status:      models.ClipStatusPending,
		CPMSnapshot: creator.CPM,
		Earnings:    earnings.Compute(views, creator.CPM),
	}

	if err := e.clips.CreateClip(ctx, clip); err != nil {
		return nil, err
	}

	metrics.ClipSubmissionsTotal.Inc()
	e.logger.WithClipID(clip.ID).WithAccountID(clipper.ID).Infof("Clip submitted for creator %s", creator.ID)

	return clip, nil
}

// Moderate applies a moderation decision to a clip. Only the owning
// creator may moderate. The CPM snapshot is refreshed from the creator's
// current rate, earnings are recomputed, and the clipper's balance is
// credited exactly when the clip moves from a non-approved status into
// approved. A previously approved clip never re-credits and never debits,
// regardless of later status or view changes.
func (e *Engine) Moderate(ctx context.Context, clipID, actorID, status string, newViews *int64) (*models.Clip, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.Moderate")
	defer tracing.FinishSpan(span)

	clip, err := e.clips.GetClip(ctx, clipID)
	if err != nil {
		return nil, err
	}

	if clip.CreatorID != actorID {
		return nil, apperr.New(apperr.KindForbidden, "clip does not belong to this creator")
	}

	newStatus, ok := models.ParseClipStatus(status)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, "unknown clip status %q", status)
	}

	if newViews != nil {
		if *newViews < 0 {
			return nil, apperr.New(apperr.KindValidation, "views must be non-negative")
		}
		clip.Views = *newViews
	}

	// Moderation always settles at the creator's current rate, not the
	// rate captured at submission.
	creator, err := e.accounts.GetAccount(ctx, clip.CreatorID)
	if err != nil {
		return nil, err
	}
	clip.CPMSnapshot = creator.CPM
	clip.Earnings = earnings.Compute(clip.Views, clip.CPMSnapshot)

	prior := clip.Status
	clip.Status = newStatus
	credit := prior != models.ClipStatusApproved && newStatus == models.ClipStatusApproved

	if err := e.clips.ModerateClip(ctx, clip, prior, credit); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			metrics.ModerationConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.ModerationsTotal.WithLabelValues(string(newStatus)).Inc()
	e.logger.LogModeration(clip.ID, string(prior), string(newStatus), credit, clip.Earnings)

	if credit {
		metrics.CreditsTotal.Inc()
		metrics.CreditedAmountTotal.Add(clip.Earnings)
		e.logger.LogCredit(clip.ClipperID, clip.ID, clip.Earnings)
		e.publishSettlement(ctx, clip)
	}

	return clip, nil
}

// SetCPM updates a creator's rate. The change affects only future
// moderations; existing clip snapshots keep their recorded rate.
func (e *Engine) SetCPM(ctx context.Context, creatorID string, cpm float64) (float64, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.SetCPM")
	defer tracing.FinishSpan(span)

	if math.IsNaN(cpm) || math.IsInf(cpm, 0) || cpm <= 0 {
		return 0, apperr.New(apperr.KindValidation, "cpm must be a finite positive number")
	}

	account, err := e.accounts.GetAccount(ctx, creatorID)
	if err != nil {
		return 0, err
	}
	if account.Role != models.RoleCreator {
		return 0, apperr.New(apperr.KindValidation, "account is not a creator")
	}

	if err := e.accounts.SetCPM(ctx, creatorID, cpm); err != nil {
		return 0, err
	}

	e.logger.WithAccountID(creatorID).Infof("CPM updated to %.2f", cpm)
	return cpm, nil
}

// publishSettlement emits a notification event for a fresh approval. The
// credit is already durable, so a publish failure is logged and swallowed.
func (e *Engine) publishSettlement(ctx context.Context, clip *models.Clip) {
	if e.events == nil {
		return
	}

	event := models.SettlementEvent{
		ClipID:     clip.ID,
		CreatorID:  clip.CreatorID,
		ClipperID:  clip.ClipperID,
		Views:      clip.Views,
		Earnings:   clip.Earnings,
		OccurredAt: time.Now().UTC(),
	}

	if err := e.events.PublishSettlement(ctx, event); err != nil {
		e.logger.WithClipID(clip.ID).ErrorWithErr("Failed to publish settlement event", err)
		return
	}
	metrics.SettlementEventsPublished.Inc()
}
