// Package reporting derives dashboard summaries and leaderboard rollups
// from the clip store. It never mutates state and tolerates slightly stale
// reads, so results may be served from a short-lived cache.
package reporting

import (
	"context"
	"sort"

	"github.com/clipzone/clipzone/internal/cache"
	"github.com/clipzone/clipzone/internal/earnings"
	"github.com/clipzone/clipzone/internal/logging"
	"github.com/clipzone/clipzone/pkg/models"
)

// DefaultTopClippersLimit caps the leaderboard when no limit is given
const DefaultTopClippersLimit = 5

// ClipSource is the read side of the clip store
type ClipSource interface {
	ListClipsByCreator(ctx context.Context, creatorID string) ([]*models.Clip, error)
	ListClipsByClipper(ctx context.Context, clipperID string) ([]*models.Clip, error)
}

// AccountSource is the read side of the account store
type AccountSource interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
}

// Reporter aggregates clip data into per-account summaries
type Reporter struct {
	clips    ClipSource
	accounts AccountSource
	cache    *cache.Cache
	logger   *logging.Logger
}

// New creates a reporter. cache may be nil to disable caching.
func New(clips ClipSource, accounts AccountSource, c *cache.Cache, logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Reporter{clips: clips, accounts: accounts, cache: c, logger: logger}
}

// ClipperSummary reports a clipper's clip counts, views, earnings and
// current balance across all their clips.
func (r *Reporter) ClipperSummary(ctx context.Context, clipperID string) (*models.ClipperSummary, error) {
	if r.cache != nil {
		if summary, err := r.cache.GetClipperSummary(ctx, clipperID); err == nil && summary != nil {
			return summary, nil
		}
	}

	account, err := r.accounts.GetAccount(ctx, clipperID)
	if err != nil {
		return nil, err
	}

	clips, err := r.clips.ListClipsByClipper(ctx, clipperID)
	if err != nil {
		return nil, err
	}

	summary := &models.ClipperSummary{Balance: account.Balance}
	for _, clip := range clips {
		summary.TotalClips++
		summary.TotalViews += clip.Views
		summary.TotalEarnings += clip.Earnings
		if clip.Status == models.ClipStatusApproved {
			summary.ApprovedClips++
		}
	}
	summary.TotalEarnings = earnings.Round(summary.TotalEarnings)

	r.storeClipperSummary(ctx, clipperID, summary)
	return summary, nil
}

// CreatorSummary reports clip counts by status, summed views and earnings
// across all clips for a creator, and the creator's current CPM. Totals
// cover every status: earnings are visible before approval.
func (r *Reporter) CreatorSummary(ctx context.Context, creatorID string) (*models.CreatorSummary, error) {
	if r.cache != nil {
		if summary, err := r.cache.GetCreatorSummary(ctx, creatorID); err == nil && summary != nil {
			return summary, nil
		}
	}

	account, err := r.accounts.GetAccount(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	clips, err := r.clips.ListClipsByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	summary := &models.CreatorSummary{CurrentCPM: account.CPM}
	for _, clip := range clips {
		summary.TotalClips++
		summary.TotalViews += clip.Views
		summary.TotalEarnings += clip.Earnings
		switch clip.Status {
		case models.ClipStatusApproved:
			summary.ApprovedClips++
		case models.ClipStatusPending:
			summary.PendingClips++
		case models.ClipStatusRejected:
			summary.RejectedClips++
		}
	}
	summary.TotalEarnings = earnings.Round(summary.TotalEarnings)

	r.storeCreatorSummary(ctx, creatorID, summary)
	return summary, nil
}

// TopClippers groups a creator's clips by clipper, sums views, earnings
// and clip counts per group, and returns at most limit rows ordered by
// descending views, joined with each clipper's profile. Clippers with no
// clips for the creator never appear.
func (r *Reporter) TopClippers(ctx context.Context, creatorID string, limit int) ([]*models.TopClipper, error) {
	if limit <= 0 {
		limit = DefaultTopClippersLimit
	}

	if r.cache != nil {
		if rows, err := r.cache.GetTopClippers(ctx, creatorID, limit); err == nil && rows != nil {
			return rows, nil
		}
	}

	clips, err := r.clips.ListClipsByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*models.TopClipper)
	var order []string
	for _, clip := range clips {
		group, ok := groups[clip.ClipperID]
		if !ok {
			group = &models.TopClipper{ClipperID: clip.ClipperID}
			groups[clip.ClipperID] = group
			order = append(order, clip.ClipperID)
		}
		group.TotalViews += clip.Views
		group.TotalEarnings += clip.Earnings
		group.ClipCount++
	}

	rows := make([]*models.TopClipper, 0, len(groups))
	for _, id := range order {
		group := groups[id]
		group.TotalEarnings = earnings.Round(group.TotalEarnings)
		rows = append(rows, group)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalViews > rows[j].TotalViews })
	if len(rows) > limit {
		rows = rows[:limit]
	}

	for _, row := range rows {
		account, err := r.accounts.GetAccount(ctx, row.ClipperID)
		if err != nil {
			// Profile join is best effort; the rollup stands on its own.
			row.Name = "Clipper"
			continue
		}
		row.Name = account.Name
		row.PortfolioURL = account.PortfolioURL
	}

	r.storeTopClippers(ctx, creatorID, limit, rows)
	return rows, nil
}

// ClipsForClipper lists a clipper's clips for their dashboard
func (r *Reporter) ClipsForClipper(ctx context.Context, clipperID string) ([]*models.Clip, error) {
	return r.clips.ListClipsByClipper(ctx, clipperID)
}

// ClipsForCreator lists all clips submitted for a creator
func (r *Reporter) ClipsForCreator(ctx context.Context, creatorID string) ([]*models.Clip, error) {
	return r.clips.ListClipsByCreator(ctx, creatorID)
}

func (r *Reporter) storeClipperSummary(ctx context.Context, clipperID string, summary *models.ClipperSummary) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetClipperSummary(ctx, clipperID, summary); err != nil {
		r.logger.WithAccountID(clipperID).ErrorWithErr("Failed to cache clipper summary", err)
	}
}

func (r *Reporter) storeCreatorSummary(ctx context.Context, creatorID string, summary *models.CreatorSummary) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetCreatorSummary(ctx, creatorID, summary); err != nil {
		r.logger.WithAccountID(creatorID).ErrorWithErr("Failed to cache creator summary", err)
	}
}

func (r *Reporter) storeTopClippers(ctx context.Context, creatorID string, limit int, rows []*models.TopClipper) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetTopClippers(ctx, creatorID, limit, rows); err != nil {
		r.logger.WithAccountID(creatorID).ErrorWithErr("Failed to cache top clippers", err)
	}
}
