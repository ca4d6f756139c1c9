package models

import "time"

// ClipperSummary aggregates a clipper's performance across all their clips
type ClipperSummary struct {
	TotalClips    int     `json:"total_clips"`
	ApprovedClips int     `json:"approved_clips"`
	TotalViews    int64   `json:"total_views"`
	TotalEarnings float64 `json:"total_earnings"`
	Balance       float64 `json:"balance"`
}

// CreatorSummary aggregates all clips submitted for a creator.
// Totals cover every status, not just approved clips.
type CreatorSummary struct {
	TotalClips    int     `json:"total_clips"`
	ApprovedClips int     `json:"approved_clips"`
	PendingClips  int     `json:"pending_clips"`
	RejectedClips int     `json:"rejected_clips"`
	TotalViews    int64   `json:"total_views"`
	TotalEarnings float64 `json:"total_earnings"`
	CurrentCPM    float64 `json:"current_cpm"`
}

// TopClipper is one leaderboard row for a creator's dashboard
type TopClipper struct {
	ClipperID     string  `json:"clipper_id"`
	Name          string  `json:"name"`
	PortfolioURL  string  `json:"portfolio_url,omitempty"`
	TotalViews    int64   `json:"total_views"`
	TotalEarnings float64 `json:"total_earnings"`
	ClipCount     int     `json:"clip_count"`
}

// SettlementEvent is published when a clip is approved for the first time
// and its earnings are credited to the clipper's balance.
type SettlementEvent struct {
	ClipID     string    `json:"clip_id"`
	CreatorID  string    `json:"creator_id"`
	ClipperID  string    `json:"clipper_id"`
	Views      int64     `json:"views"`
	Earnings   float64   `json:"earnings"`
	OccurredAt time.Time `json:"occurred_at"`
}
