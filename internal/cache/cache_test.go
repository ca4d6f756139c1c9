package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipzone/clipzone/pkg/models"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	c, err := NewCache(mr.Host(), port, "", 0, 30*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestClipperSummaryRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	summary := &models.ClipperSummary{
		TotalClips:    3,
		ApprovedClips: 2,
		TotalViews:    15000,
		TotalEarnings: 75,
		Balance:       50,
	}
	require.NoError(t, c.SetClipperSummary(ctx, "clipper-1", summary))

	got, err := c.GetClipperSummary(ctx, "clipper-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}

func TestGetClipperSummaryMiss(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.GetClipperSummary(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreatorSummaryRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	summary := &models.CreatorSummary{
		TotalClips:    4,
		ApprovedClips: 2,
		PendingClips:  1,
		RejectedClips: 1,
		TotalViews:    40000,
		TotalEarnings: 200,
		CurrentCPM:    5,
	}
	require.NoError(t, c.SetCreatorSummary(ctx, "creator-1", summary))

	got, err := c.GetCreatorSummary(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}

func TestTopClippersRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	rows := []*models.TopClipper{
		{ClipperID: "k1", Name: "First", TotalViews: 9000, TotalEarnings: 45, ClipCount: 2},
		{ClipperID: "k2", Name: "Second", TotalViews: 4000, TotalEarnings: 20, ClipCount: 1},
	}
	require.NoError(t, c.SetTopClippers(ctx, "creator-1", 5, rows))

	got, err := c.GetTopClippers(ctx, "creator-1", 5)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	// A different limit is a different cache entry
	got, err = c.GetTopClippers(ctx, "creator-1", 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetClipperSummary(ctx, "clipper-1", &models.ClipperSummary{TotalClips: 1}))

	mr.FastForward(time.Minute)

	got, err := c.GetClipperSummary(ctx, "clipper-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvalidateAccount(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetClipperSummary(ctx, "acct-1", &models.ClipperSummary{TotalClips: 1}))
	require.NoError(t, c.SetCreatorSummary(ctx, "acct-1", &models.CreatorSummary{TotalClips: 1}))
	require.NoError(t, c.SetTopClippers(ctx, "acct-1", 5, []*models.TopClipper{{ClipperID: "k1"}}))
	require.NoError(t, c.SetCreatorSummary(ctx, "acct-2", &models.CreatorSummary{TotalClips: 2}))

	require.NoError(t, c.InvalidateAccount(ctx, "acct-1"))

	clipper, err := c.GetClipperSummary(ctx, "acct-1")
	require.NoError(t, err)
	assert.Nil(t, clipper)

	creator, err := c.GetCreatorSummary(ctx, "acct-1")
	require.NoError(t, err)
	assert.Nil(t, creator)

	top, err := c.GetTopClippers(ctx, "acct-1", 5)
	require.NoError(t, err)
	assert.Nil(t, top)

	// Unrelated accounts keep their entries
	other, err := c.GetCreatorSummary(ctx, "acct-2")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, 2, other.TotalClips)
}
