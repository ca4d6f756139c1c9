package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("creator")
	assert.True(t, ok)
	assert.Equal(t, RoleCreator, role)

	role, ok = ParseRole("  Clipper ")
	assert.True(t, ok)
	assert.Equal(t, RoleClipper, role)

	_, ok = ParseRole("moderator")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestParseClipStatus(t *testing.T) {
	status, ok := ParseClipStatus("APPROVED")
	assert.True(t, ok)
	assert.Equal(t, ClipStatusApproved, status)

	status, ok = ParseClipStatus("pending")
	assert.True(t, ok)
	assert.Equal(t, ClipStatusPending, status)

	_, ok = ParseClipStatus("published")
	assert.False(t, ok)
}

func TestAccountJSONHidesPasswordHash(t *testing.T) {
	account := Account{ID: "a1", Email: "a@example.com", PasswordHash: "secret"}

	data, err := json.Marshal(account)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestSocialLinksRoundTrip(t *testing.T) {
	links := SocialLinks{YouTube: "https://youtube.com/@c", TikTok: "https://tiktok.com/@c"}

	value, err := links.Value()
	require.NoError(t, err)

	var scanned SocialLinks
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, links, scanned)
}

func TestSocialLinksScanNil(t *testing.T) {
	scanned := SocialLinks{YouTube: "stale"}
	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, SocialLinks{}, scanned)
}
