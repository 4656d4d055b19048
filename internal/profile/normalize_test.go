package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DisplayNameDerivation(t *testing.T) {
	tests := []struct {
		name string
		raw  *RawProfile
		want string
	}{
		{
			name: "explicit display name wins",
			raw:  &RawProfile{DisplayName: "Ace", Name: "Alex", Email: "a@x.com"},
			want: "Ace",
		},
		{
			name: "name when display name absent",
			raw:  &RawProfile{Name: "Alex", Email: "a@x.com"},
			want: "Alex",
		},
		{
			name: "email when display name and name absent",
			raw:  &RawProfile{Email: "a@x.com"},
			want: "a@x.com",
		},
		{
			name: "whitespace-only fields are treated as absent",
			raw:  &RawProfile{DisplayName: "   ", Name: "\t", Email: "a@x.com"},
			want: "a@x.com",
		},
		{
			name: "placeholder when every candidate is absent",
			raw:  &RawProfile{},
			want: "User u-123456",
		},
		{
			name: "nil raw yields placeholder",
			raw:  nil,
			want: "User u-123456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := Normalize("u-12345678", tt.raw)
			assert.Equal(t, tt.want, resolved.DisplayName)
			assert.Equal(t, "u-12345678", resolved.UserID)
		})
	}
}

func TestNormalize_FieldsDegradeToUnknown(t *testing.T) {
	resolved := Normalize("u-1", &RawProfile{Name: "Alex", Country: "NZ"})

	assert.Equal(t, "Alex", resolved.Name)
	assert.Equal(t, "NZ", resolved.Country)
	assert.Equal(t, Unknown, resolved.Email)
	assert.Equal(t, Unknown, resolved.Bio)
	assert.Equal(t, Unknown, resolved.AvatarURL)
	assert.Equal(t, Unknown, resolved.Timezone)
	assert.Equal(t, Unknown, resolved.CountryDisplay)
	assert.False(t, resolved.HasAvatar)
}

func TestNormalize_HasAvatar(t *testing.T) {
	withAvatar := Normalize("u-1", &RawProfile{AvatarURL: "https://cdn.example/a.png"})
	require.True(t, withAvatar.HasAvatar)
	assert.Equal(t, "https://cdn.example/a.png", withAvatar.AvatarURL)

	withoutAvatar := Normalize("u-1", &RawProfile{AvatarURL: "  "})
	assert.False(t, withoutAvatar.HasAvatar)
	assert.Equal(t, Unknown, withoutAvatar.AvatarURL)
}

func TestFallback_Deterministic(t *testing.T) {
	first := Fallback("u-12345678")
	second := Fallback("u-12345678")
	assert.Equal(t, first, second)
	assert.Equal(t, "User u-123456", first.DisplayName)
	assert.False(t, first.HasAvatar)
}

func TestFallback_ShortIdentifier(t *testing.T) {
	resolved := Fallback("u-1")
	assert.Equal(t, "User u-1", resolved.DisplayName)
}

func TestNormalize_EmptyIdentifier(t *testing.T) {
	// Bad input is degraded, never rejected.
	resolved := Normalize("", nil)
	assert.Equal(t, "", resolved.UserID)
	assert.Equal(t, "User ", resolved.DisplayName)
}
