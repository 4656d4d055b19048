package profile

// Unknown marks a semantic field for which no concrete data is available.
// Resolved profiles are structurally complete: absent data is carried as
// this marker, never as a missing field.
const Unknown = "Unknown"

// placeholderPrefixLen bounds how much of the identifier leaks into the
// display-name placeholder.
const placeholderPrefixLen = 8

// RawProfile is a possibly-incomplete profile record as delivered by a
// profile source or snapshot store. Empty string means "field absent".
type RawProfile struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	Country        string `json:"country,omitempty"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	CountryDisplay string `json:"country_display,omitempty"`
}

// ResolvedProfile is the display-ready output of normalization. Every field
// is populated; DisplayName is always derived and never Unknown.
type ResolvedProfile struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	DisplayName    string `json:"display_name"`
	Country        string `json:"country"`
	Bio            string `json:"bio"`
	AvatarURL      string `json:"avatar_url"`
	Timezone       string `json:"timezone"`
	CountryDisplay string `json:"country_display"`
	HasAvatar      bool   `json:"has_avatar"`
}
