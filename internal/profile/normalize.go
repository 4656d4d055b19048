package profile

import "strings"

// Normalize turns a raw, possibly-incomplete record into a complete
// display-ready profile. It is pure and total: malformed or missing input
// degrades to Unknown fields, never to an error. A nil raw yields the
// fallback profile for the identifier.
func Normalize(id string, raw *RawProfile) ResolvedProfile {
	if raw == nil {
		return Fallback(id)
	}

	resolved := ResolvedProfile{
		UserID:         id,
		Name:           fieldOrUnknown(raw.Name),
		Email:          fieldOrUnknown(raw.Email),
		Country:        fieldOrUnknown(raw.Country),
		Bio:            fieldOrUnknown(raw.Bio),
		AvatarURL:      fieldOrUnknown(raw.AvatarURL),
		Timezone:       fieldOrUnknown(raw.Timezone),
		CountryDisplay: fieldOrUnknown(raw.CountryDisplay),
	}
	resolved.DisplayName = deriveDisplayName(id, raw)
	resolved.HasAvatar = resolved.AvatarURL != Unknown
	return resolved
}

// Fallback builds the profile returned when no raw data exists for an
// identifier. Deterministic: the same identifier always produces the same
// placeholder display name.
func Fallback(id string) ResolvedProfile {
	return ResolvedProfile{
		UserID:         id,
		Name:           Unknown,
		Email:          Unknown,
		DisplayName:    placeholder(id),
		Country:        Unknown,
		Bio:            Unknown,
		AvatarURL:      Unknown,
		Timezone:       Unknown,
		CountryDisplay: Unknown,
		HasAvatar:      false,
	}
}

// deriveDisplayName picks the first concrete value in precedence order:
// explicit display name, name, email, then the identifier placeholder.
func deriveDisplayName(id string, raw *RawProfile) string {
	for _, candidate := range []string{raw.DisplayName, raw.Name, raw.Email} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return placeholder(id)
}

func placeholder(id string) string {
	prefix := id
	if len(prefix) > placeholderPrefixLen {
		prefix = prefix[:placeholderPrefixLen]
	}
	return "User " + prefix
}

func fieldOrUnknown(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return Unknown
}
