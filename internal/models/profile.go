package models

// ProfileSnapshot is the canonical profile-shaped payload returned by the
// login and me endpoints, and the record persisted alongside the token so
// the UI can paint without a network round trip.
type ProfileSnapshot struct {
	User               User            `json:"user"`
	Roles              []string        `json:"roles"`
	ProfileComplete    map[string]bool `json:"profile_complete"`
	OnboardingComplete bool            `json:"onboarding_complete"`
	IncompleteRoles    []string        `json:"incomplete_roles"`
	AppAccess          string          `json:"app_access"`
	RedirectTo         string          `json:"redirect_to"`

	// Present on the me endpoint only.
	Mode           string   `json:"mode,omitempty"`
	AvailableRoles []string `json:"available_roles,omitempty"`
	RemovableRoles []string `json:"removable_roles,omitempty"`
	ViewType       string   `json:"viewType,omitempty"`
}

// LoginPayload is the login response: a profile snapshot plus the bearer
// token that starts the session.
type LoginPayload struct {
	Token string `json:"token"`
	ProfileSnapshot
}
