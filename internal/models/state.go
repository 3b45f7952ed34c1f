package models

// AuthStatus is the current authentication verdict.
//
// StatusUnknown is the only legal initial value and means "not yet
// determined", distinct from StatusUnauthenticated ("determined: no
// session"). Once a determinate status is reached the status only
// oscillates between Authenticated and Unauthenticated; it never returns
// to Unknown except through a full reset.
type AuthStatus int

const (
	StatusUnknown AuthStatus = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthState is an immutable snapshot of the authentication state.
//
// Invariants:
//   - User is non-nil only when Status == StatusAuthenticated.
//   - The profile fields (Roles through RedirectTo) are populated together
//     from a single server response, or nil together. Never partially.
type AuthState struct {
	Status AuthStatus
	User   *User
	Error  string

	Roles              []string
	ProfileComplete    map[string]bool
	OnboardingComplete *bool
	AppAccess          *string
	AvailableRoles     []string
	IncompleteRoles    []string
	Mode               *string
	ViewType           *string
	RedirectTo         *string
}

// Clone returns a deep copy so callers can never mutate shared state.
func (s AuthState) Clone() AuthState {
	out := s

	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.Roles = cloneSlice(s.Roles)
	out.AvailableRoles = cloneSlice(s.AvailableRoles)
	out.IncompleteRoles = cloneSlice(s.IncompleteRoles)

	if s.ProfileComplete != nil {
		m := make(map[string]bool, len(s.ProfileComplete))
		for k, v := range s.ProfileComplete {
			m[k] = v
		}
		out.ProfileComplete = m
	}
	out.OnboardingComplete = clonePtr(s.OnboardingComplete)
	out.AppAccess = clonePtr(s.AppAccess)
	out.Mode = clonePtr(s.Mode)
	out.ViewType = clonePtr(s.ViewType)
	out.RedirectTo = clonePtr(s.RedirectTo)

	return out
}

func cloneSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
