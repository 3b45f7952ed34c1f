package models

// SignUpRequest is the registration form. Registration does not start a
// session in this API shape; the response is a confirmation payload only.
type SignUpRequest struct {
	Email           string `json:"email"`
	DisplayName     string `json:"display_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpConfirmation is the registration response.
type SignUpConfirmation struct {
	Detail string      `json:"detail"`
	Data   *SignUpData `json:"data,omitempty"`
}

type SignUpData struct {
	Email                     string `json:"email"`
	VerificationTokenExpires  int    `json:"verification_token_expires_in"`
}

// Result is the UI-facing outcome of signUp/login. These operations never
// propagate errors; all outcomes are folded into a Result.
type Result struct {
	Success     bool
	Detail      string
	Error       string
	FieldErrors map[string][]string
}
