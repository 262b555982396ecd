package authapi

import "time"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type logoutResponse struct {
	Success bool   `json:"success"`
	Partial bool   `json:"partial,omitempty"`
	Message string `json:"message"`
}

// validateResponse is only ever written for an authenticated session.
// Every denial uses the shared error envelope with one indistinguishable
// body; the status taxonomy stays in logs and metrics.
type validateResponse struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type linkInitiateRequest struct {
	Email string `json:"email"`
}

type linkConsumeRequest struct {
	Token string `json:"token"`
}

type resetCompleteRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type messageResponse struct {
	Message string `json:"message"`
}
