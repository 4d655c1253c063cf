package auth

// Authenticator issues and validates the bearer tokens that tie requests to a
// cart session.
type Authenticator interface {
	GenerateSessionToken(sessionID string) (string, error)
	ValidateSessionToken(token string) (string, error)
}
