package payments

import "context"

// PaymentGateway is the common interface over external charge providers.
// VerifySession is the source of truth for settlement: return redirects are
// only confirmed after the provider's status API says the session is paid.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	VerifySession(ctx context.Context, sessionID string) (SessionStatus, error)
}
