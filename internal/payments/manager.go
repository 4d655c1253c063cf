package payments

import (
	"context"
	"fmt"
)

// PaymentManager routes session creation to a registered provider by name, so
// the checkout flow never hard-codes a gateway.
type PaymentManager struct {
	gateways map[string]PaymentGateway
}

func NewPaymentManager() *PaymentManager {
	return &PaymentManager{gateways: make(map[string]PaymentGateway)}
}

func (m *PaymentManager) RegisterGateway(name string, gateway PaymentGateway) {
	m.gateways[name] = gateway
}

func (m *PaymentManager) CreateSession(ctx context.Context, method string, req SessionRequest) (Session, error) {
	gateway, ok := m.gateways[method]
	if !ok {
		return Session{}, fmt.Errorf("gateway not registered: %s", method)
	}
	return gateway.CreateSession(ctx, req)
}

func (m *PaymentManager) VerifySession(ctx context.Context, method, sessionID string) (SessionStatus, error) {
	gateway, ok := m.gateways[method]
	if !ok {
		return SessionStatus{}, fmt.Errorf("gateway not registered: %s", method)
	}
	return gateway.VerifySession(ctx, sessionID)
}
