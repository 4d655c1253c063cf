package payments

// SessionRequest carries everything needed to open a remote charge session.
// Amounts are in the currency's minor unit, the way gateways want them.
// Metadata is echoed back by the gateway so the remote side can reconcile the
// two legs of a split payment after confirmation.
type SessionRequest struct {
	Reference   string
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Session is the handle the gateway returns: an identifier for later lookup
// and the URL the shopper is sent to.
type Session struct {
	ID  string
	URL string
}

// SessionStatus is the gateway's own word on a session, fetched from its
// status API. Paid means the charge actually went through; the shopper's
// redirect alone proves nothing.
type SessionStatus struct {
	ID   string
	Paid bool
}
