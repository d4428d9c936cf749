package request

// IDSource yields request identifiers. Nodes echo reqId back, so callers can
// correlate replies; uniqueness per submitter is all that matters.
type IDSource interface {
	ReqID() uint32
}
