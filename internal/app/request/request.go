package request

const protocolVersion = 2

// Request is the submission envelope ledger nodes expect. Operation carries
// the per-type payload; nodes echo reqId back in the reply.
type Request struct {
	Operation       any    `json:"operation"`
	Identifier      string `json:"identifier,omitempty"`
	ReqID           uint32 `json:"reqId"`
	ProtocolVersion int    `json:"protocolVersion"`
}

type Operation struct {
	Type string `json:"type"`
}

type nymOperation struct {
	Operation `json:",inline"`
	Dest      string `json:"dest"`
}

type attrOperation struct {
	Operation `json:",inline"`
	Dest      string `json:"dest"`
	Raw       string `json:"raw,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Enc       string `json:"enc,omitempty"`
}

type schemaOperation struct {
	Operation `json:",inline"`
	Dest      string    `json:"dest"`
	Data      schemaKey `json:"data"`
}

type schemaKey struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type claimDefOperation struct {
	Operation     `json:",inline"`
	Origin        string `json:"origin"`
	Ref           uint64 `json:"ref"`
	SignatureType string `json:"signature_type"`
	Tag           string `json:"tag"`
}

type revocRegDefOperation struct {
	Operation `json:",inline"`
	ID        string `json:"id"`
}

type revocRegOperation struct {
	Operation     `json:",inline"`
	RevocRegDefID string `json:"revocRegDefId"`
	Timestamp     uint64 `json:"timestamp"`
}

type revocRegDeltaOperation struct {
	Operation     `json:",inline"`
	RevocRegDefID string `json:"revocRegDefId"`
	From          uint64 `json:"from,omitempty"`
	To            uint64 `json:"to"`
}
