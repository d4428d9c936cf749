package ledgerproofsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	cacheapp "github.com/osvaldoandrade/ledgerproof/internal/app/cache"
	proofapp "github.com/osvaldoandrade/ledgerproof/internal/app/proof"
	requestapp "github.com/osvaldoandrade/ledgerproof/internal/app/request"
	stateapp "github.com/osvaldoandrade/ledgerproof/internal/app/state"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/base58"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/canonicaljson"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/hash"
)

type ReadProof struct {
	Envelope json.RawMessage
	RootHash string
	Valid    bool
}

type ReadVerification struct {
	Valid  bool
	Proofs []ReadProof
}

type WriteVerification struct {
	Valid    bool
	SeqNo    uint64
	TreeSize int64
	RootHash string
}

// Attr selects an attribute by exactly one of its three request forms.
type Attr struct {
	Raw  string
	Enc  string
	Hash string
}

type Record struct {
	Data     json.RawMessage
	SeqNo    uint64
	TxnTime  *uint64
	RootHash string
	RecordID string
	Verified bool
}

// VerifyReadReply checks every state proof carried by a raw read reply.
// An invalid proof is reported in the result, not as an error.
func (c *Client) VerifyReadReply(ctx context.Context, reply []byte) (ReadVerification, error) {
	parsed, err := domain.ParseReply(reply)
	if err != nil {
		return ReadVerification{}, mapErr(err)
	}
	result, err := parsed.Read()
	if err != nil {
		return ReadVerification{}, err
	}
	verification, _, _, err := c.verifyRead(ctx, result)
	if err != nil {
		return ReadVerification{}, err
	}
	return verification, nil
}

// VerifyWriteReply checks the ledger audit path carried by a raw write reply.
func (c *Client) VerifyWriteReply(ctx context.Context, reply []byte) (WriteVerification, error) {
	parsed, err := domain.ParseReply(reply)
	if err != nil {
		return WriteVerification{}, mapErr(err)
	}
	result, err := parsed.Write()
	if err != nil {
		return WriteVerification{}, err
	}
	extraction, err := c.auditService().ExtractAuditProof(ctx, result, parsed.Result)
	if err != nil {
		return WriteVerification{}, err
	}
	valid, err := c.merkleService().VerifyAuditPath(ctx, extraction.Proof, extraction.Root)
	if err != nil {
		return WriteVerification{}, err
	}
	return WriteVerification{
		Valid:    valid,
		SeqNo:    result.TxnMetadata.SeqNo,
		TreeSize: extraction.Proof.TreeSize,
		RootHash: result.RootHash,
	}, nil
}

// GetNym submits a GET_NYM request and returns the proven identity record.
func (c *Client) GetNym(ctx context.Context, dest string) (Record, error) {
	req, err := c.builder.GetNym(dest)
	if err != nil {
		return Record{}, err
	}
	path, err := domain.NymPath(dest)
	if err != nil {
		return Record{}, err
	}
	return c.resolve(ctx, req, path)
}

// GetAttrib submits a GET_ATTR request and returns the proven attribute record.
func (c *Client) GetAttrib(ctx context.Context, dest string, attr Attr) (Record, error) {
	payload := domain.AttrPayload{Raw: attr.Raw, Enc: attr.Enc, Hash: attr.Hash}
	req, err := c.builder.GetAttr(dest, payload)
	if err != nil {
		return Record{}, err
	}
	var path domain.StatePath
	if attr.Raw != "" {
		path, err = domain.AttribNamePath(dest, attr.Raw)
	} else {
		path, err = domain.AttribPath(dest, payload)
	}
	if err != nil {
		return Record{}, err
	}
	return c.resolve(ctx, req, path)
}

// resolve submits one read request, verifies the reply, and persists the
// proven envelope when the cache is open and persistence is enabled.
func (c *Client) resolve(ctx context.Context, req requestapp.Request, path domain.StatePath) (Record, error) {
	node, err := c.node(ctx)
	if err != nil {
		return Record{}, err
	}
	reply, err := c.pool.Submit(ctx, node, req)
	if err != nil {
		return Record{}, mapErr(err)
	}
	result, err := reply.Read()
	if err != nil {
		return Record{}, err
	}
	verification, envelope, rootHash, err := c.verifyRead(ctx, result)
	if err != nil {
		return Record{}, err
	}
	slog.Debug("read verified", "node", node.Addr, "type", result.Type, "seq_no", result.SeqNo, "valid", verification.Valid)
	if !verification.Valid {
		return Record{}, ErrProofInvalid
	}
	doc, err := result.DataDocument()
	if err != nil {
		return Record{}, err
	}

	record := Record{
		Data:     doc,
		SeqNo:    result.SeqNo,
		TxnTime:  result.TxnTime,
		RootHash: rootHash,
		Verified: true,
	}
	if c.cfg.Cache.Persist {
		if service, err := c.cacheService(); err == nil {
			stored, err := service.Put(ctx, cacheapp.Record{
				Path:     path,
				Envelope: envelope,
				SeqNo:    result.SeqNo,
				TxnTime:  result.TxnTime,
				RootHash: rootHash,
			})
			if err != nil {
				return Record{}, err
			}
			record.RecordID = stored.ID
		}
	}
	return record, nil
}

func (c *Client) verifyRead(ctx context.Context, result domain.ReadResult) (ReadVerification, []byte, string, error) {
	expectations, err := c.encodeService().EncodeRead(ctx, result)
	if err != nil {
		return ReadVerification{}, nil, "", err
	}

	trie := c.trieService()
	verification := ReadVerification{
		Valid:  len(expectations) > 0,
		Proofs: make([]ReadProof, 0, len(expectations)),
	}
	var envelope []byte
	var rootHash string
	for _, exp := range expectations {
		if exp.Proof == nil {
			return ReadVerification{}, nil, "", domain.ErrMissingStateProof
		}
		if err := exp.Proof.Validate(); err != nil {
			return ReadVerification{}, nil, "", err
		}
		nodes, err := exp.Proof.Nodes()
		if err != nil {
			return ReadVerification{}, nil, "", err
		}
		valid := trie.VerifyStateProof(ctx, exp.Envelope, nodes)
		if !valid {
			verification.Valid = false
		}
		verification.Proofs = append(verification.Proofs, ReadProof{
			Envelope: exp.Envelope,
			RootHash: exp.Proof.RootHash,
			Valid:    valid,
		})
		envelope = exp.Envelope
		rootHash = exp.Proof.RootHash
	}
	return verification, envelope, rootHash, nil
}

func (c *Client) encodeService() *stateapp.EncodeService {
	return stateapp.NewEncodeService(canonicaljson.Canonicalizer{}, hash.SHA256{})
}

func (c *Client) auditService() *stateapp.AuditService {
	return stateapp.NewAuditService(canonicaljson.Canonicalizer{}, base58.Codec{})
}

func (c *Client) trieService() *proofapp.TrieService {
	var digester proofapp.NodeDigester = hash.SHA3256{}
	if c.trieAlgo == domain.HashAlgoSHA256 {
		digester = hash.SHA256{}
	}
	return proofapp.NewTrieService(digester, canonicaljson.Canonicalizer{})
}

func (c *Client) merkleService() *proofapp.MerkleService {
	hasher := hash.NewSHA256TreeHasher()
	if c.treeAlgo == domain.HashAlgoSHA3256 {
		hasher = hash.NewSHA3TreeHasher()
	}
	return proofapp.NewMerkleService(hasher)
}

// mapErr keeps rejection reasons while re-rooting them on an SDK sentinel;
// the internal one is not importable by callers.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrRequestRejected) {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return err
}
