package cli

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	cacheapp "github.com/osvaldoandrade/ledgerproof/internal/app/cache"
	poolapp "github.com/osvaldoandrade/ledgerproof/internal/app/pool"
	proofapp "github.com/osvaldoandrade/ledgerproof/internal/app/proof"
	requestapp "github.com/osvaldoandrade/ledgerproof/internal/app/request"
	stateapp "github.com/osvaldoandrade/ledgerproof/internal/app/state"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/base58"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/canonicaljson"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/filesystem"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/hash"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/ident"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/poolrpc"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/recordpb"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/schema"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/sqlitecache"
	"github.com/osvaldoandrade/ledgerproof/internal/platform"
	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify reply proofs",
		RunE:  runHelp,
	}
	cmd.AddCommand(newVerifyReadCmd(opts), newVerifyWriteCmd(opts))
	return cmd
}

func newVerifyReadCmd(opts *RootOptions) *cobra.Command {
	var reply string
	var replyFile string
	var stateAlgo string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Verify the state proof of a read reply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readJSONInput("reply", reply, replyFile)
			if err != nil {
				return err
			}
			algo, err := parseAlgo(stateAlgo, domain.DefaultTrieAlgo)
			if err != nil {
				return err
			}

			parsed, err := domain.ParseReply(data)
			if err != nil {
				return err
			}
			result, err := parsed.Read()
			if err != nil {
				return err
			}
			expectations, err := newEncodeService().EncodeRead(cmd.Context(), result)
			if err != nil {
				return err
			}

			trie := newTrieService(algo)
			output := verifyReadOutput{Valid: true, Proofs: make([]proofOutput, 0, len(expectations))}
			for _, exp := range expectations {
				if exp.Proof == nil {
					return domain.ErrMissingStateProof
				}
				if err := exp.Proof.Validate(); err != nil {
					return err
				}
				nodes, err := exp.Proof.Nodes()
				if err != nil {
					return err
				}
				valid := trie.VerifyStateProof(cmd.Context(), exp.Envelope, nodes)
				if !valid {
					output.Valid = false
				}
				output.Proofs = append(output.Proofs, proofOutput{
					Envelope: rawJSON(exp.Envelope),
					RootHash: exp.Proof.RootHash,
					Valid:    valid,
				})
			}

			if err := writeVerifyReadResult(cmd, output, opts.JSONOutput); err != nil {
				return err
			}
			if !output.Valid {
				return domain.ErrProofInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reply, "reply", "", "Inline JSON node reply")
	cmd.Flags().StringVar(&replyFile, "file", "", "Path to JSON node reply")
	cmd.Flags().StringVar(&stateAlgo, "state-algo", "", "State trie hash algorithm (sha256, sha3-256)")
	return cmd
}

func newVerifyWriteCmd(opts *RootOptions) *cobra.Command {
	var reply string
	var replyFile string
	var treeAlgo string
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Verify the audit path of a write reply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readJSONInput("reply", reply, replyFile)
			if err != nil {
				return err
			}
			algo, err := parseAlgo(treeAlgo, domain.DefaultTreeAlgo)
			if err != nil {
				return err
			}

			parsed, err := domain.ParseReply(data)
			if err != nil {
				return err
			}
			result, err := parsed.Write()
			if err != nil {
				return err
			}
			extraction, err := newAuditService().ExtractAuditProof(cmd.Context(), result, parsed.Result)
			if err != nil {
				return err
			}
			valid, err := newMerkleService(algo).VerifyAuditPath(cmd.Context(), extraction.Proof, extraction.Root)
			if err != nil {
				return err
			}

			output := verifyWriteOutput{
				Valid:     valid,
				SeqNo:     result.TxnMetadata.SeqNo,
				LeafIndex: extraction.Proof.LeafIndex,
				TreeSize:  extraction.Proof.TreeSize,
				RootHash:  result.RootHash,
			}
			if err := writeVerifyWriteResult(cmd, output, opts.JSONOutput); err != nil {
				return err
			}
			if !valid {
				return domain.ErrProofInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reply, "reply", "", "Inline JSON node reply")
	cmd.Flags().StringVar(&replyFile, "file", "", "Path to JSON node reply")
	cmd.Flags().StringVar(&treeAlgo, "tree-algo", "", "Ledger tree hash algorithm (sha256, sha3-256)")
	return cmd
}

func newEncodeCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Derive expected state entries from a reply",
		RunE:  runHelp,
	}
	cmd.AddCommand(newEncodeReadCmd(opts), newEncodeWriteCmd(opts))
	return cmd
}

func newEncodeReadCmd(opts *RootOptions) *cobra.Command {
	var reply string
	var replyFile string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Show the envelopes a read reply must prove",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readJSONInput("reply", reply, replyFile)
			if err != nil {
				return err
			}
			parsed, err := domain.ParseReply(data)
			if err != nil {
				return err
			}
			result, err := parsed.Read()
			if err != nil {
				return err
			}
			expectations, err := newEncodeService().EncodeRead(cmd.Context(), result)
			if err != nil {
				return err
			}

			output := encodeOutput{Expectations: make([]expectationOutput, 0, len(expectations))}
			for _, exp := range expectations {
				output.Expectations = append(output.Expectations, expectationOutput{
					SeqNo:    exp.Value.SeqNo,
					Envelope: rawJSON(exp.Envelope),
				})
			}
			return writeEncodeResult(cmd, output, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&reply, "reply", "", "Inline JSON node reply")
	cmd.Flags().StringVar(&replyFile, "file", "", "Path to JSON node reply")
	return cmd
}

func newEncodeWriteCmd(opts *RootOptions) *cobra.Command {
	var reply string
	var replyFile string
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Show the state entries a write reply implies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readJSONInput("reply", reply, replyFile)
			if err != nil {
				return err
			}
			parsed, err := domain.ParseReply(data)
			if err != nil {
				return err
			}
			result, err := parsed.Write()
			if err != nil {
				return err
			}
			expectations, err := newEncodeService().EncodeWrite(cmd.Context(), result)
			if err != nil {
				return err
			}

			output := encodeOutput{Expectations: make([]expectationOutput, 0, len(expectations))}
			for _, exp := range expectations {
				entry := expectationOutput{
					Path:     displayPath(exp.Path),
					PathHex:  exp.Path.Hex(),
					Envelope: rawJSON(exp.Envelope),
				}
				if exp.Value != nil {
					entry.SeqNo = exp.Value.SeqNo
				}
				output.Expectations = append(output.Expectations, entry)
			}
			return writeEncodeResult(cmd, output, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&reply, "reply", "", "Inline JSON node reply")
	cmd.Flags().StringVar(&replyFile, "file", "", "Path to JSON node reply")
	return cmd
}

func newResolveCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Query a pool node and verify the answer",
		RunE:  runHelp,
	}
	cmd.AddCommand(newResolveNymCmd(opts), newResolveAttribCmd(opts))
	return cmd
}

func newResolveNymCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nym <did>",
		Short: "Fetch and verify a DID record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := requestapp.NewBuilder(ident.UUIDSource{}, opts.Submitter)
			req, err := builder.GetNym(args[0])
			if err != nil {
				return err
			}
			path, err := domain.NymPath(args[0])
			if err != nil {
				return err
			}
			return resolveAndVerify(cmd, opts, req, path)
		},
	}
}

func newResolveAttribCmd(opts *RootOptions) *cobra.Command {
	var raw string
	var enc string
	var hashRef string
	cmd := &cobra.Command{
		Use:   "attrib <did>",
		Short: "Fetch and verify an attribute record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attr := domain.AttrPayload{Raw: raw, Enc: enc, Hash: hashRef}
			builder := requestapp.NewBuilder(ident.UUIDSource{}, opts.Submitter)
			req, err := builder.GetAttr(args[0], attr)
			if err != nil {
				return err
			}

			var path domain.StatePath
			if raw != "" {
				path, err = domain.AttribNamePath(args[0], raw)
			} else {
				path, err = domain.AttribPath(args[0], attr)
			}
			if err != nil {
				return err
			}
			return resolveAndVerify(cmd, opts, req, path)
		},
	}
	cmd.Flags().StringVar(&raw, "raw", "", "Attribute name for raw lookups")
	cmd.Flags().StringVar(&enc, "enc", "", "Encrypted attribute value")
	cmd.Flags().StringVar(&hashRef, "hash", "", "Attribute content digest")
	return cmd
}

func newGenesisCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Inspect pool genesis files",
		RunE:  runHelp,
	}
	cmd.AddCommand(newGenesisNodesCmd(opts))
	return cmd
}

func newGenesisNodesCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes [file]",
		Short: "List the nodes declared in a genesis file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Genesis
			if len(args) > 0 {
				path = args[0]
			}
			if strings.TrimSpace(path) == "" {
				return ExitError{Code: ExitInvalid, Kind: KindValidation, Message: "genesis file is required (use --genesis or LEDGERPROOF_GENESIS)"}
			}
			pool, err := newPoolService()
			if err != nil {
				return err
			}
			info, err := pool.Load(cmd.Context(), poolName(path), path)
			if err != nil {
				return err
			}
			return writeNodesResult(cmd, info, opts.JSONOutput)
		},
	}
}

func newCacheCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the verified-state cache",
		RunE:  runHelp,
	}
	cmd.AddCommand(newCacheGetCmd(opts), newCacheResetCmd(opts), newCacheInfoCmd(opts))
	return cmd
}

func newCacheGetCmd(opts *RootOptions) *cobra.Command {
	var hexPath bool
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Read a verified record by state path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseStatePath(args[0], hexPath)
			if err != nil {
				return err
			}
			service, closeStore, err := newCacheService(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			record, err := service.Get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return writeCacheRecord(cmd, record, opts.JSONOutput)
		},
	}
	cmd.Flags().BoolVar(&hexPath, "hex", false, "Interpret the path as hex-encoded bytes")
	return cmd
}

func newCacheResetCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop every cached record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, closeStore, err := newCacheService(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := service.Reset(cmd.Context()); err != nil {
				return err
			}
			return writeCacheReset(cmd, opts.JSONOutput)
		},
	}
}

func newCacheInfoCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, closeStore, err := newCacheService(opts)
			if err != nil {
				return err
			}
			defer closeStore()

			info, err := service.Info(cmd.Context())
			if err != nil {
				return err
			}
			return writeCacheInfo(cmd, info, opts.JSONOutput)
		},
	}
}

// resolveAndVerify runs the full read pipeline: submit the request to one
// pool node, rebuild the expected envelopes, and check them against the
// returned state proof. Verified answers land in the cache when one is
// configured.
func resolveAndVerify(cmd *cobra.Command, opts *RootOptions, req requestapp.Request, path domain.StatePath) error {
	if strings.TrimSpace(opts.Genesis) == "" {
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Message: "genesis file is required (use --genesis or LEDGERPROOF_GENESIS)"}
	}
	pool, err := newPoolService()
	if err != nil {
		return err
	}
	info, err := pool.Load(cmd.Context(), poolName(opts.Genesis), opts.Genesis)
	if err != nil {
		return err
	}
	node, err := pool.Node(info, opts.Node)
	if err != nil {
		return err
	}

	var reply domain.Reply
	spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
	label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Querying " + node.Alias)
	err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
		var err error
		reply, err = pool.Submit(cmd.Context(), node, req)
		return err
	})
	if err != nil {
		return err
	}

	result, err := reply.Read()
	if err != nil {
		return err
	}
	expectations, err := newEncodeService().EncodeRead(cmd.Context(), result)
	if err != nil {
		return err
	}

	trie := newTrieService(domain.DefaultTrieAlgo)
	verified := len(expectations) > 0
	var rootHash string
	var envelope []byte
	for _, exp := range expectations {
		if exp.Proof == nil {
			return domain.ErrMissingStateProof
		}
		if err := exp.Proof.Validate(); err != nil {
			return err
		}
		nodes, err := exp.Proof.Nodes()
		if err != nil {
			return err
		}
		if !trie.VerifyStateProof(cmd.Context(), exp.Envelope, nodes) {
			verified = false
		}
		rootHash = exp.Proof.RootHash
		envelope = exp.Envelope
	}
	slog.Debug("read verified", "node", node.Addr, "type", result.Type, "seq_no", result.SeqNo, "valid", verified)

	doc, err := result.DataDocument()
	if err != nil {
		return err
	}
	output := resolveOutput{
		Data:     rawJSON(doc),
		Verified: verified,
		SeqNo:    result.SeqNo,
		RootHash: rootHash,
	}

	if verified && strings.TrimSpace(opts.CachePath) != "" {
		recordID, err := cacheVerifiedRead(cmd.Context(), opts, path, envelope, result, rootHash)
		if err != nil {
			return err
		}
		output.RecordID = recordID
	}

	if err := writeResolveResult(cmd, output, opts.JSONOutput); err != nil {
		return err
	}
	if !verified {
		return domain.ErrProofInvalid
	}
	return nil
}

func cacheVerifiedRead(ctx context.Context, opts *RootOptions, path domain.StatePath, envelope []byte, result domain.ReadResult, rootHash string) (string, error) {
	store, err := sqlitecache.Open(opts.CachePath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	service := cacheapp.NewService(store, recordpb.Codec{}, ident.NewULIDGenerator(), platform.RealClock{})
	record, err := service.Put(ctx, cacheapp.Record{
		Path:     path,
		Envelope: envelope,
		SeqNo:    result.SeqNo,
		TxnTime:  result.TxnTime,
		RootHash: rootHash,
	})
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

type verifyReadOutput struct {
	Valid  bool          `json:"valid"`
	Proofs []proofOutput `json:"proofs"`
}

type proofOutput struct {
	Envelope json.RawMessage `json:"envelope"`
	RootHash string          `json:"root_hash,omitempty"`
	Valid    bool            `json:"valid"`
}

type verifyWriteOutput struct {
	Valid     bool   `json:"valid"`
	SeqNo     uint64 `json:"seq_no"`
	LeafIndex int64  `json:"leaf_index"`
	TreeSize  int64  `json:"tree_size"`
	RootHash  string `json:"root_hash"`
}

type encodeOutput struct {
	Expectations []expectationOutput `json:"expectations"`
}

type expectationOutput struct {
	Path     string          `json:"path,omitempty"`
	PathHex  string          `json:"path_hex,omitempty"`
	SeqNo    uint64          `json:"seq_no,omitempty"`
	Envelope json.RawMessage `json:"envelope,omitempty"`
}

type resolveOutput struct {
	Data     json.RawMessage `json:"data"`
	Verified bool            `json:"verified"`
	SeqNo    uint64          `json:"seq_no,omitempty"`
	RootHash string          `json:"root_hash,omitempty"`
	RecordID string          `json:"record_id,omitempty"`
}

type nodesOutput struct {
	Name  string       `json:"name"`
	Nodes []nodeOutput `json:"nodes"`
}

type nodeOutput struct {
	Alias    string   `json:"alias"`
	Dest     string   `json:"dest"`
	Addr     string   `json:"addr,omitempty"`
	Services []string `json:"services,omitempty"`
}

type cacheRecordOutput struct {
	RecordID   string          `json:"record_id"`
	Path       string          `json:"path,omitempty"`
	PathHex    string          `json:"path_hex"`
	Envelope   json.RawMessage `json:"envelope"`
	SeqNo      uint64          `json:"seq_no"`
	TxnTime    *uint64         `json:"txn_time,omitempty"`
	RootHash   string          `json:"root_hash,omitempty"`
	VerifiedAt int64           `json:"verified_at"`
}

type cacheInfoOutput struct {
	Records      int64  `json:"records"`
	LastRecordID string `json:"last_record_id,omitempty"`
}

type cacheResetOutput struct {
	Status string `json:"status"`
}

func writeVerifyReadResult(cmd *cobra.Command, output verifyReadOutput, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	for _, proof := range output.Proofs {
		status := ui.ok("VALID")
		if !proof.Valid {
			status = ui.warn("INVALID")
		}
		if _, err := fmt.Fprintf(out, "%s %s %s\n", status, ui.dim(proof.RootHash), proof.Envelope); err != nil {
			return err
		}
	}
	if output.Valid {
		_, err := fmt.Fprintf(out, "%s: %d proof(s) verified\n", ui.ok("OK"), len(output.Proofs))
		return err
	}
	_, err := fmt.Fprintf(out, "%s: state proof does not contain the expected value\n", ui.warn("INVALID"))
	return err
}

func writeVerifyWriteResult(cmd *cobra.Command, output verifyWriteOutput, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Seq No", strconv.FormatUint(output.SeqNo, 10)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Tree Size", strconv.FormatInt(output.TreeSize, 10)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Root Hash", ui.dim(output.RootHash)); err != nil {
		return err
	}
	if output.Valid {
		_, err := fmt.Fprintf(out, "%s: audit path resolves to the root\n", ui.ok("OK"))
		return err
	}
	_, err := fmt.Fprintf(out, "%s: audit path does not resolve to the root\n", ui.warn("INVALID"))
	return err
}

func writeEncodeResult(cmd *cobra.Command, output encodeOutput, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	for _, exp := range output.Expectations {
		label := exp.Path
		if label == "" {
			label = exp.PathHex
		}
		if label != "" {
			if err := writeKV(out, ui, "Path", label); err != nil {
				return err
			}
		}
		envelope := string(exp.Envelope)
		if envelope == "" {
			envelope = ui.dim("(path only)")
		}
		if err := writeKV(out, ui, "Envelope", envelope); err != nil {
			return err
		}
	}
	return nil
}

func writeResolveResult(cmd *cobra.Command, output resolveOutput, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Data", string(output.Data)); err != nil {
		return err
	}
	if output.SeqNo > 0 {
		if err := writeKV(out, ui, "Seq No", strconv.FormatUint(output.SeqNo, 10)); err != nil {
			return err
		}
	}
	if output.RootHash != "" {
		if err := writeKV(out, ui, "Root Hash", ui.dim(output.RootHash)); err != nil {
			return err
		}
	}
	if output.RecordID != "" {
		if err := writeKV(out, ui, "Record ID", output.RecordID); err != nil {
			return err
		}
	}
	if output.Verified {
		_, err := fmt.Fprintf(out, "%s: state proof verified\n", ui.ok("OK"))
		return err
	}
	_, err := fmt.Fprintf(out, "%s: state proof rejected\n", ui.warn("INVALID"))
	return err
}

func writeNodesResult(cmd *cobra.Command, info domain.PoolInfo, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := nodesOutput{Name: info.Name, Nodes: make([]nodeOutput, 0, len(info.Nodes))}
		for _, node := range info.Nodes {
			payload.Nodes = append(payload.Nodes, nodeOutput{
				Alias:    node.Alias,
				Dest:     node.Dest,
				Addr:     node.Addr,
				Services: node.Services,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	for _, node := range info.Nodes {
		alias := ui.dim(node.Alias)
		if node.IsValidator() {
			alias = ui.ok(node.Alias)
		}
		if _, err := fmt.Fprintf(out, "%s %s %s\n", alias, node.Addr, ui.dim(node.Dest)); err != nil {
			return err
		}
	}
	return nil
}

func writeCacheRecord(cmd *cobra.Command, record cacheapp.Record, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := cacheRecordOutput{
			RecordID:   record.ID,
			Path:       displayPath(record.Path),
			PathHex:    record.Path.Hex(),
			Envelope:   rawJSON(record.Envelope),
			SeqNo:      record.SeqNo,
			TxnTime:    record.TxnTime,
			RootHash:   record.RootHash,
			VerifiedAt: record.VerifiedAt,
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Record ID", record.ID); err != nil {
		return err
	}
	path := displayPath(record.Path)
	if path == "" {
		path = record.Path.Hex()
	}
	if err := writeKV(out, ui, "Path", path); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Envelope", string(record.Envelope)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Seq No", strconv.FormatUint(record.SeqNo, 10)); err != nil {
		return err
	}
	if record.TxnTime != nil {
		if err := writeKV(out, ui, "Txn Time", strconv.FormatUint(*record.TxnTime, 10)); err != nil {
			return err
		}
	}
	if record.RootHash != "" {
		if err := writeKV(out, ui, "Root Hash", ui.dim(record.RootHash)); err != nil {
			return err
		}
	}
	verifiedAt := time.Unix(0, record.VerifiedAt).UTC().Format(time.RFC3339)
	return writeKV(out, ui, "Verified At", verifiedAt)
}

func writeCacheReset(cmd *cobra.Command, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cacheResetOutput{Status: "reset"})
	}

	ui := newRenderer(out, asJSON)
	_, err := fmt.Fprintf(out, "%s: cache cleared\n", ui.ok("OK"))
	return err
}

func writeCacheInfo(cmd *cobra.Command, info cacheapp.Info, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := cacheInfoOutput{Records: info.Records, LastRecordID: info.LastRecordID}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Records", strconv.FormatInt(info.Records, 10)); err != nil {
		return err
	}
	if info.LastRecordID == "" {
		return nil
	}
	return writeKV(out, ui, "Last Record ID", info.LastRecordID)
}

func newEncodeService() *stateapp.EncodeService {
	return stateapp.NewEncodeService(canonicaljson.Canonicalizer{}, hash.SHA256{})
}

func newAuditService() *stateapp.AuditService {
	return stateapp.NewAuditService(canonicaljson.Canonicalizer{}, base58.Codec{})
}

func newTrieService(algo domain.HashAlgo) *proofapp.TrieService {
	var digester proofapp.NodeDigester = hash.SHA3256{}
	if domain.NormalizeTrieAlgo(algo) == domain.HashAlgoSHA256 {
		digester = hash.SHA256{}
	}
	return proofapp.NewTrieService(digester, canonicaljson.Canonicalizer{})
}

func newMerkleService(algo domain.HashAlgo) *proofapp.MerkleService {
	hasher := hash.NewSHA256TreeHasher()
	if domain.NormalizeTreeAlgo(algo) == domain.HashAlgoSHA3256 {
		hasher = hash.NewSHA3TreeHasher()
	}
	return proofapp.NewMerkleService(hasher)
}

func newPoolService() (*poolapp.Service, error) {
	validator, err := schema.NewReplyValidator()
	if err != nil {
		return nil, err
	}
	return poolapp.NewService(filesystem.GenesisSource{}, poolrpc.New(), validator, platform.RealClock{}), nil
}

func newCacheService(opts *RootOptions) (*cacheapp.Service, func(), error) {
	if strings.TrimSpace(opts.CachePath) == "" {
		return nil, nil, ExitError{Code: ExitInvalid, Kind: KindValidation, Message: "cache path is required (use --cache or LEDGERPROOF_CACHE)"}
	}
	store, err := sqlitecache.Open(opts.CachePath)
	if err != nil {
		return nil, nil, err
	}
	service := cacheapp.NewService(store, recordpb.Codec{}, ident.NewULIDGenerator(), platform.RealClock{})
	return service, func() { _ = store.Close() }, nil
}

func parseAlgo(value string, fallback domain.HashAlgo) (domain.HashAlgo, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return domain.ParseHashAlgo(value)
}

func parseStatePath(value string, isHex bool) (domain.StatePath, error) {
	if isHex {
		decoded, err := hex.DecodeString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("decode path: %w", err)
		}
		return domain.StatePath(decoded), nil
	}
	return domain.StatePath(value), nil
}

func poolName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// displayPath renders marker-separated paths as text. Nym paths are raw
// digests and only travel as hex.
func displayPath(path domain.StatePath) string {
	value := path.String()
	if !utf8.ValidString(value) {
		return ""
	}
	for _, r := range value {
		if !unicode.IsPrint(r) {
			return ""
		}
	}
	return value
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}

func rawJSON(data []byte) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}

func readJSONInput(label, inline, filePath string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	filePath = strings.TrimSpace(filePath)
	if inline != "" && filePath != "" {
		return nil, fmt.Errorf("use either --%s or --file, not both", label)
	}
	if inline == "" && filePath == "" {
		return nil, fmt.Errorf("%s is required (use --%s or --file)", label, label)
	}
	if inline != "" {
		return []byte(inline), nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", label, err)
	}
	return data, nil
}

func runHelp(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
