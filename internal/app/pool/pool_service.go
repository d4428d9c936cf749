package pool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/osvaldoandrade/ledgerproof/internal/app/request"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

var ErrNodeUnknown = errors.New("node is not part of the pool")

type Service struct {
	genesis   GenesisSource
	client    NodeClient
	validator ReplyValidator
	clock     Clock
}

func NewService(genesis GenesisSource, client NodeClient, validator ReplyValidator, clock Clock) *Service {
	return &Service{
		genesis:   genesis,
		client:    client,
		validator: validator,
		clock:     clock,
	}
}

// Load parses a pool transaction genesis file, one node transaction per
// line, and resolves the validator endpoints.
func (s *Service) Load(ctx context.Context, name, path string) (domain.PoolInfo, error) {
	data, err := s.genesis.ReadGenesis(ctx, path)
	if err != nil {
		return domain.PoolInfo{}, err
	}

	var nodes []domain.Node
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var txn domain.GenesisTxn
		if err := json.Unmarshal(line, &txn); err != nil {
			return domain.PoolInfo{}, fmt.Errorf("parse genesis line %d: %w", i+1, err)
		}
		node, err := txn.Node()
		if err != nil {
			return domain.PoolInfo{}, fmt.Errorf("genesis line %d: %w", i+1, err)
		}
		nodes = append(nodes, node)
	}

	info := domain.NewPoolInfo(name, s.clock.Now(), nodes)
	if err := info.Validate(); err != nil {
		return domain.PoolInfo{}, err
	}
	return info, nil
}

// Node picks the caller-named validator, or the first one when alias is
// empty.
func (s *Service) Node(info domain.PoolInfo, alias string) (domain.Node, error) {
	validators := info.Validators()
	if len(validators) == 0 {
		return domain.Node{}, domain.ErrNoValidators
	}
	if alias == "" {
		return validators[0], nil
	}
	for _, node := range validators {
		if node.Alias == alias {
			return node, nil
		}
	}
	return domain.Node{}, fmt.Errorf("%w: %s", ErrNodeUnknown, alias)
}

// Submit sends one request to one node and returns the parsed reply. The
// reply document is shape-checked before any field is trusted.
func (s *Service) Submit(ctx context.Context, node domain.Node, req request.Request) (domain.Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	raw, err := s.client.Submit(ctx, node.Addr, body)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("submit to %s: %w", node.Alias, err)
	}

	if err := s.validator.ValidateReply(ctx, raw); err != nil {
		return domain.Reply{}, err
	}
	reply, err := domain.ParseReply(raw)
	if err != nil {
		return domain.Reply{}, err
	}
	slog.Debug("reply accepted", "node", node.Addr, "op", reply.Op)
	return reply, nil
}
