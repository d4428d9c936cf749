package ledgerproofsdk

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	poolapp "github.com/osvaldoandrade/ledgerproof/internal/app/pool"
	requestapp "github.com/osvaldoandrade/ledgerproof/internal/app/request"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/filesystem"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/ident"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/poolrpc"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/schema"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/sqlitecache"
	"github.com/osvaldoandrade/ledgerproof/internal/platform"
)

// Node is one entry of the pool roster.
type Node struct {
	Alias    string
	Dest     string
	Addr     string
	Services []string
}

// PoolInfo describes the pool loaded from the genesis file.
type PoolInfo struct {
	Name  string
	Nodes []Node
}

// Client provides direct access to ledger reply verification services.
type Client struct {
	cfg      Config
	treeAlgo domain.HashAlgo
	trieAlgo domain.HashAlgo
	pool     *poolapp.Service
	builder  *requestapp.Builder

	mu         sync.Mutex
	cacheStore *sqlitecache.Store
	db         *sql.DB

	poolMu sync.Mutex
	loaded *domain.PoolInfo
}

// New creates a client without loading the genesis file or opening the cache.
func New(cfg Config) (*Client, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	treeAlgo, err := toDomainHashAlgo(normalized.TreeAlgo)
	if err != nil {
		return nil, err
	}
	trieAlgo, err := toDomainHashAlgo(normalized.TrieAlgo)
	if err != nil {
		return nil, err
	}
	validator, err := schema.NewReplyValidator()
	if err != nil {
		return nil, err
	}
	pool := poolapp.NewService(
		filesystem.GenesisSource{},
		poolrpc.NewWithTimeout(normalized.Timeout),
		validator,
		platform.RealClock{},
	)

	return &Client{
		cfg:      normalized,
		treeAlgo: treeAlgo,
		trieAlgo: trieAlgo,
		pool:     pool,
		builder:  requestapp.NewBuilder(ident.UUIDSource{}, normalized.Submitter),
	}, nil
}

// Open creates a client, loads the pool genesis, and opens the cache if configured.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := client.poolInfo(ctx); err != nil {
		return nil, err
	}
	if client.cfg.Cache.DBPath != "" {
		if err := client.OpenCache(ctx); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// Close closes the cache database when open.
func (c *Client) Close() error {
	c.mu.Lock()
	cacheStore := c.cacheStore
	c.cacheStore = nil
	c.db = nil
	c.mu.Unlock()

	if cacheStore != nil {
		return cacheStore.Close()
	}
	return nil
}

// GenesisPath returns the configured genesis transaction file path.
func (c *Client) GenesisPath() string {
	return c.cfg.GenesisPath
}

// Pool loads the genesis file once and returns the node roster.
func (c *Client) Pool(ctx context.Context) (PoolInfo, error) {
	info, err := c.poolInfo(ctx)
	if err != nil {
		return PoolInfo{}, err
	}
	nodes := make([]Node, 0, len(info.Nodes))
	for _, node := range info.Nodes {
		nodes = append(nodes, Node{
			Alias:    node.Alias,
			Dest:     node.Dest,
			Addr:     node.Addr,
			Services: node.Services,
		})
	}
	return PoolInfo{Name: info.Name, Nodes: nodes}, nil
}

func (c *Client) poolInfo(ctx context.Context) (domain.PoolInfo, error) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	if c.loaded != nil {
		return *c.loaded, nil
	}
	info, err := c.pool.Load(ctx, c.cfg.PoolName, c.cfg.GenesisPath)
	if err != nil {
		return domain.PoolInfo{}, err
	}
	c.loaded = &info
	return info, nil
}

func (c *Client) node(ctx context.Context) (domain.Node, error) {
	info, err := c.poolInfo(ctx)
	if err != nil {
		return domain.Node{}, err
	}
	return c.pool.Node(info, c.cfg.Node)
}

func (c *Client) cacheDB() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil, ErrCacheNotOpen
	}
	return c.db, nil
}

func (c *Client) ensureCacheStore() (*sqlitecache.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cacheStore == nil {
		return nil, ErrCacheNotOpen
	}
	return c.cacheStore, nil
}

func toDomainHashAlgo(algo HashAlgo) (domain.HashAlgo, error) {
	switch algo {
	case HashAlgoSHA256:
		return domain.HashAlgoSHA256, nil
	case HashAlgoSHA3256:
		return domain.HashAlgoSHA3256, nil
	default:
		return "", fmt.Errorf("invalid hash algorithm: %s", algo)
	}
}
