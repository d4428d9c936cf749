package ledgerproofsdk

import (
	"path/filepath"
	"strings"
	"time"
)

type HashAlgo string

const (
	HashAlgoSHA256  HashAlgo = "sha256"
	HashAlgoSHA3256 HashAlgo = "sha3-256"
)

// Config defines the SDK behavior for direct core access.
type Config struct {
	GenesisPath string
	PoolName    string
	Node        string
	Submitter   string
	TreeAlgo    HashAlgo
	TrieAlgo    HashAlgo
	Timeout     time.Duration
	Cache       CacheConfig
}

// CacheConfig configures the verified-state SQLite sidecar.
type CacheConfig struct {
	DBPath  string
	Fast    bool
	Persist bool
}

// DefaultConfig returns opinionated defaults for verifying replies from one pool.
func DefaultConfig(genesisPath string) Config {
	return Config{
		GenesisPath: genesisPath,
		TreeAlgo:    HashAlgoSHA256,
		TrieAlgo:    HashAlgoSHA3256,
		Timeout:     30 * time.Second,
		Cache: CacheConfig{
			Fast:    true,
			Persist: true,
		},
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.GenesisPath) == "" {
		return cfg, ErrGenesisRequired
	}
	if cfg.PoolName == "" {
		cfg.PoolName = poolNameFromPath(cfg.GenesisPath)
	}
	if cfg.TreeAlgo == "" {
		cfg.TreeAlgo = HashAlgoSHA256
	}
	if cfg.TrieAlgo == "" {
		cfg.TrieAlgo = HashAlgoSHA3256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg, nil
}

func poolNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
