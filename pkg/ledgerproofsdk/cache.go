package ledgerproofsdk

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	cacheapp "github.com/osvaldoandrade/ledgerproof/internal/app/cache"
	"github.com/osvaldoandrade/ledgerproof/internal/domain"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/ident"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/recordpb"
	"github.com/osvaldoandrade/ledgerproof/internal/infra/sqlitecache"
	"github.com/osvaldoandrade/ledgerproof/internal/platform"
)

type CachedRecord struct {
	RecordID   string
	Path       []byte
	Envelope   []byte
	SeqNo      uint64
	TxnTime    *uint64
	RootHash   string
	VerifiedAt int64
}

type CacheInfo struct {
	Records      int64
	LastRecordID string
}

// OpenCache opens the verified-state SQLite database.
func (c *Client) OpenCache(ctx context.Context) error {
	c.mu.Lock()
	if c.cacheStore != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	store, err := sqlitecache.OpenWithOptions(c.cfg.Cache.DBPath, sqlitecache.OpenOptions{Fast: c.cfg.Cache.Fast})
	if err != nil {
		return err
	}
	if err := store.DB().PingContext(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("ping sqlite: %w", err)
	}

	c.mu.Lock()
	c.cacheStore = store
	c.db = store.DB()
	c.mu.Unlock()
	return nil
}

// DB exposes the SQLite database handle.
func (c *Client) DB() (*sql.DB, error) {
	return c.cacheDB()
}

// Query runs a SQL query against the verified-state cache.
func (c *Client) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db, err := c.cacheDB()
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

// GetCached reads a previously verified record by its state path.
func (c *Client) GetCached(ctx context.Context, path []byte) (CachedRecord, error) {
	service, err := c.cacheService()
	if err != nil {
		return CachedRecord{}, err
	}
	record, err := service.Get(ctx, domain.StatePath(path))
	if err != nil {
		if errors.Is(err, cacheapp.ErrRecordNotFound) {
			return CachedRecord{}, ErrNotFound
		}
		return CachedRecord{}, err
	}
	return toCachedRecord(record), nil
}

// GetCachedNym reads the verified identity record for a DID, if present.
func (c *Client) GetCachedNym(ctx context.Context, dest string) (CachedRecord, error) {
	path, err := domain.NymPath(dest)
	if err != nil {
		return CachedRecord{}, err
	}
	return c.GetCached(ctx, path)
}

// GetCachedAttrib reads the verified attribute record for a DID and attribute name.
func (c *Client) GetCachedAttrib(ctx context.Context, dest, name string) (CachedRecord, error) {
	path, err := domain.AttribNamePath(dest, name)
	if err != nil {
		return CachedRecord{}, err
	}
	return c.GetCached(ctx, path)
}

// CacheInfo reports the record count and the newest record id.
func (c *Client) CacheInfo(ctx context.Context) (CacheInfo, error) {
	service, err := c.cacheService()
	if err != nil {
		return CacheInfo{}, err
	}
	info, err := service.Info(ctx)
	if err != nil {
		return CacheInfo{}, err
	}
	return CacheInfo{Records: info.Records, LastRecordID: info.LastRecordID}, nil
}

// ResetCache drops all verified records.
func (c *Client) ResetCache(ctx context.Context) error {
	service, err := c.cacheService()
	if err != nil {
		return err
	}
	return service.Reset(ctx)
}

func (c *Client) cacheService() (*cacheapp.Service, error) {
	store, err := c.ensureCacheStore()
	if err != nil {
		return nil, err
	}
	return cacheapp.NewService(store, recordpb.Codec{}, ident.NewULIDGenerator(), platform.RealClock{}), nil
}

func toCachedRecord(record cacheapp.Record) CachedRecord {
	return CachedRecord{
		RecordID:   record.ID,
		Path:       []byte(record.Path),
		Envelope:   record.Envelope,
		SeqNo:      record.SeqNo,
		TxnTime:    record.TxnTime,
		RootHash:   record.RootHash,
		VerifiedAt: record.VerifiedAt,
	}
}
