package cache

import (
	"context"
	"time"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

type Store interface {
	Put(ctx context.Context, entry Entry) error
	Get(ctx context.Context, path domain.StatePath) (Entry, error)
	Reset(ctx context.Context) error
	Info(ctx context.Context) (Info, error)
}

type Codec interface {
	Encode(record Record) ([]byte, error)
	Decode(data []byte) (Record, error)
}

type IDGenerator interface {
	NewID() (string, error)
}

type Clock interface {
	Now() time.Time
}
