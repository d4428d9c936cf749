package pool

import (
	"context"
	"time"
)

type GenesisSource interface {
	ReadGenesis(ctx context.Context, path string) ([]byte, error)
}

type NodeClient interface {
	Submit(ctx context.Context, addr string, request []byte) ([]byte, error)
}

type ReplyValidator interface {
	ValidateReply(ctx context.Context, doc []byte) error
}

type Clock interface {
	Now() time.Time
}
