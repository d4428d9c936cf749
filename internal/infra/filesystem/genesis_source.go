package filesystem

import (
	"context"
	"fmt"
	"os"
)

type GenesisSource struct{}

func (GenesisSource) ReadGenesis(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	return data, nil
}
