package domain

import (
	"errors"
	"time"
)

var ErrNoValidators = errors.New("pool has no validator nodes")

// PoolInfo describes a node pool loaded from a genesis file.
type PoolInfo struct {
	Name     string
	LoadedAt time.Time
	Nodes    []Node
}

func NewPoolInfo(name string, loadedAt time.Time, nodes []Node) PoolInfo {
	return PoolInfo{Name: name, LoadedAt: loadedAt.UTC(), Nodes: nodes}
}

func (p PoolInfo) Validators() []Node {
	var validators []Node
	for _, node := range p.Nodes {
		if node.IsValidator() {
			validators = append(validators, node)
		}
	}
	return validators
}

func (p PoolInfo) Validate() error {
	if len(p.Validators()) == 0 {
		return ErrNoValidators
	}
	return nil
}
