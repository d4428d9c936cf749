package domain

import (
	"errors"
	"net"
	"strconv"
)

const (
	NodeTxnType      = "0"
	ServiceValidator = "VALIDATOR"
)

var (
	ErrNotNodeTxn      = errors.New("not a node transaction")
	ErrNodeAliasEmpty  = errors.New("node alias is empty")
	ErrNodeAddrMissing = errors.New("node client address is missing")
)

// GenesisTxn is one line of a pool transaction genesis file.
type GenesisTxn struct {
	Txn struct {
		Type string `json:"type"`
		Data struct {
			Data NodeData `json:"data"`
			Dest string   `json:"dest"`
		} `json:"data"`
	} `json:"txn"`
	TxnMetadata struct {
		SeqNo uint64 `json:"seqNo"`
		TxnID string `json:"txnId"`
	} `json:"txnMetadata"`
	Ver string `json:"ver"`
}

type NodeData struct {
	Alias      string   `json:"alias"`
	ClientIP   string   `json:"client_ip"`
	ClientPort uint32   `json:"client_port"`
	NodeIP     string   `json:"node_ip"`
	NodePort   uint32   `json:"node_port"`
	Services   []string `json:"services"`
}

// Node is a resolved validator endpoint.
type Node struct {
	Alias    string
	Dest     string
	Addr     string
	Services []string
}

func (n Node) IsValidator() bool {
	for _, service := range n.Services {
		if service == ServiceValidator {
			return true
		}
	}
	return false
}

// Node resolves the genesis transaction into a client endpoint.
func (g GenesisTxn) Node() (Node, error) {
	if g.Txn.Type != NodeTxnType {
		return Node{}, ErrNotNodeTxn
	}
	data := g.Txn.Data.Data
	if data.Alias == "" {
		return Node{}, ErrNodeAliasEmpty
	}
	if data.ClientIP == "" || data.ClientPort == 0 {
		return Node{}, ErrNodeAddrMissing
	}
	addr := net.JoinHostPort(data.ClientIP, strconv.FormatUint(uint64(data.ClientPort), 10))
	return Node{
		Alias:    data.Alias,
		Dest:     g.Txn.Data.Dest,
		Addr:     addr,
		Services: data.Services,
	}, nil
}
