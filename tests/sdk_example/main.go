package main

import (
	"context"
	"fmt"
	"os"

	"github.com/osvaldoandrade/ledgerproof/pkg/ledgerproofsdk"
)

func main() {
	genesis := os.Getenv("LEDGERPROOF_GENESIS")
	if genesis == "" {
		fmt.Fprintln(os.Stderr, "LEDGERPROOF_GENESIS is required (path to pool genesis file)")
		os.Exit(1)
	}
	dest := os.Getenv("LEDGERPROOF_DID")
	if dest == "" {
		fmt.Fprintln(os.Stderr, "LEDGERPROOF_DID is required (DID to resolve)")
		os.Exit(1)
	}

	cfg := ledgerproofsdk.DefaultConfig(genesis)
	cfg.Node = os.Getenv("LEDGERPROOF_NODE")
	cfg.Cache.DBPath = os.Getenv("LEDGERPROOF_CACHE")

	ctx := context.Background()
	client, err := ledgerproofsdk.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	record, err := client.GetNym(ctx, dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get nym: %v\n", err)
	} else {
		fmt.Printf("nym seq_no=%d root=%s data=%s\n", record.SeqNo, record.RootHash, string(record.Data))
	}

	if cfg.Cache.DBPath == "" {
		return
	}

	cached, err := client.GetCachedNym(ctx, dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cached nym: %v\n", err)
	} else {
		fmt.Printf("cached record_id=%s seq_no=%d root=%s\n", cached.RecordID, cached.SeqNo, cached.RootHash)
	}

	rows, err := client.Query(ctx, "SELECT record_id, hex(path) FROM verified_state ORDER BY updated_at DESC LIMIT 5")
	if err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		var pathHex string
		if err := rows.Scan(&recordID, &pathHex); err != nil {
			fmt.Fprintf(os.Stderr, "scan: %v\n", err)
			return
		}
		fmt.Printf("cache row record_id=%s path=%s\n", recordID, pathHex)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "rows: %v\n", err)
	}
}
