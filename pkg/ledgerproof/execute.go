package ledgerproof

import "github.com/osvaldoandrade/ledgerproof/internal/cli"

// Execute runs the ledgerproof CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
