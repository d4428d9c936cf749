package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/osvaldoandrade/ledgerproof/internal/platform"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	JSONOutput bool
	LogLevel   string
	LogFormat  string
	Genesis    string
	Node       string
	CachePath  string
	Submitter  string
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{
		JSONOutput: envBoolDefault("LEDGERPROOF_JSON", false),
		LogLevel:   envDefault("LEDGERPROOF_LOG_LEVEL", "info"),
		LogFormat:  envDefault("LEDGERPROOF_LOG_FORMAT", "text"),
		Genesis:    envDefault("LEDGERPROOF_GENESIS", ""),
		Node:       envDefault("LEDGERPROOF_NODE", ""),
		CachePath:  envDefault("LEDGERPROOF_CACHE", ""),
		Submitter:  envDefault("LEDGERPROOF_SUBMITTER", ""),
	}
	cmd := &cobra.Command{
		Use:           "ledgerproof",
		Short:         "Verify ledger replies against their cryptographic proofs",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := platform.ConfigureLogger(opts.LogLevel, opts.LogFormat, cmd.ErrOrStderr())
			return err
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", opts.JSONOutput, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")
	cmd.PersistentFlags().StringVar(&opts.Genesis, "genesis", opts.Genesis, "Path to the pool transaction genesis file")
	cmd.PersistentFlags().StringVar(&opts.Node, "node", opts.Node, "Validator alias to submit requests to")
	cmd.PersistentFlags().StringVar(&opts.CachePath, "cache", opts.CachePath, "Path to the verified-state cache database")
	cmd.PersistentFlags().StringVar(&opts.Submitter, "submitter", opts.Submitter, "Submitter DID placed on outgoing requests")

	cmd.AddCommand(
		newVerifyCmd(opts),
		newEncodeCmd(opts),
		newResolveCmd(opts),
		newGenesisCmd(opts),
		newCacheCmd(opts),
	)

	return cmd
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBoolDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
