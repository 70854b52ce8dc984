// Package cli wires the translation engine, scraper, and usage store
// into the hanlens command tree.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hanlens/hanlens/internal/config"
	"github.com/hanlens/hanlens/internal/db"
	"github.com/hanlens/hanlens/internal/logging"
	"github.com/hanlens/hanlens/internal/translate"
	"github.com/hanlens/hanlens/internal/types"
	"github.com/hanlens/hanlens/internal/usage"
)

// SetupRootCmd builds the command tree around a loaded config.
func SetupRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "hanlens",
		Short: "Translate Chinese social-media threads with streaming LLM output",
		Long: `hanlens scrapes a social-media thread, translates it with your
configured LLM provider, and streams results as they arrive. Full thread
mode adds per-segment pinyin and glosses for language learners.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Keep CLI output clean unless debugging is on.
			if os.Getenv("HANLENS_DEBUG") == "" {
				logging.Disable()
			}
		},
	}

	root.AddCommand(
		TranslateCmd(cfg),
		BreakdownCmd(cfg),
		UsageCmd(cfg),
		SetKeyCmd(),
		ProvidersCmd(),
	)
	return root
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCancelled.")
		cancel()
	}()
	return ctx, cancel
}

// resolveProvider picks the provider (flag beats config), constructs the
// adapter, and resolves its API key.
func resolveProvider(cfg *config.Config, flagValue string) (translate.Provider, string, string, error) {
	name := cfg.Provider
	if flagValue != "" {
		name = flagValue
	}

	registry := translate.NewRegistryWithModels(cfg.Models)
	provider, err := registry.Get(name)
	if err != nil {
		return nil, "", "", err
	}

	apiKey := cfg.APIKey(name)
	if apiKey == "" {
		return nil, "", "", fmt.Errorf(
			"no API key for %s; set it in config, the environment, or run 'hanlens set-key %s'",
			translate.ProviderDisplayName(name), name)
	}
	return provider, apiKey, name, nil
}

// openStore opens the usage database. A broken database degrades to
// no-op accounting rather than blocking translation.
func openStore(cfg *config.Config) (*sql.DB, *db.UsageStore) {
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: usage tracking disabled: %v\n", err)
		return nil, nil
	}
	return sqlDB, db.NewUsageStore(sqlDB)
}

// recordUsage persists one completed call and returns its cost.
func recordUsage(ctx context.Context, store *db.UsageStore, provider string, stats types.UsageStats) float64 {
	cost := usage.CostFor(provider, stats.InputTokens, stats.OutputTokens)
	if store == nil {
		return cost
	}
	entry := usage.Entry{
		InputTokens:  stats.InputTokens,
		OutputTokens: stats.OutputTokens,
		Cost:         cost,
		Timestamp:    time.Now().UTC(),
	}
	if err := store.Append(ctx, provider, entry); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record usage: %v\n", err)
	}
	return cost
}
