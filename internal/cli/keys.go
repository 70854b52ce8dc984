package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hanlens/hanlens/internal/config"
	"github.com/hanlens/hanlens/internal/translate"
)

// SetKeyCmd creates the set-key command, which stores an API key in the
// OS keyring.
func SetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <provider>",
		Short: "Store a provider API key in the OS keyring",
		Long: `Store an API key for a provider (anthropic, openai, google) in the
OS keyring. The key is read from stdin so it never lands in shell
history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if translate.ProviderDisplayName(name) == name {
				return fmt.Errorf("unknown provider %q (anthropic, openai, google)", name)
			}

			fmt.Printf("API key for %s: ", translate.ProviderDisplayName(name))
			reader := bufio.NewReader(os.Stdin)
			key, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read key: %w", err)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return fmt.Errorf("empty key")
			}

			if err := config.StoreAPIKey(name, key); err != nil {
				return fmt.Errorf("failed to store key: %w", err)
			}
			fmt.Println("Stored.")
			return nil
		},
	}
}

// ProvidersCmd lists the known providers and their models.
func ProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List available providers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range []string{"anthropic", "openai", "google"} {
				fmt.Printf("%-10s %-20s %s\n",
					name, translate.ProviderDisplayName(name), translate.ProviderModel(name))
			}
		},
	}
}
