package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hanlens/hanlens/internal/config"
	"github.com/hanlens/hanlens/internal/scrape"
	"github.com/hanlens/hanlens/internal/translate"
	"github.com/hanlens/hanlens/internal/types"
)

// TranslateCmd creates the translate command.
func TranslateCmd(cfg *config.Config) *cobra.Command {
	var providerFlag string
	var threadMode bool
	var inputPath string

	cmd := &cobra.Command{
		Use:   "translate [url]",
		Short: "Translate a thread, streaming results as they arrive",
		Long: `Scrape the thread at the given URL and translate every post.

By default each post gets a quick natural translation, printed the
moment it streams in. With --thread, posts are translated with
per-segment pinyin and glosses instead.

Instead of a URL, --input reads a JSON array of posts from a file
('-' for stdin):

  hanlens translate https://example.com/thread/123
  hanlens translate --thread https://example.com/thread/123
  cat posts.json | hanlens translate --input -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return runTranslate(ctx, cfg, args, providerFlag, threadMode, inputPath)
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "provider override (anthropic, openai, google)")
	cmd.Flags().BoolVarP(&threadMode, "thread", "t", false, "full thread mode with segments and notes")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "read posts from a JSON file instead of scraping ('-' for stdin)")
	return cmd
}

func runTranslate(ctx context.Context, cfg *config.Config, args []string, providerFlag string, threadMode bool, inputPath string) error {
	tweets, err := loadTweets(ctx, cfg, args, inputPath)
	if err != nil {
		return err
	}

	provider, apiKey, name, err := resolveProvider(cfg, providerFlag)
	if err != nil {
		return err
	}

	sqlDB, store := openStore(cfg)
	if sqlDB != nil {
		defer sqlDB.Close()
	}

	fmt.Printf("Translating %d posts via %s (%s)...\n\n",
		len(tweets), translate.ProviderDisplayName(name), translate.ProviderModel(name))

	byID := make(map[string]types.Tweet, len(tweets))
	for _, tw := range tweets {
		byID[tw.ID] = tw
	}

	var callErr error
	if threadMode {
		provider.TranslateThreadStreaming(ctx, tweets, apiKey, translate.ThreadCallbacks{
			OnTranslation: func(tt types.TranslatedTweet) {
				printThreadTranslation(byID[tt.ID], tt)
			},
			OnComplete: func(stats types.UsageStats) {
				cost := recordUsage(context.Background(), store, name, stats)
				printCallSummary(stats, cost)
			},
			OnError: func(err error) { callErr = err },
		})
	} else {
		provider.TranslateQuickStreaming(ctx, tweets, apiKey, translate.QuickCallbacks{
			OnTranslation: func(qt types.QuickTranslation) {
				printQuickTranslation(byID[qt.ID], qt)
			},
			OnComplete: func(stats types.UsageStats) {
				cost := recordUsage(context.Background(), store, name, stats)
				printCallSummary(stats, cost)
			},
			OnError: func(err error) { callErr = err },
		})
	}
	return callErr
}

// loadTweets resolves the posts to translate: a JSON file via --input,
// or a scraped thread from the URL argument.
func loadTweets(ctx context.Context, cfg *config.Config, args []string, inputPath string) ([]types.Tweet, error) {
	if inputPath != "" {
		return readTweetsJSON(inputPath)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a thread URL or --input is required")
	}
	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("%q is not a URL; use --input for local files", url)
	}
	fmt.Printf("Scraping %s...\n", url)
	return scrape.New(cfg).FetchThread(ctx, url)
}

func readTweetsJSON(path string) ([]types.Tweet, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	var tweets []types.Tweet
	if err := json.Unmarshal(data, &tweets); err != nil {
		return nil, fmt.Errorf("failed to parse posts JSON: %w", err)
	}
	if len(tweets) == 0 {
		return nil, fmt.Errorf("no posts in input")
	}
	return tweets, nil
}

func printQuickTranslation(src types.Tweet, qt types.QuickTranslation) {
	if src.Author != "" {
		fmt.Printf("\033[1m%s\033[0m  %s\n", src.Author, src.Text)
	} else if src.Text != "" {
		fmt.Printf("%s\n", src.Text)
	}
	fmt.Printf("  → %s\n\n", qt.NaturalTranslation)
}

func printThreadTranslation(src types.Tweet, tt types.TranslatedTweet) {
	printQuickTranslation(src, tt.QuickTranslation)
	for _, seg := range tt.Segments {
		fmt.Printf("    %s  [%s]  %s\n", seg.Chinese, seg.Pinyin, seg.Gloss)
	}
	for _, note := range tt.Notes {
		fmt.Printf("    note: %s\n", note)
	}
	if len(tt.Segments) > 0 || len(tt.Notes) > 0 {
		fmt.Println()
	}
}

func printCallSummary(stats types.UsageStats, cost float64) {
	fmt.Printf("\033[2mTokens: %d in / %d out  Cost: $%.4f\033[0m\n",
		stats.InputTokens, stats.OutputTokens, cost)
}
