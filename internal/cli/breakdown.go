package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanlens/hanlens/internal/config"
	"github.com/hanlens/hanlens/internal/types"
)

// BreakdownCmd creates the breakdown command.
func BreakdownCmd(cfg *config.Config) *cobra.Command {
	var providerFlag string
	var ctxAuthor, ctxText, ctxURL string

	cmd := &cobra.Command{
		Use:   "breakdown <text>",
		Short: "Break a Chinese text into segments with pinyin and glosses",
		Long: `Analyze a single text block: segment it, add pinyin and a gloss per
segment, plus grammar notes. When the text is a reply, pass the original
post for context:

  hanlens breakdown "这个句子有点难"
  hanlens breakdown --context-author 李雷 --context-text "原帖" "回复内容"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			provider, apiKey, name, err := resolveProvider(cfg, providerFlag)
			if err != nil {
				return err
			}

			sqlDB, store := openStore(cfg)
			if sqlDB != nil {
				defer sqlDB.Close()
			}

			var tctx *types.ThreadContext
			if ctxAuthor != "" || ctxText != "" || ctxURL != "" {
				tctx = &types.ThreadContext{Author: ctxAuthor, Text: ctxText, URL: ctxURL}
			}

			breakdown, stats, err := provider.GetBreakdown(ctx, args[0], apiKey, tctx)
			if err != nil {
				return err
			}

			for _, seg := range breakdown.Segments {
				fmt.Printf("%s  [%s]  %s\n", seg.Chinese, seg.Pinyin, seg.Gloss)
			}
			if len(breakdown.Notes) > 0 {
				fmt.Println()
				for _, note := range breakdown.Notes {
					fmt.Printf("note: %s\n", note)
				}
			}
			fmt.Println()

			cost := recordUsage(ctx, store, name, stats)
			printCallSummary(stats, cost)
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "provider override (anthropic, openai, google)")
	cmd.Flags().StringVar(&ctxAuthor, "context-author", "", "author of the original post")
	cmd.Flags().StringVar(&ctxText, "context-text", "", "text of the original post")
	cmd.Flags().StringVar(&ctxURL, "context-url", "", "URL of the thread")
	return cmd
}
