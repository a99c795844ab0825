package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Print example questions derived from the schema and data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of suggestions")

	return cmd
}

func runSuggest(cmd *cobra.Command, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Logging, false)

	p, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	suggestions, err := p.suggester.Suggestions(context.Background(), limit)
	if err != nil {
		return err
	}
	for _, q := range suggestions {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", q)
	}
	return nil
}
