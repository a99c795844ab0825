package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema context built from the configured database",
		Long: `Introspect the configured database and print the schema context: every
table with its columns, row counts, sample rows, distinct category values,
and date ranges. This is the exact text the SQL generator is grounded on.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the structured context as JSON")

	return cmd
}

func runSchema(cmd *cobra.Command, jsonOutput bool) error {
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

	sc, err := p.cache.Context(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sc)
	}
	fmt.Fprintln(cmd.OutOrStdout(), sc.Text)
	return nil
}
