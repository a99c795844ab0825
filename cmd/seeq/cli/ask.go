package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var (
		jsonOutput bool
		dev        bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Convert a question to SQL, run it, and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), jsonOutput, dev)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full session as JSON")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, jsonOutput, dev bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Logging, dev)

	p, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	session, err := p.converter.Convert(context.Background(), question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(session)
	}

	fmt.Fprintf(out, "SQL:    %s\n", session.FinalSQL)
	fmt.Fprintf(out, "Status: %s (%d attempts)\n\n", session.Status, len(session.Attempts))
	if session.Result != nil {
		fmt.Fprintln(out, session.Result.Render(100))
	}
	return nil
}
