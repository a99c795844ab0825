// Package cli implements the seeq command tree.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seeq",
		Short: "Ask your database questions in plain language",
		Long: `Seeq converts natural language questions into SQL, executes them against
your database, and verifies the results. It introspects the schema and real
data so generated queries use actual table names, category spellings, and
date ranges. Serve it as a REST API, an MCP server for AI agents, or use it
straight from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./seeq.yaml)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newSuggestCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("seeq")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.seeq")
	}

	viper.SetEnvPrefix("SEEQ")
	viper.AutomaticEnv()
	viper.ReadInConfig() // config file is optional
}
