package main

import (
	"fmt"
	"os"

	"github.com/conflu-dev/conflu/internal/config"
	"github.com/conflu-dev/conflu/internal/confluence"
	"github.com/conflu-dev/conflu/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "conflu",
	Short: "Confluence Cloud CLI for ADF page management",
	Long: `Fast Confluence Cloud page management built on the Atlassian
Document Format.

Download pages as ADF JSON, edit sections and bodied extensions
locally, diff against the remote copy, and push changes back with
version-conflict protection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		jsonMode, _ := cmd.Flags().GetBool("json")
		output.SetJSONMode(jsonMode)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(getCmd, putCmd, diffCmd, syncCmd, searchCmd, indexCmd)
	rootCmd.AddCommand(sectionsCmd, extractCmd, replaceCmd, insertAfterCmd, extensionsCmd, extReplaceCmd)
	rootCmd.AddCommand(viewCmd, convertCmd, browseCmd, hintsCmd)

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON for programmatic parsing")
	rootCmd.PersistentFlags().String("dir", "pages", "Pages directory")

	viper.BindPFlag("pages_dir", rootCmd.PersistentFlags().Lookup("dir"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// newClient builds an API client from the configured credentials.
func newClient() (*confluence.Client, error) {
	url, email, token, err := config.Credentials()
	if err != nil {
		return nil, err
	}
	return confluence.NewClient(url, email, token), nil
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		output.EmitError(err.Error())
		os.Exit(1)
	}
}
