package cmd

import (
	"os"

	"github.com/brogergvhs/ebangla2epub/internal/config"
	"github.com/brogergvhs/ebangla2epub/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
)

var rootCmd = &cobra.Command{
	Use:   "ebangla2epub <book-url>",
	Short: "Convert an ebanglalibrary.com book into an EPUB",
	Long: `Fetch a book listing page from ebanglalibrary.com, download every chapter
and write them as one EPUB. Defaults come from the selected config and are
overwritten by CLI flags.`,
	Args:          cobra.ExactArgs(1),
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnvFiles()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.NewLogger(flagDebug).Errorf("%v", err)
		os.Exit(1)
	}
}
