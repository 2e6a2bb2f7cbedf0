package cmd

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/ebangla2epub/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		activePath, err := config.ActiveConfigPath()
		if errors.Is(err, config.ErrNoConfig) {
			return fmt.Errorf("%w; run `ebangla2epub config init` first", err)
		}
		if err != nil {
			return err
		}

		def := config.DefaultConfig()
		if err := config.SaveYAML(def, activePath); err != nil {
			return err
		}

		fmt.Printf("Reset active config: %s\n\n", activePath)
		def.Print()
		return nil
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
}
