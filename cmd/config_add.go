package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/ebangla2epub/internal/config"

	"github.com/spf13/cobra"
)

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config profile with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			fmt.Print("Enter label for new config: ")
			label, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		}

		path, err := config.CreateConfig(strings.TrimSpace(label))
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		fmt.Printf("Run `ebangla2epub config switch %s` to use it.\n", strings.TrimSpace(label))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddCmd)
}
