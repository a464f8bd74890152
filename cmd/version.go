package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var Version = "0.1.0-dev"

func VersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.JSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": Version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "lewis version %s\n", Version)
			return err
		},
	}
}
