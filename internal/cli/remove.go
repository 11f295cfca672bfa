package cli

import (
	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <pk3>",
		Short: "Remove an installed map package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, err := loadServer(cmd)
			if err != nil {
				return err
			}
			return srv.Library.Remove(args[0])
		},
	}
}
