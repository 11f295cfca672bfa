package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/z/xonotic-map-manager/internal/models"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var long, short bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locally installed map packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, err := loadServer(cmd)
			if err != nil {
				return err
			}

			packages, err := srv.Library.ListInstalled()
			if err != nil {
				return err
			}

			detail := models.ParseDetail(short, long)
			for _, pkg := range packages {
				fmt.Println(pkg.Render(models.RenderOptions{
					Detail:      detail,
					DownloadURL: srv.DownloadURL,
				}))
			}

			fmt.Printf("\nTotal packages found: %d\n", len(packages))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show long format")
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show short format")

	return cmd
}
