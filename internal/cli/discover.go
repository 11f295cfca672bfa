package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/z/xonotic-map-manager/internal/library"
	"github.com/z/xonotic-map-manager/internal/models"
)

// NewDiscoverCmd creates the discover command
func NewDiscoverCmd() *cobra.Command {
	var add bool
	var repositoryName string
	var long, short bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover map packages in the target directory",
		Long: `Matches pk3 files in the target directory against the repositories
by filename and content hash. With --add, matching packages are tracked
in the local store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, err := loadServer(cmd)
			if err != nil {
				return err
			}

			results, err := srv.Library.Discover(cmd.Context(), add, repositoryName)
			if err != nil {
				return err
			}

			detail := models.ParseDetail(short, long)
			for _, result := range results {
				if result.Package == nil || result.Status == library.DiscoverHashMismatch {
					fmt.Printf("%s: %s\n", result.FileName, result.Status)
					continue
				}
				fmt.Println(result.Package.Render(models.RenderOptions{
					Detail:      detail,
					DownloadURL: srv.DownloadURL,
				}))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&add, "add", "a", false, "Add discovered maps to the local store")
	cmd.Flags().StringVarP(&repositoryName, "repository", "r", "", "Match against this repository only")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show long format")
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show short format")

	return cmd
}
