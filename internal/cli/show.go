package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/z/xonotic-map-manager/internal/models"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var local bool
	var long, short, highlight bool

	cmd := &cobra.Command{
		Use:   "show <pk3>",
		Short: "Show details of a map package",
		Long: `Shows a package from the repositories, or with --local from the
store, verifying that the installed file still matches its tracked
hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, err := loadServer(cmd)
			if err != nil {
				return err
			}

			pkg, err := srv.Library.ShowMap(args[0], local)
			if models.IsWarning(err) {
				logrus.Warn(err)
				return nil
			}
			if err != nil {
				return err
			}

			opts := models.RenderOptions{
				Detail:      models.ParseDetail(short, long),
				DownloadURL: srv.DownloadURL,
			}
			if highlight {
				opts.Highlight = args[0]
			}
			fmt.Println(pkg.Render(opts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Show the locally tracked package")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show long format")
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show short format")
	cmd.Flags().BoolVarP(&highlight, "highlight", "H", false, "Highlight the name in results")

	return cmd
}
