package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/z/xonotic-map-manager/internal/library"
	"github.com/z/xonotic-map-manager/internal/models"
)

// NewInstallCmd creates the install command
func NewInstallCmd() *cobra.Command {
	var opts library.InstallOptions

	cmd := &cobra.Command{
		Use:   "install <pk3|url>",
		Short: "Install a map package from a repository or a URL",
		Long: `Installs a pk3 by its repository filename, or directly from a URL.
URL installs with no matching repository entry still download, but are
not tracked in the local store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, err := loadServer(cmd)
			if err != nil {
				return err
			}

			_, err = srv.Library.Install(cmd.Context(), args[0], opts)
			if models.IsWarning(err) {
				// Install succeeded, the package is just untracked.
				logrus.Warn(err)
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Repository, "repository", "r", "", "Install from this repository only")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "Overwrite the file on disk without prompting")

	return cmd
}
