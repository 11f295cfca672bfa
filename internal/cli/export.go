package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <local|repos> [file]",
		Short: "Export the local store or the repository catalogs to a file",
		Long: `Exports the locally tracked packages (local) or every repository
catalog (repos). Formats: json, shasums, and for local also maplist.
Export failures are logged and never fail the command.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, err := loadServer(cmd)
			if err != nil {
				return err
			}

			file := ""
			if len(args) > 1 {
				file = args[1]
			}

			var exportErr error
			switch args[0] {
			case "local":
				switch format {
				case "json":
					exportErr = srv.Library.ExportMapPackages(defaultName(file, "xmm-export.maps.json"))
				case "shasums":
					exportErr = srv.Library.ExportHashIndex(defaultName(file, "xmm-export.maps.shasums"))
				case "maplist":
					exportErr = srv.Library.ExportMaplist(defaultName(file, "xmm-export.maps.txt"))
				default:
					return fmt.Errorf("unknown format %q, want json, shasums or maplist", format)
				}
			case "repos":
				for _, source := range srv.Repositories.Sources() {
					var err error
					switch format {
					case "json":
						err = source.ExportCatalog(defaultName(file, source.Name+".maps.json"))
					case "shasums":
						err = source.ExportHashIndex(defaultName(file, source.Name+".maps.shasums"))
					default:
						return fmt.Errorf("unknown format %q, want json or shasums", format)
					}
					if err != nil && exportErr == nil {
						exportErr = err
					}
				}
			default:
				return fmt.Errorf("unknown export target %q, want local or repos", args[0])
			}

			// Fail soft: a failed export is logged, not fatal.
			if exportErr != nil {
				logrus.Errorf("export failed: %v", exportErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, shasums or maplist")

	return cmd
}

func defaultName(file, fallback string) string {
	if file != "" {
		return file
	}
	return fallback
}
