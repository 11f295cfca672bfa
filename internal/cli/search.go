package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/z/xonotic-map-manager/internal/models"
	"github.com/z/xonotic-map-manager/internal/repository"
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	var filters repository.SearchFilters
	var long, short, highlight bool

	cmd := &cobra.Command{
		Use:   "search [string]",
		Short: "Search repositories for maps by bsp name",
		Long: `Searches every configured repository. The positional string matches
bsp names; the flags add further criteria. Criteria are combined as a
union: a package matches when any one criterion does.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				filters.BspName = args[0]
			}

			srv, _, err := loadServer(cmd)
			if err != nil {
				return err
			}

			results, err := srv.Repositories.SearchAll(filters)
			if err != nil {
				return err
			}

			detail := models.ParseDetail(short, long)
			total := 0
			for _, result := range results {
				for _, pkg := range result.Packages {
					total++
					opts := models.RenderOptions{
						Detail:      detail,
						DownloadURL: result.Source.DownloadURL,
					}
					if highlight {
						opts.Highlight = filters.BspName
					}
					fmt.Println(pkg.Render(opts))
				}
			}

			fmt.Printf("\nTotal packages found: %d\n", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filters.Gametype, "gametype", "g", "", "Filter by gametype")
	cmd.Flags().StringVarP(&filters.Pk3Name, "pk3", "p", "", "Filter by pk3 name")
	cmd.Flags().StringVarP(&filters.Title, "title", "t", "", "Filter by title")
	cmd.Flags().StringVarP(&filters.Author, "author", "a", "", "Filter by author")
	cmd.Flags().StringVar(&filters.Shasum, "shasum", "", "Filter by shasum")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show long format")
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show short format")
	cmd.Flags().BoolVarP(&highlight, "highlight", "H", false, "Highlight the search term in results")

	return cmd
}
