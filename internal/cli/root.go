package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/z/xonotic-map-manager/internal/config"
	"github.com/z/xonotic-map-manager/internal/server"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xmm",
		Short: "Manage Xonotic map packages from repositories",
		Long: `Xonotic Map Manager installs, removes and discovers map packages,
keeping a local library in sync with one or more map repositories.

Commands operate on a target directory (the server's map dir) and a
local store tracking which packages are installed there.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().String("server", "", "Named server target from the config")
	rootCmd.PersistentFlags().StringP("target", "T", "", "Override the target directory")

	// Static command registry
	rootCmd.AddCommand(
		NewSearchCmd(),
		NewInstallCmd(),
		NewRemoveCmd(),
		NewDiscoverCmd(),
		NewListCmd(),
		NewShowCmd(),
		NewExportCmd(),
		NewUpdateCmd(),
	)

	return rootCmd
}

// loadServer resolves the config file and builds the LocalServer the
// command operates on.
func loadServer(cmd *cobra.Command) (*server.LocalServer, *config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = os.Getenv("XMM_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = config.DefaultConfigFile()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	serverName, _ := cmd.Flags().GetString("server")
	srv, err := server.New(cfg, serverName)
	if err != nil {
		return nil, nil, err
	}

	if target, _ := cmd.Flags().GetString("target"); target != "" {
		srv.Library.TargetDir = config.ExpandUser(target)
	}

	srv.Library.Confirm = queryYesNo
	return srv, cfg, nil
}
