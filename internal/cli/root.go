// Package cli implements the kagglehub command line.
package cli

import "github.com/spf13/cobra"

// NewRootCmd creates the kagglehub command with all subcommands.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "kagglehub",
		Short: "Download models, datasets and notebook outputs from Kaggle",
		Long: `kagglehub fetches Kaggle resources into a local cache:
- download: models, datasets, competitions, notebook outputs
- cache: inspect and clean the local cache
- config: view and change settings`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable download progress bars")

	ConfigPath = &configPath
	Verbose = &verbose
	NoProgress = &noProgress

	cmd.AddCommand(
		NewDownloadCmd(),
		NewCacheCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return cmd
}
