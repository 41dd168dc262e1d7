package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/kagglehub/pkg/cache"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cache",
		Long:  "Clean, show information about, and manage the local resource cache",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
		newCacheDeleteCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the cache",
		Long:  "Remove cached resources to free up disk space",
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			msg, err := op.Clean(kinds...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, fmt.Sprintf("only clean these subfolders %v", cache.Subfolders))

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size of the cache per resource kind",
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			msg, err := op.GetInfo()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	return cmd
}

func newCacheDirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			dir, err := op.GetDirectory()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}

	return cmd
}

// Number of arguments expected by the delete command.
const deleteCommandArgs = 2

func newCacheDeleteCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "delete KIND HANDLE",
		Short: "Delete one cached resource",
		Long: `Delete a cached resource or a single file of it.
KIND is one of: model, dataset, competition, notebook, package, utility_script.`,
		Args: cobra.ExactArgs(deleteCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := handle.Parse(handle.Kind(args[0]), args[1])
			if err != nil {
				return err
			}
			op, err := loadCacheOperation()
			if err != nil {
				return err
			}
			msg, err := op.Delete(h, path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "delete a single file of the resource")

	return cmd
}
