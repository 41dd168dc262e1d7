package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/hub"
)

type downloadFunc func(h *hub.Hub, ctx context.Context, ref string, opts ...hub.Option) (string, error)

// NewDownloadCmd creates the download command with one subcommand per resource kind.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a resource into the cache",
		Long:  "Resolve a handle to a local path, downloading or mounting it when needed",
	}

	cmd.AddCommand(
		newDownloadKindCmd("model HANDLE", "Download a model variation (owner/model/framework/variation[/version])", (*hub.Hub).ModelDownload),
		newDownloadKindCmd("dataset HANDLE", "Download a dataset (owner/dataset[/version])", (*hub.Hub).DatasetDownload),
		newDownloadKindCmd("competition SLUG", "Download competition data", (*hub.Hub).CompetitionDownload),
		newDownloadKindCmd("notebook HANDLE", "Download a notebook output (owner/notebook[/version])", (*hub.Hub).NotebookOutputDownload),
		newDownloadKindCmd("package HANDLE", "Download a package (owner/notebook[/version])", (*hub.Hub).PackageDownload),
		newDownloadKindCmd("utility-script HANDLE", "Download a utility script (owner/notebook[/version])", (*hub.Hub).UtilityScriptDownload),
	)

	return cmd
}

func newDownloadKindCmd(use, short string, download downloadFunc) *cobra.Command {
	var (
		path         string
		force        bool
		requirements string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			h, err := hub.NewWithProgress(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			opts := []hub.Option{hub.WithPath(path)}
			if force {
				opts = append(opts, hub.WithForceDownload())
			}
			local, err := download(h, cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), local)

			if requirements != "" {
				if err := h.Tracker().WriteRequirements(requirements); err != nil {
					return err
				}
				logger.Info("Requirements written", logger.Fields{"path": requirements})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "download a single file of the resource")
	cmd.Flags().BoolVar(&force, "force", false, "discard any cached copy first")
	cmd.Flags().StringVar(&requirements, "requirements", "", "also write the resolved handle to a requirements file (e.g. "+RequirementsFileName+")")

	return cmd
}
