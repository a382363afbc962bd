package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dashu-baba/docker-service-manager/internal/render"
)

func newInfoCmd(o *rootOptions) *cobra.Command {
	var host, privileges bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show Docker engine information",
		Long: `Show Docker engine information. --host adds host resources
(CPU, memory, disks, network) and --privileges checks whether the current
user can manage Docker without sudo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.env(cmd)
			ctx := cmd.Context()

			render.Heading(a.Out, "Docker Engine")
			if err := a.DockerInfo(ctx); err != nil {
				return failed(err)
			}
			if host {
				render.Heading(a.Out, "Host Resources")
				if err := a.HostResources(ctx); err != nil {
					return failed(err)
				}
			}
			if privileges {
				render.Heading(a.Out, "Privileges")
				return failed(a.CheckPrivileges())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&host, "host", false, "include host resources")
	cmd.Flags().BoolVar(&privileges, "privileges", false, "check the current user's privileges")
	return cmd
}
