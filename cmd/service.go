package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dashu-baba/docker-service-manager/internal/app"
)

// newUnitCmd builds `dsm service` and `dsm socket`; pick selects the unit.
func newUnitCmd(o *rootOptions, use, short string, pick func(a *app.App) app.Unit) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the unit state, boot setting and Engine API reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.env(cmd)
			return failed(a.UnitStatus(cmd.Context(), pick(a)))
		},
	})

	for _, v := range []struct {
		verb  app.Verb
		short string
	}{
		{app.VerbStart, "Start the unit and wait for the daemon to answer"},
		{app.VerbStop, "Stop the unit"},
		{app.VerbRestart, "Restart the unit and wait for the daemon to answer"},
		{app.VerbEnable, "Start the unit at boot"},
		{app.VerbDisable, "Do not start the unit at boot"},
	} {
		verb := v.verb
		cmd.AddCommand(&cobra.Command{
			Use:   string(verb),
			Short: v.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a := o.env(cmd)
				return failed(a.UnitAction(cmd.Context(), pick(a), verb))
			},
		})
	}
	return cmd
}
