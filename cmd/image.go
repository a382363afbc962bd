package cmd

import (
	"github.com/spf13/cobra"
)

func newImageCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image",
		Aliases: []string{"images"},
		Short:   "List and remove images",
		Args:    cobra.NoArgs,
	}

	var all bool
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List images",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed(o.env(cmd).ListImages(cmd.Context(), all))
		},
	}
	ls.Flags().BoolVarP(&all, "all", "a", false, "include intermediate images")

	var force bool
	rm := &cobra.Command{
		Use:   "rm REF [REF...]",
		Short: "Remove one or more images by ID or name:tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.env(cmd)
			var errs []error
			for _, ref := range args {
				if err := a.RemoveImage(cmd.Context(), ref, force); err != nil {
					errs = append(errs, failed(err))
				}
			}
			return joinFailures(errs)
		},
	}
	rm.Flags().BoolVarP(&force, "force", "f", false, "remove images used by containers")

	var (
		pruneAll bool
		yes      bool
	)
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove dangling images, or every unused image with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := "Are you sure you want to remove all dangling images?"
			if pruneAll {
				question = "Are you sure you want to remove every image not used by a container?"
			}
			ok, err := confirmed(cmd, yes, question)
			if err != nil || !ok {
				return err
			}
			return failed(o.env(cmd).PruneImages(cmd.Context(), pruneAll))
		},
	}
	prune.Flags().BoolVarP(&pruneAll, "all", "a", false, "remove all unused images, not just dangling ones")
	prune.Flags().BoolVarP(&yes, "yes", "y", false, "do not prompt for confirmation")

	cmd.AddCommand(ls, rm, prune)
	return cmd
}
