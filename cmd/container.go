package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dashu-baba/docker-service-manager/internal/containers"
)

func newContainerCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "container",
		Aliases: []string{"containers"},
		Short:   "List, remove and inspect containers",
		Args:    cobra.NoArgs,
	}

	var all bool
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List running containers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed(o.env(cmd).ListContainers(cmd.Context(), all))
		},
	}
	ls.Flags().BoolVarP(&all, "all", "a", false, "include stopped containers")

	var force bool
	rm := &cobra.Command{
		Use:   "rm ID [ID...]",
		Short: "Remove one or more containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.env(cmd)
			var errs []error
			for _, id := range args {
				if err := a.RemoveContainer(cmd.Context(), id, force); err != nil {
					errs = append(errs, failed(err))
				}
			}
			return joinFailures(errs)
		},
	}
	rm.Flags().BoolVarP(&force, "force", "f", false, "remove running containers")

	var yes bool
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove all stopped containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirmed(cmd, yes, "Are you sure you want to remove all stopped containers?")
			if err != nil || !ok {
				return err
			}
			return failed(o.env(cmd).PruneContainers(cmd.Context()))
		},
	}
	prune.Flags().BoolVarP(&yes, "yes", "y", false, "do not prompt for confirmation")

	var tail int
	logs := &cobra.Command{
		Use:   "logs ID",
		Short: "Show the last lines of a container's output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed(o.env(cmd).ContainerLogs(cmd.Context(), args[0], tail))
		},
	}
	logs.Flags().IntVarP(&tail, "tail", "n", containers.DefaultLogTail, "number of lines to show")

	stats := &cobra.Command{
		Use:   "stats [NAME...]",
		Short: "Show CPU and memory usage of running containers",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed(o.env(cmd).ContainerStats(cmd.Context(), args...))
		},
	}

	cmd.AddCommand(ls, rm, prune, logs, stats)
	return cmd
}

// confirmed asks a y/N question on the command's input unless yes is set.
func confirmed(cmd *cobra.Command, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return false, nil
	}
	return true, nil
}

// joinFailures keeps exit code 1 when every failure was classified.
func joinFailures(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, 0, len(errs))
	code := 1
	for _, err := range errs {
		msgs = append(msgs, err.Error())
		var ee ExitError
		if !errors.As(err, &ee) {
			code = 3
		}
	}
	return ExitError{Code: code, Err: errors.New(strings.Join(msgs, "\n"))}
}
