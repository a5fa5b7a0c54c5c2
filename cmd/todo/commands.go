package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"timer-todos/pkg/task"
)

func newAddCmd() *cobra.Command {
	var (
		hours, minutes int
		duration       time.Duration
		run            bool
	)
	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task",
		Long:  `Add a task with an optional countdown given as --hours/--minutes or as a --duration like 25m.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			seconds := task.FromParts(hours, minutes)
			if duration > 0 {
				seconds = int(duration / time.Second)
			}
			t, ok := s.app.Add(cmd.Context(), strings.Join(args, " "), seconds)
			if !ok {
				return fmt.Errorf("task text is empty")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task created: %s\n", shortID(t.ID))
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s)\n", t.Text, task.FormatClock(t.Duration))

			if run && t.Duration > 0 {
				return runCountdown(cmd, s, t)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&hours, "hours", "H", 0, "countdown hours")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "countdown minutes")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "countdown as a duration (overrides --hours/--minutes)")
	cmd.Flags().BoolVarP(&run, "run", "r", false, "start the countdown right away")
	return cmd
}

func newListCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			view := s.app.Snapshot(task.ParseFilter(filter))
			out := cmd.OutOrStdout()
			if len(view.Tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, t := range view.Tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", statusIcon(t), shortID(t.ID), t.Text, clockLabel(t))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d tasks, %d active, %d completed\n", view.Stats.Total, view.Stats.Active, view.Stats.Completed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, active or completed")
	return cmd
}

func statusIcon(t task.Task) string {
	switch {
	case t.TimerCompleted:
		return "⏰"
	case t.Completed:
		return "✓"
	default:
		return "○"
	}
}

func clockLabel(t task.Task) string {
	if t.Duration == 0 {
		return "-"
	}
	if t.TimerCompleted {
		return task.FormatClock(0)
	}
	return task.FormatClock(t.Duration)
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			t, _ = s.app.Toggle(cmd.Context(), t.ID)
			state := "reopened"
			if t.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task %s %s\n", shortID(t.ID), state)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.resolve(args[0])
			if err != nil {
				return err
			}
			s.app.Remove(cmd.Context(), t.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task %s deleted\n", shortID(t.ID))
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all completed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			n := s.app.ClearCompleted(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %d completed tasks\n", n)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as YAML or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			tasks := s.app.Snapshot(task.All).Tasks
			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(tasks); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "yaml or json")
	return cmd
}
