package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"timer-todos/pkg/notify"
	"timer-todos/pkg/task"
	"timer-todos/pkg/timer"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Run a task's countdown in the foreground",
		Long: `Run a task's countdown until it expires or the process is interrupted.
Expiry marks the task completed and rings the bell.`,
		Args: cobra.ExactArgs(1),
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
			return runCountdown(cmd, s, t)
		},
	}
}

// runCountdown starts t's timer and blocks until it expires, is stopped, or
// the process gets SIGINT/SIGTERM.
func runCountdown(cmd *cobra.Command, s *session, t task.Task) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return countdown(ctx, cmd, s, t)
}

func countdown(ctx context.Context, cmd *cobra.Command, s *session, t task.Task) error {
	out := cmd.OutOrStdout()
	sub := s.app.Bus().Subscribe()
	defer s.app.Bus().Unsubscribe(sub)

	if t.Duration == 0 {
		if t.TimerCompleted {
			fmt.Fprintf(out, "⏰ %s is already done\n", t.Text)
			return nil
		}
		s.app.Start(ctx, t.ID)
		fmt.Fprintf(out, "⏰ %s has no countdown; marked complete\n", t.Text)
		return nil
	}

	if s.app.Start(ctx, t.ID) != timer.Running {
		return fmt.Errorf("timer for %s did not start", shortID(t.ID))
	}
	s.app.Run(ctx)
	fmt.Fprintf(out, "▶ %s\n", t.Text)
	fmt.Fprintf(out, "\r  %s ", task.FormatClock(t.Duration))

	for {
		select {
		case <-ctx.Done():
			left := s.app.Timer().TimeLeft
			s.app.Stop()
			fmt.Fprintf(out, "\n■ stopped with %s left\n", task.FormatClock(left))
			return nil
		case e, ok := <-sub:
			if !ok {
				return nil
			}
			if e.TaskID != t.ID {
				continue
			}
			switch e.Type {
			case notify.TimerTick:
				fmt.Fprintf(out, "\r  %s ", task.FormatClock(s.app.Timer().TimeLeft))
			case notify.TimerExpired:
				fmt.Fprintf(out, "\r  %s \n⏰ %s is done\n", task.FormatClock(0), t.Text)
				return nil
			case notify.TimerStopped:
				fmt.Fprintln(out, "\n■ stopped")
				return nil
			}
		}
	}
}
