package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"timer-todos/internal/backend"
	"timer-todos/internal/config"
	"timer-todos/pkg/chime"
	"timer-todos/pkg/task"
	"timer-todos/pkg/timer"
	"timer-todos/pkg/todo"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "todo",
		Short:         "Task list with countdown timers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.timer-todos/config.yaml)")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newDoneCmd(),
		newRemoveCmd(),
		newClearCmd(),
		newRunCmd(),
		newExportCmd(),
	)
	return root
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("todo: ")
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// session is one CLI invocation's view of the task list.
type session struct {
	cfg   *config.Config
	app   *todo.App
	close func()
}

func openSession(ctx context.Context, out io.Writer) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	s, closeFn, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}

	var c timer.Chime = chime.Nop{}
	if cfg.Timer.Chime {
		c = chime.NewBell(out)
	}
	store := task.NewStore(ctx, s, cfg.Storage.Key)
	// Timer state does not outlive the process, so only `run` starts one.
	app := todo.New(store, c, todo.Options{Interval: cfg.Timer.Interval})
	return &session{cfg: cfg, app: app, close: closeFn}, nil
}

func (s *session) Close() {
	s.app.Close()
	s.close()
}

// resolve finds the task named by a full id or a unique id suffix, the way
// list prints them.
func (s *session) resolve(ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := s.app.Get(ref); ok {
		return t, nil
	}
	var matches []task.Task
	for _, t := range s.app.Snapshot(task.All).Tasks {
		if strings.HasSuffix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, fmt.Errorf("%q matches %d tasks", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
