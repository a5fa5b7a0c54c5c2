package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"timer-todos/internal/backend"
	"timer-todos/internal/config"
	"timer-todos/pkg/chime"
	"timer-todos/pkg/notify"
	"timer-todos/pkg/task"
	"timer-todos/pkg/timer"
	"timer-todos/pkg/todo"
)

var (
	theme *material.Theme

	colorMuted   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	colorRunning = color.NRGBA{R: 0x00, G: 0xA0, B: 0xFF, A: 0xFF}
	colorPaused  = color.NRGBA{R: 0xFF, G: 0xA0, B: 0x00, A: 0xFF}
	colorDone    = color.NRGBA{R: 0x00, G: 0xC0, B: 0x00, A: 0xFF}
	colorExpired = color.NRGBA{R: 0xFF, G: 0x40, B: 0x40, A: 0xFF}
)

type UI struct {
	todos  *todo.App
	filter task.Filter

	// Filters
	navAll       widget.Clickable
	navActive    widget.Clickable
	navCompleted widget.Clickable
	clearBtn     widget.Clickable

	// Create form
	textEditor    widget.Editor
	hoursEditor   widget.Editor
	minutesEditor widget.Editor
	createBtn     widget.Clickable

	// Timer panel
	stopBtn widget.Clickable

	// Task list, buttons keyed by task ID so deletes don't shift them
	taskList widget.List
	rows     map[string]*row

	mu     sync.Mutex
	banner string // last expiry message
}

type row struct {
	check widget.Clickable
	play  widget.Clickable
	reset widget.Clickable
	del   widget.Clickable
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("TIMERTODO_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	s, closeSlot, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("open %s storage: %v", cfg.Storage.Backend, err)
	}

	var c timer.Chime = chime.Nop{}
	if cfg.Timer.Chime {
		c = chime.NewBell(os.Stdout)
	}
	store := task.NewStore(ctx, s, cfg.Storage.Key)
	todos := todo.New(store, c, todo.Options{
		AutoStart: cfg.Timer.AutoStart,
		Interval:  cfg.Timer.Interval,
	})
	todos.Run(ctx)

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	ui := &UI{
		todos:  todos,
		filter: task.All,
		rows:   make(map[string]*row),
	}
	ui.taskList.Axis = layout.Vertical
	ui.textEditor.SingleLine = true
	ui.textEditor.Submit = true
	ui.hoursEditor.SingleLine = true
	ui.hoursEditor.Filter = "0123456789"
	ui.minutesEditor.SingleLine = true
	ui.minutesEditor.Filter = "0123456789"

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Timer Todos"))
		w.Option(app.Size(unit.Dp(720), unit.Dp(800)))
		go ui.watch(ctx, w)
		err := ui.run(w)
		todos.Close()
		closeSlot()
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// watch redraws the window whenever the task list or timer changes.
func (ui *UI) watch(ctx context.Context, w *app.Window) {
	sub := ui.todos.Bus().Subscribe()
	defer ui.todos.Bus().Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-sub:
			if e.Type == notify.TimerExpired {
				if t, ok := ui.todos.Get(e.TaskID); ok {
					ui.setBanner(fmt.Sprintf("⏰ %s is done", t.Text))
				}
			}
			w.Invalidate()
		}
	}
}

func (ui *UI) setBanner(msg string) {
	ui.mu.Lock()
	ui.banner = msg
	ui.mu.Unlock()
}

func (ui *UI) getBanner() string {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.banner
}

func (ui *UI) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.handleClicks(gtx)
			view := ui.todos.Snapshot(ui.filter)
			ui.layout(gtx, view)
			e.Frame(gtx.Ops)
		}
	}
}

func (ui *UI) rowFor(id string) *row {
	r, ok := ui.rows[id]
	if !ok {
		r = &row{}
		ui.rows[id] = r
	}
	return r
}

func (ui *UI) handleClicks(gtx layout.Context) {
	ctx := context.Background()

	if ui.navAll.Clicked(gtx) {
		ui.filter = task.All
	}
	if ui.navActive.Clicked(gtx) {
		ui.filter = task.Active
	}
	if ui.navCompleted.Clicked(gtx) {
		ui.filter = task.Completed
	}
	if ui.clearBtn.Clicked(gtx) {
		ui.todos.ClearCompleted(ctx)
	}
	if ui.stopBtn.Clicked(gtx) {
		ui.todos.Stop()
		ui.setBanner("")
	}

	submitted := false
	for {
		ev, ok := ui.textEditor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			submitted = true
		}
	}
	if ui.createBtn.Clicked(gtx) || submitted {
		ui.create(ctx)
	}

	for id, r := range ui.rows {
		if _, ok := ui.todos.Get(id); !ok {
			delete(ui.rows, id)
			continue
		}
		if r.check.Clicked(gtx) {
			ui.todos.Toggle(ctx, id)
		}
		if r.play.Clicked(gtx) {
			ui.todos.Start(ctx, id)
		}
		if r.reset.Clicked(gtx) {
			ui.todos.Reset(id)
		}
		if r.del.Clicked(gtx) {
			ui.todos.Remove(ctx, id)
			delete(ui.rows, id)
		}
	}
}

func (ui *UI) create(ctx context.Context) {
	text := ui.textEditor.Text()
	if strings.TrimSpace(text) == "" {
		return
	}
	hours, _ := strconv.Atoi(ui.hoursEditor.Text())
	minutes, _ := strconv.Atoi(ui.minutesEditor.Text())
	if _, ok := ui.todos.Add(ctx, text, task.FromParts(hours, minutes)); ok {
		ui.textEditor.SetText("")
		ui.hoursEditor.SetText("")
		ui.minutesEditor.SetText("")
	}
}

func (ui *UI) layout(gtx layout.Context, view todo.View) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return ui.layoutNav(gtx, view)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return material.H5(theme, "Timer Todos").Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
					layout.Rigid(ui.layoutForm),
					layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return ui.layoutTimer(gtx, view)
					}),
					layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return ui.layoutTasks(gtx, view)
					}),
				)
			})
		}),
	)
}

func (ui *UI) layoutNav(gtx layout.Context, view todo.View) layout.Dimensions {
	gtx.Constraints.Min.X = gtx.Dp(unit.Dp(160))
	gtx.Constraints.Max.X = gtx.Dp(unit.Dp(160))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.H6(theme, "todos")
				label.Color = theme.Palette.ContrastFg
				return label.Layout(gtx)
			})
		}),
		layout.Rigid(navBtn(theme, &ui.navAll, fmt.Sprintf("All (%d)", view.Stats.Total), ui.filter == task.All)),
		layout.Rigid(navBtn(theme, &ui.navActive, fmt.Sprintf("Active (%d)", view.Stats.Active), ui.filter == task.Active)),
		layout.Rigid(navBtn(theme, &ui.navCompleted, fmt.Sprintf("Done (%d)", view.Stats.Completed), ui.filter == task.Completed)),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				btn := material.Button(theme, &ui.clearBtn, "Clear done")
				btn.Background = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
				return btn.Layout(gtx)
			})
		}),
	)
}

func navBtn(th *material.Theme, btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th, btn, label)
			if active {
				b.Background = th.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{A: 0}
			}
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		})
	}
}

func (ui *UI) layoutForm(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.Editor(theme, &ui.textEditor, "What are you working on?").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(unitEditor(&ui.hoursEditor, "H")),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(unitEditor(&ui.minutesEditor, "M")),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.Button(theme, &ui.createBtn, "Create Task").Layout(gtx)
		}),
	)
}

func unitEditor(ed *widget.Editor, hint string) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min.X = gtx.Dp(unit.Dp(36))
		gtx.Constraints.Max.X = gtx.Dp(unit.Dp(36))
		return material.Editor(theme, ed, hint).Layout(gtx)
	}
}

func (ui *UI) layoutTimer(gtx layout.Context, view todo.View) layout.Dimensions {
	banner := ui.getBanner()
	if view.Timer.State == timer.Idle {
		msg := "No timer running"
		c := colorMuted
		if banner != "" {
			msg, c = banner, colorExpired
		}
		label := material.Body1(theme, msg)
		label.Color = c
		return label.Layout(gtx)
	}

	active, _ := ui.todos.Get(view.Timer.ActiveID)
	stateColor := colorRunning
	if view.Timer.State == timer.Paused {
		stateColor = colorPaused
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					label := material.Body1(theme, fmt.Sprintf("[%s] %s  %s", view.Timer.State, active.Text, task.FormatClock(view.Timer.TimeLeft)))
					label.Font.Weight = font.Bold
					label.Color = stateColor
					return label.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(theme, &ui.stopBtn, "Stop").Layout(gtx)
				}),
			)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			bar := material.ProgressBar(theme, float32(view.Progress))
			bar.Color = stateColor
			return bar.Layout(gtx)
		}),
	)
}

func (ui *UI) layoutTasks(gtx layout.Context, view todo.View) layout.Dimensions {
	if len(view.Tasks) == 0 {
		label := material.Body2(theme, "No tasks")
		label.Color = colorMuted
		return label.Layout(gtx)
	}
	return material.List(theme, &ui.taskList).Layout(gtx, len(view.Tasks), func(gtx layout.Context, i int) layout.Dimensions {
		t := view.Tasks[i]
		r := ui.rowFor(t.ID)
		active := view.Timer.ActiveID == t.ID

		clock := task.FormatClock(t.Duration)
		clockColor := colorMuted
		switch {
		case active:
			clock = task.FormatClock(view.Timer.TimeLeft)
			clockColor = colorRunning
		case t.Expired():
			clock = task.FormatClock(0)
			clockColor = colorExpired
		}

		playLabel := "Start"
		if active && view.Timer.State == timer.Running {
			playLabel = "Pause"
		} else if active {
			playLabel = "Resume"
		}

		checkLabel := "○"
		textColor := theme.Palette.Fg
		if t.Completed {
			checkLabel = "✓"
			textColor = colorDone
		}

		return layout.Inset{Bottom: unit.Dp(6)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					btn := material.Button(theme, &r.check, checkLabel)
					btn.Background = color.NRGBA{A: 0}
					btn.Color = textColor
					return btn.Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					label := material.Body2(theme, t.Text)
					label.Color = textColor
					if active {
						label.Font.Weight = font.Bold
					}
					return label.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					label := material.Caption(theme, clock)
					label.Color = clockColor
					return label.Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if t.Duration == 0 {
						return layout.Dimensions{}
					}
					return material.Button(theme, &r.play, playLabel).Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if !active {
						return layout.Dimensions{}
					}
					return material.Button(theme, &r.reset, "Reset").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					btn := material.Button(theme, &r.del, "✕")
					btn.Background = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
					return btn.Layout(gtx)
				}),
			)
		})
	})
}
