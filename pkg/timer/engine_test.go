package timer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timer-todos/pkg/slot"
	"timer-todos/pkg/task"
)

type countingChime struct{ plays int }

func (c *countingChime) Play() { c.plays++ }

type fixture struct {
	ctx    context.Context
	store  *task.Store
	engine *Engine
	chime  *countingChime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := task.NewStore(ctx, &slot.Memory{}, "")
	chime := &countingChime{}
	return &fixture{ctx: ctx, store: store, engine: NewEngine(store, chime), chime: chime}
}

func (f *fixture) add(t *testing.T, text string, seconds int) task.Task {
	t.Helper()
	tk, ok := f.store.Add(f.ctx, text, seconds)
	require.True(t, ok)
	return tk
}

func (f *fixture) tick(n int) (expiries int) {
	for i := 0; i < n; i++ {
		if f.engine.Tick(f.ctx) {
			expiries++
		}
	}
	return expiries
}

func TestNewEngineIsIdle(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Idle, f.engine.State())
	assert.Equal(t, Snapshot{State: Idle}, f.engine.Snapshot())
	assert.Equal(t, 0.0, f.engine.Progress())
	assert.False(t, f.engine.Tick(f.ctx))
}

func TestWriteReportScenario(t *testing.T) {
	f := newFixture(t)
	report := f.add(t, "Write report", 1500)

	assert.Equal(t, Running, f.engine.Start(f.ctx, report.ID))
	assert.Equal(t, 1500, f.engine.TimeLeft())

	assert.Equal(t, 1, f.tick(1500))
	assert.Equal(t, 0, f.engine.TimeLeft())
	assert.Equal(t, Idle, f.engine.State())

	got, _ := f.store.Get(report.ID)
	assert.True(t, got.TimerCompleted)
	assert.True(t, got.Completed)
	assert.Equal(t, 1, f.chime.plays)
}

func TestExpiryFiresExactlyOnce(t *testing.T) {
	f := newFixture(t)
	short := f.add(t, "short", 2)
	f.engine.Start(f.ctx, short.ID)

	assert.False(t, f.engine.Tick(f.ctx))
	assert.True(t, f.engine.Tick(f.ctx))
	assert.False(t, f.engine.Tick(f.ctx))

	got, _ := f.store.Get(short.ID)
	assert.True(t, got.TimerCompleted)
	assert.True(t, got.Completed)
	assert.Equal(t, 0, f.engine.TimeLeft())
	_, active := f.engine.ActiveID()
	assert.False(t, active)
	assert.Equal(t, 1, f.chime.plays)
}

func TestStartSameTaskTogglesPause(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)

	f.engine.Start(f.ctx, a.ID)
	f.tick(3)
	assert.Equal(t, Paused, f.engine.Start(f.ctx, a.ID))
	f.tick(5)
	assert.Equal(t, 7, f.engine.TimeLeft(), "paused countdown must not move")

	assert.Equal(t, Running, f.engine.Start(f.ctx, a.ID))
	assert.Equal(t, 7, f.engine.TimeLeft(), "resume must not reset")
	f.tick(2)
	assert.Equal(t, 5, f.engine.TimeLeft())
}

func TestStartOtherTaskReplacesActive(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	b := f.add(t, "b", 20)

	f.engine.Start(f.ctx, a.ID)
	f.tick(4)
	f.engine.Start(f.ctx, b.ID)

	id, ok := f.engine.ActiveID()
	require.True(t, ok)
	assert.Equal(t, b.ID, id)
	assert.Equal(t, 20, f.engine.TimeLeft())

	f.tick(15)
	gotA, _ := f.store.Get(a.ID)
	assert.False(t, gotA.Completed, "a's countdown must not keep running")
	assert.False(t, gotA.TimerCompleted)
	assert.Equal(t, 0, f.chime.plays)
}

func TestStartUnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	f.engine.Start(f.ctx, a.ID)

	assert.Equal(t, Running, f.engine.Start(f.ctx, "missing"))
	id, _ := f.engine.ActiveID()
	assert.Equal(t, a.ID, id)
}

func TestStartZeroDuration(t *testing.T) {
	f := newFixture(t)
	zero := f.add(t, "zero", 0)

	assert.Equal(t, Idle, f.engine.Start(f.ctx, zero.ID))
	got, _ := f.store.Get(zero.ID)
	assert.True(t, got.TimerCompleted)
	assert.True(t, got.Completed)
	assert.Equal(t, 1, f.chime.plays)

	// Already expired: no second completion.
	f.engine.Start(f.ctx, zero.ID)
	assert.Equal(t, 1, f.chime.plays)
}

func TestStartZeroDurationEndsPreviousAssociation(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	zero := f.add(t, "zero", 0)

	f.engine.Start(f.ctx, a.ID)
	f.engine.Start(f.ctx, zero.ID)
	assert.Equal(t, Idle, f.engine.State())
}

func TestPauseIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	f.engine.Start(f.ctx, a.ID)
	f.tick(2)

	assert.True(t, f.engine.Pause())
	once := f.engine.Snapshot()
	assert.False(t, f.engine.Pause())
	assert.Equal(t, once, f.engine.Snapshot())
	assert.Equal(t, Paused, once.State)
}

func TestPauseResumeWhenIdle(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.engine.Pause())
	assert.False(t, f.engine.Resume())
	assert.Equal(t, Idle, f.engine.State())
}

func TestResume(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	f.engine.Start(f.ctx, a.ID)
	f.engine.Pause()

	assert.True(t, f.engine.Resume())
	assert.False(t, f.engine.Resume())
	assert.Equal(t, Running, f.engine.State())
}

func TestResetRestoresDurationAndPauses(t *testing.T) {
	for _, ticks := range []int{0, 1, 5, 9} {
		f := newFixture(t)
		a := f.add(t, "a", 10)
		f.engine.Start(f.ctx, a.ID)
		f.tick(ticks)

		require.True(t, f.engine.Reset(a.ID))
		assert.Equal(t, 10, f.engine.TimeLeft(), "after %d ticks", ticks)
		assert.False(t, f.engine.IsRunning(), "after %d ticks", ticks)
		assert.Equal(t, Paused, f.engine.State())
	}
}

func TestResetIgnoresInactiveTask(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	b := f.add(t, "b", 10)
	f.engine.Start(f.ctx, a.ID)
	f.tick(3)

	assert.False(t, f.engine.Reset(b.ID))
	assert.Equal(t, 7, f.engine.TimeLeft())
	assert.True(t, f.engine.IsRunning())
}

func TestStopFromAnyState(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)

	assert.False(t, f.engine.Stop())

	f.engine.Start(f.ctx, a.ID)
	assert.True(t, f.engine.Stop())
	assert.Equal(t, Snapshot{State: Idle}, f.engine.Snapshot())

	f.engine.Start(f.ctx, a.ID)
	f.engine.Pause()
	assert.True(t, f.engine.Stop())
	assert.Equal(t, Idle, f.engine.State())
	assert.Equal(t, 0, f.chime.plays, "manual stop never chimes")
}

func TestDeactivate(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	b := f.add(t, "b", 10)
	f.engine.Start(f.ctx, a.ID)

	assert.False(t, f.engine.Deactivate(b.ID))
	assert.Equal(t, Running, f.engine.State())
	assert.True(t, f.engine.Deactivate(a.ID))
	assert.Equal(t, Idle, f.engine.State())
}

func TestTickClearsDanglingActiveTask(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	f.engine.Start(f.ctx, a.ID)
	f.store.Remove(f.ctx, a.ID)

	assert.False(t, f.engine.Tick(f.ctx))
	assert.Equal(t, Idle, f.engine.State())
	assert.Equal(t, 0, f.chime.plays)
}

func TestTickGuardsAgainstRunningAtZero(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 10)
	f.engine.Start(f.ctx, a.ID)
	f.engine.timeLeft = 0

	assert.False(t, f.engine.Tick(f.ctx))
	assert.False(t, f.engine.IsRunning())
	assert.Equal(t, 0, f.chime.plays)
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "a", 4)
	f.engine.Start(f.ctx, a.ID)

	assert.Equal(t, 0.0, f.engine.Progress())
	f.tick(1)
	assert.Equal(t, 0.25, f.engine.Progress())
	f.tick(2)
	assert.Equal(t, 0.75, f.engine.Progress())
	f.tick(1)
	assert.Equal(t, 0.0, f.engine.Progress(), "idle after expiry")
}

func TestNilChime(t *testing.T) {
	ctx := context.Background()
	store := task.NewStore(ctx, &slot.Memory{}, "")
	a, _ := store.Add(ctx, "a", 1)
	e := NewEngine(store, nil)
	e.Start(ctx, a.ID)
	assert.True(t, e.Tick(ctx))
}

func TestChimeFunc(t *testing.T) {
	n := 0
	var c Chime = ChimeFunc(func() { n++ })
	c.Play()
	assert.Equal(t, 1, n)
}
