package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timer-todos/pkg/slot"
)

// --- Fake slots ---

type failingSlot struct {
	getErr error
	setErr error
	sets   int
}

func (s *failingSlot) Get(context.Context, string) (string, bool, error) {
	return "", s.getErr == nil, s.getErr
}

func (s *failingSlot) Set(context.Context, string, string) error {
	s.sets++
	return s.setErr
}

func newTestStore(t *testing.T, seed map[string]string) (*Store, *slot.Memory) {
	t.Helper()
	mem := slot.NewMemory(seed)
	st := NewStore(context.Background(), mem, slot.DefaultKey)
	n := 0
	st.newID = func() string {
		n++
		return fmt.Sprintf("t%02d", n)
	}
	st.now = func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, n, 0, time.UTC)
	}
	return st, mem
}

func storedTasks(t *testing.T, mem *slot.Memory) []Task {
	t.Helper()
	v, ok, err := mem.Get(context.Background(), slot.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok, "store should have written the slot")
	tasks, err := Decode(v)
	require.NoError(t, err)
	return tasks
}

func TestAddCountsOnlyNonEmptyText(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()

	inputs := []string{"one", "", "   ", "two", "\t\n", "three"}
	want := 0
	for _, in := range inputs {
		_, ok := st.Add(ctx, in, 0)
		if ok {
			want++
		}
	}
	assert.Equal(t, 3, want)
	assert.Equal(t, 3, st.Len())
}

func TestAddTrimsAndInitializes(t *testing.T) {
	st, mem := newTestStore(t, nil)

	got, ok := st.Add(context.Background(), "  Write report  ", 1500)
	require.True(t, ok)
	assert.Equal(t, "t01", got.ID)
	assert.Equal(t, "Write report", got.Text)
	assert.Equal(t, 1500, got.Duration)
	assert.False(t, got.Completed)
	assert.False(t, got.TimerCompleted)
	assert.False(t, got.CreatedAt.IsZero())

	assert.Equal(t, []Task{got}, storedTasks(t, mem))
}

func TestAddClampsNegativeDuration(t *testing.T) {
	st, _ := newTestStore(t, nil)
	got, ok := st.Add(context.Background(), "x", -30)
	require.True(t, ok)
	assert.Equal(t, 0, got.Duration)
	assert.True(t, got.Expired())
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()
	st.Add(ctx, "a", 0)
	st.Add(ctx, "b", 0)
	st.Add(ctx, "c", 0)

	var texts []string
	for _, tk := range st.List(All) {
		texts = append(texts, tk.Text)
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestRealIDsAreUniqueAndOrdered(t *testing.T) {
	st := NewStore(context.Background(), &slot.Memory{}, "")
	ctx := context.Background()
	a, _ := st.Add(ctx, "a", 0)
	b, _ := st.Add(ctx, "b", 0)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID, "v7 ids sort by creation")
}

func TestToggleCompleted(t *testing.T) {
	st, mem := newTestStore(t, nil)
	ctx := context.Background()
	a, _ := st.Add(ctx, "a", 60)

	got, ok := st.ToggleCompleted(ctx, a.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	assert.True(t, storedTasks(t, mem)[0].Completed)

	got, ok = st.ToggleCompleted(ctx, a.ID)
	require.True(t, ok)
	assert.False(t, got.Completed)

	_, ok = st.ToggleCompleted(ctx, "missing")
	assert.False(t, ok)
}

func TestUncompletingClearsTimerCompleted(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()
	a, _ := st.Add(ctx, "a", 60)

	require.True(t, st.MarkTimerCompleted(ctx, a.ID))
	got, _ := st.Get(a.ID)
	assert.True(t, got.Completed)
	assert.True(t, got.TimerCompleted)

	got, _ = st.ToggleCompleted(ctx, a.ID)
	assert.False(t, got.Completed)
	assert.False(t, got.TimerCompleted, "timer flag must not outlive completion")
}

func TestMarkTimerCompletedUnknown(t *testing.T) {
	st, _ := newTestStore(t, nil)
	assert.False(t, st.MarkTimerCompleted(context.Background(), "missing"))
}

func TestRemove(t *testing.T) {
	st, mem := newTestStore(t, nil)
	ctx := context.Background()
	a, _ := st.Add(ctx, "a", 0)
	b, _ := st.Add(ctx, "b", 0)

	assert.True(t, st.Remove(ctx, a.ID))
	assert.False(t, st.Remove(ctx, a.ID))
	_, ok := st.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, []Task{b}, storedTasks(t, mem))
}

func TestClearCompleted(t *testing.T) {
	st, mem := newTestStore(t, nil)
	ctx := context.Background()
	a, _ := st.Add(ctx, "a", 0)
	b, _ := st.Add(ctx, "b", 0)
	c, _ := st.Add(ctx, "c", 0)
	st.ToggleCompleted(ctx, a.ID)
	st.MarkTimerCompleted(ctx, c.ID)

	removed := st.ClearCompleted(ctx)
	assert.Equal(t, []string{a.ID, c.ID}, removed)
	assert.Equal(t, []Task{b}, st.List(All))
	assert.Equal(t, []Task{b}, storedTasks(t, mem))

	assert.Nil(t, st.ClearCompleted(ctx))
}

func TestListFilterAndStats(t *testing.T) {
	st, _ := newTestStore(t, nil)
	ctx := context.Background()
	a, _ := st.Add(ctx, "a", 0)
	st.Add(ctx, "b", 0)
	st.ToggleCompleted(ctx, a.ID)

	assert.Len(t, st.List(All), 2)
	assert.Len(t, st.List(Active), 1)
	assert.Equal(t, "a", st.List(Completed)[0].Text)
	assert.Equal(t, Stats{Total: 2, Active: 1, Completed: 1}, st.Stats())
}

func TestLoadRestoresCollection(t *testing.T) {
	st, mem := newTestStore(t, nil)
	ctx := context.Background()
	st.Add(ctx, "a", 90)
	b, _ := st.Add(ctx, "b", 0)
	st.ToggleCompleted(ctx, b.ID)

	reloaded := NewStore(ctx, mem, slot.DefaultKey)
	assert.Equal(t, st.List(All), reloaded.List(All))
}

func TestLoadTreatsGarbageAsEmpty(t *testing.T) {
	for name, seed := range map[string]map[string]string{
		"absent":   nil,
		"not json": {slot.DefaultKey: "not json"},
		"object":   {slot.DefaultKey: `{"id":"x"}`},
		"empty":    {slot.DefaultKey: ""},
	} {
		t.Run(name, func(t *testing.T) {
			st, _ := newTestStore(t, seed)
			assert.Equal(t, 0, st.Len())
			assert.Equal(t, []Task{}, st.List(All))
		})
	}
}

func TestLoadSurvivesSlotReadError(t *testing.T) {
	fs := &failingSlot{getErr: errors.New("disk gone")}
	st := NewStore(context.Background(), fs, "")
	assert.Equal(t, 0, st.Len())
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	fs := &failingSlot{setErr: errors.New("quota exceeded")}
	st := NewStore(context.Background(), fs, "")
	ctx := context.Background()

	a, ok := st.Add(ctx, "a", 10)
	require.True(t, ok)
	_, ok = st.Get(a.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, fs.sets)
}
