package store

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KV that can be told to fail
type memKV struct {
	data    map[string][]byte
	puts    int
	failPut error
	failGet error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(key string) ([]byte, bool, error) {
	if m.failGet != nil {
		return nil, false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(records map[string][]byte) error {
	if m.failPut != nil {
		return m.failPut
	}
	for k, v := range records {
		m.data[k] = slices.Clone(v)
	}
	m.puts++
	return nil
}

// fixedClock makes every id collide so the store has to bump them
func fixedClock() time.Time {
	return time.UnixMilli(1000)
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *memKV) {
	t.Helper()
	kv := newMemKV()
	s := New(kv, append([]Option{WithClock(fixedClock)}, opts...)...)
	s.Load()
	return s, kv
}

func mustCreate(t *testing.T, s *Store, topic string, p Priority) Task {
	t.Helper()
	task, err := s.CreateTask(TaskFields{Topic: topic, Priority: p})
	require.NoError(t, err)
	return task
}

func ids(tasks []Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestCreateTask_AssignsUniqueIDs(t *testing.T) {
	s, kv := newTestStore(t)

	seen := map[int64]bool{}
	for _, topic := range []string{"a", "b", "c", "d"} {
		task := mustCreate(t, s, topic, "")
		assert.False(t, seen[task.ID], "id %d reused", task.ID)
		seen[task.ID] = true
		assert.False(t, task.Completed)
		assert.Equal(t, Low, task.Priority)
		assert.Equal(t, NoDate, task.Date)
	}

	assert.Len(t, s.Tasks(), 4)
	assert.Equal(t, 4, kv.puts)
	assert.Contains(t, string(kv.data[TasksKey]), `"topic":"d"`)
}

func TestCreateTask_UsesClock(t *testing.T) {
	kv := newMemKV()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(kv, WithClock(func() time.Time { return now }))
	s.Load()

	task := mustCreate(t, s, "clocked", High)
	assert.Equal(t, now.UnixMilli(), task.ID)
}

func TestCreateTask_RejectsEmptyTopic(t *testing.T) {
	s, kv := newTestStore(t)

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := s.CreateTask(TaskFields{Topic: topic})
		assert.ErrorIs(t, err, ErrValidation)
	}

	assert.Empty(t, s.Tasks())
	assert.Equal(t, 0, kv.puts)
}

func TestCreateTask_ValidatesDateAndPriority(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.CreateTask(TaskFields{Topic: "x", Date: "05/01/2024"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateTask(TaskFields{Topic: "x", Priority: "Urgent"})
	assert.ErrorIs(t, err, ErrValidation)

	task, err := s.CreateTask(TaskFields{Topic: "  x  ", Date: "2024-05-01", Priority: Medium})
	require.NoError(t, err)
	assert.Equal(t, "x", task.Topic)
	assert.Equal(t, "2024-05-01", task.Date)
	assert.True(t, task.HasDate())
}

func TestCreateTask_RegistersNewCategory(t *testing.T) {
	s, kv := newTestStore(t)

	_, err := s.CreateTask(TaskFields{Topic: "report", Category: "Work"})
	require.NoError(t, err)
	_, err = s.CreateTask(TaskFields{Topic: "slides", Category: "Work"})
	require.NoError(t, err)
	_, err = s.CreateTask(TaskFields{Topic: "call", Category: "work"})
	require.NoError(t, err)
	_, err = s.CreateTask(TaskFields{Topic: "nothing"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Personal", "Urgent", "Work", "work"}, s.Categories())
	assert.JSONEq(t, `["Personal","Urgent","Work","work"]`, string(kv.data[CategoriesKey]))
}

func TestUpdateTask_NotFound(t *testing.T) {
	s, kv := newTestStore(t)
	mustCreate(t, s, "keep", Low)
	before := s.Tasks()
	puts := kv.puts

	_, err := s.UpdateTask(42, TaskFields{Topic: "new"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, s.Tasks())
	assert.Equal(t, puts, kv.puts)
}

func TestUpdateTask_PreservesIDAndCompletion(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, "draft", Low)
	_, err := s.ToggleComplete(task.ID)
	require.NoError(t, err)

	updated, err := s.UpdateTask(task.ID, TaskFields{
		Topic:       "final",
		Description: "send it",
		Category:    "Work",
		Date:        "2024-06-30",
		Priority:    High,
	})
	require.NoError(t, err)

	assert.Equal(t, task.ID, updated.ID)
	assert.True(t, updated.Completed)
	assert.Equal(t, "final", updated.Topic)
	assert.Equal(t, High, updated.Priority)
	assert.Contains(t, s.Categories(), "Work")

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateTask_RejectsEmptyTopic(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, "draft", Low)

	_, err := s.UpdateTask(task.ID, TaskFields{Topic: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Topic)
}

func TestDeleteTasks(t *testing.T) {
	build := func() (*Store, []Task) {
		s, _ := newTestStore(t)
		return s, []Task{
			mustCreate(t, s, "one", Low),
			mustCreate(t, s, "two", Low),
			mustCreate(t, s, "three", Low),
		}
	}

	s1, tasks := build()
	require.NoError(t, s1.DeleteTasks(tasks[0].ID, tasks[2].ID))
	assert.Equal(t, []int64{tasks[1].ID}, ids(s1.Tasks()))

	s2, tasks := build()
	require.NoError(t, s2.DeleteTasks(tasks[2].ID, tasks[0].ID))
	assert.Equal(t, s1.Tasks(), s2.Tasks())

	// already gone, and never existed
	require.NoError(t, s2.DeleteTasks(tasks[0].ID, 999))
	assert.Equal(t, []int64{tasks[1].ID}, ids(s2.Tasks()))
}

func TestDeleteTasks_PinnedPolicy(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, "pinned", Low)
	_, err := s.PinTask(task)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTasks(task.ID))
	assert.Empty(t, s.Tasks())
	assert.Equal(t, []Task{task}, s.Pinned())

	c, _ := newTestStore(t, WithCascadeUnpin(true))
	task = mustCreate(t, c, "pinned", Low)
	other := mustCreate(t, c, "other", Low)
	_, err = c.PinTask(task)
	require.NoError(t, err)
	_, err = c.PinTask(other)
	require.NoError(t, err)

	require.NoError(t, c.DeleteTasks(task.ID))
	assert.Equal(t, []int64{other.ID}, ids(c.Pinned()))
}

func TestToggleComplete(t *testing.T) {
	s, _ := newTestStore(t)
	task := mustCreate(t, s, "flip", Low)

	got, err := s.ToggleComplete(task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	got, err = s.ToggleComplete(task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	_, err = s.ToggleComplete(7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPinTask_TogglesAndSnapshots(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "a", Low)
	b := mustCreate(t, s, "b", Low)
	_, err := s.PinTask(a)
	require.NoError(t, err)
	before := s.Pinned()

	pinned, err := s.PinTask(b)
	require.NoError(t, err)
	assert.True(t, pinned)
	assert.True(t, s.IsPinned(b.ID))

	pinned, err = s.PinTask(b)
	require.NoError(t, err)
	assert.False(t, pinned)
	assert.Equal(t, before, s.Pinned())

	// later edits do not reach the snapshot
	_, err = s.UpdateTask(a.ID, TaskFields{Topic: "a edited"})
	require.NoError(t, err)
	assert.Equal(t, "a", s.Pinned()[0].Topic)

	_, err = s.PinTask(Task{ID: 5, Topic: " ", Priority: Low})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPinTask_RepinMovesToEnd(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "a", Low)
	b := mustCreate(t, s, "b", Low)
	c := mustCreate(t, s, "c", Low)
	for _, task := range []Task{a, b, c} {
		_, err := s.PinTask(task)
		require.NoError(t, err)
	}

	// toggling the last pin twice restores the list
	for range 2 {
		_, err := s.PinTask(c)
		require.NoError(t, err)
	}
	assert.Equal(t, ids([]Task{a, b, c}), ids(s.Pinned()))

	// toggling a middle pin twice appends it
	for range 2 {
		_, err := s.PinTask(b)
		require.NoError(t, err)
	}
	assert.Equal(t, ids([]Task{a, c, b}), ids(s.Pinned()))
}

func TestUnpinTask(t *testing.T) {
	s, kv := newTestStore(t)
	a := mustCreate(t, s, "a", Low)
	_, err := s.PinTask(a)
	require.NoError(t, err)
	puts := kv.puts

	require.NoError(t, s.UnpinTask(12345))
	assert.Equal(t, puts, kv.puts)
	assert.Len(t, s.Pinned(), 1)

	require.NoError(t, s.UnpinTask(a.ID))
	assert.Empty(t, s.Pinned())
	assert.JSONEq(t, `[]`, string(kv.data[PinnedKey]))
}

func TestAddCategory(t *testing.T) {
	s, kv := newTestStore(t)

	assert.ErrorIs(t, s.AddCategory("  "), ErrValidation)

	require.NoError(t, s.AddCategory(" Home "))
	puts := kv.puts
	require.NoError(t, s.AddCategory("Home"))
	assert.Equal(t, puts, kv.puts)

	assert.Equal(t, []string{"Personal", "Urgent", "Home"}, s.Categories())
}

func TestListTasks(t *testing.T) {
	s, _ := newTestStore(t)
	milk, err := s.CreateTask(TaskFields{Topic: "Buy milk", Category: "Personal", Date: "2024-05-01"})
	require.NoError(t, err)
	report, err := s.CreateTask(TaskFields{Topic: "Write report", Category: "Work"})
	require.NoError(t, err)
	_, err = s.ToggleComplete(report.ID)
	require.NoError(t, err)

	done := true
	work := "Work"

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all", Filter{}, []int64{milk.ID, report.ID}},
		{"completed", Filter{Completed: &done}, []int64{report.ID}},
		{"category", Filter{Category: &work}, []int64{report.ID}},
		{"topic ignores case", Filter{Topic: "MILK"}, []int64{milk.ID}},
		{"date", Filter{Date: "2024-05-01"}, []int64{milk.ID}},
		{"all predicates", Filter{Topic: "milk", Completed: &done}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(slices.Collect(s.ListTasks(tt.filter)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListTasks_RestartableSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, "one", Low)
	mustCreate(t, s, "two", Low)

	seq := s.ListTasks(Filter{})
	mustCreate(t, s, "three", Low)

	assert.Len(t, slices.Collect(seq), 2)
	assert.Len(t, slices.Collect(seq), 2)

	for range seq {
		break
	}
}

func TestSortByPriority_Stable(t *testing.T) {
	in := []Task{
		{ID: 1, Topic: "l", Priority: Low},
		{ID: 2, Topic: "h1", Priority: High},
		{ID: 3, Topic: "m", Priority: Medium},
		{ID: 4, Topic: "h2", Priority: High},
	}

	got := SortByPriority(slices.Values(in))

	assert.Equal(t, []int64{2, 4, 3, 1}, ids(got))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(in))
}

func TestSortByPriority_DoesNotReorderStore(t *testing.T) {
	s, _ := newTestStore(t)
	low := mustCreate(t, s, "low", Low)
	high := mustCreate(t, s, "high", High)

	sorted := SortByPriority(s.ListTasks(Filter{}))
	assert.Equal(t, []int64{high.ID, low.ID}, ids(sorted))
	assert.Equal(t, []int64{low.ID, high.ID}, ids(s.Tasks()))
}

func TestLoad_RoundTrip(t *testing.T) {
	s, kv := newTestStore(t)
	a, err := s.CreateTask(TaskFields{Topic: "a", Description: "desc", Category: "Gym", Date: "2024-01-02", Priority: Medium})
	require.NoError(t, err)
	b := mustCreate(t, s, "b", High)
	_, err = s.ToggleComplete(b.ID)
	require.NoError(t, err)
	_, err = s.PinTask(a)
	require.NoError(t, err)
	require.NoError(t, s.AddCategory("Later"))

	reloaded := New(kv)
	reloaded.Load()

	assert.Equal(t, s.Tasks(), reloaded.Tasks())
	assert.Equal(t, s.Pinned(), reloaded.Pinned())
	assert.Equal(t, s.Categories(), reloaded.Categories())
}

func TestLoad_MissingOrCorruptData(t *testing.T) {
	kv := newMemKV()
	kv.data[TasksKey] = []byte(`{not json`)
	kv.data[PinnedKey] = []byte(`[{"id":1,"topic":"","priority":"Low"}]`)

	s := New(kv, WithDefaultCategories([]string{"Inbox", "Inbox", " "}))
	s.Load()

	assert.Empty(t, s.Tasks())
	assert.Empty(t, s.Pinned())
	assert.Equal(t, []string{"Inbox"}, s.Categories())

	kv.failGet = errors.New("disk gone")
	s = New(kv)
	s.Load()
	assert.Empty(t, s.Tasks())
	assert.Equal(t, DefaultCategories, s.Categories())
}

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	kv := newMemKV()
	kv.data[TasksKey] = []byte(`[
		{"id":1,"topic":"a","description":"","category":"","date":"No date selected","priority":"Low","completed":false},
		{"id":1,"topic":"b","description":"","category":"","date":"No date selected","priority":"Low","completed":false}
	]`)

	s := New(kv)
	s.Load()
	assert.Empty(t, s.Tasks())
}

func TestLoad_NewIDsSkipStoredOnes(t *testing.T) {
	kv := newMemKV()
	kv.data[TasksKey] = []byte(`[{"id":5000,"topic":"old","description":"","category":"","date":"No date selected","priority":"High","completed":true}]`)
	kv.data[PinnedKey] = []byte(`[{"id":9000,"topic":"gone","description":"","category":"","date":"No date selected","priority":"Low","completed":false}]`)

	s := New(kv, WithClock(fixedClock))
	s.Load()

	task := mustCreate(t, s, "new", Low)
	assert.Equal(t, int64(9001), task.ID)
}

func TestReorder(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "a", Low)
	b := mustCreate(t, s, "b", Low)
	c := mustCreate(t, s, "c", Low)
	original := ids(s.Tasks())

	bad := [][]int64{
		{a.ID, b.ID},
		{a.ID, b.ID, 77},
		{a.ID, a.ID, b.ID},
		{a.ID, b.ID, c.ID, 77},
	}
	for _, order := range bad {
		assert.ErrorIs(t, s.Reorder(order), ErrValidation, "order %v", order)
		assert.Equal(t, original, ids(s.Tasks()))
	}

	require.NoError(t, s.Reorder([]int64{c.ID, a.ID, b.ID}))
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, ids(s.Tasks()))
}

func TestMove(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustCreate(t, s, "a", Low)
	b := mustCreate(t, s, "b", Low)
	c := mustCreate(t, s, "c", Low)

	require.NoError(t, s.Move(c.ID, -1))
	assert.Equal(t, []int64{a.ID, c.ID, b.ID}, ids(s.Tasks()))

	require.NoError(t, s.Move(a.ID, -1))
	assert.Equal(t, []int64{a.ID, c.ID, b.ID}, ids(s.Tasks()))

	require.NoError(t, s.Move(a.ID, 10))
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, ids(s.Tasks()))

	assert.ErrorIs(t, s.Move(404, 1), ErrNotFound)
}

func TestPersistenceFailure_LeavesMemoryUnchanged(t *testing.T) {
	s, kv := newTestStore(t)
	task := mustCreate(t, s, "stable", Low)
	_, err := s.PinTask(task)
	require.NoError(t, err)

	diskErr := errors.New("disk full")
	kv.failPut = diskErr
	tasks, pinned, categories := s.Tasks(), s.Pinned(), s.Categories()

	_, err = s.CreateTask(TaskFields{Topic: "lost", Category: "New"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, diskErr)

	_, err = s.ToggleComplete(task.ID)
	assert.ErrorIs(t, err, ErrPersistence)

	_, err = s.UpdateTask(task.ID, TaskFields{Topic: "changed"})
	assert.ErrorIs(t, err, ErrPersistence)

	assert.ErrorIs(t, s.DeleteTasks(task.ID), ErrPersistence)
	assert.ErrorIs(t, s.UnpinTask(task.ID), ErrPersistence)
	assert.ErrorIs(t, s.AddCategory("Other"), ErrPersistence)

	assert.Equal(t, tasks, s.Tasks())
	assert.Equal(t, pinned, s.Pinned())
	assert.Equal(t, categories, s.Categories())

	kv.failPut = nil
	next := mustCreate(t, s, "after", Low)
	assert.NotEqual(t, task.ID, next.ID)
}

func TestCompletedTaskScenario(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateTask(TaskFields{Topic: "Other", Priority: Low})
	require.NoError(t, err)
	milk, err := s.CreateTask(TaskFields{Topic: "Buy milk", Priority: High})
	require.NoError(t, err)

	_, err = s.ToggleComplete(milk.ID)
	require.NoError(t, err)

	done := true
	got := slices.Collect(s.ListTasks(Filter{Completed: &done}))
	require.Len(t, got, 1)
	assert.Equal(t, milk.ID, got[0].ID)
	assert.Equal(t, "Buy milk", got[0].Topic)
	assert.Equal(t, High, got[0].Priority)
	assert.True(t, got[0].Completed)
}

func TestStats(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateTask(TaskFields{Topic: "a", Category: "Work"})
	require.NoError(t, err)
	b, err := s.CreateTask(TaskFields{Topic: "b"})
	require.NoError(t, err)
	_, err = s.CreateTask(TaskFields{Topic: "c", Category: "Work"})
	require.NoError(t, err)
	_, err = s.ToggleComplete(b.ID)
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Total:       3,
		Completed:   1,
		Uncompleted: 2,
		Categories: []CategoryCount{
			{Category: "Work", Count: 2},
			{Category: Uncategorized, Count: 1},
		},
	}, s.Stats())
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]Priority{"": Low, "low": Low, "MEDIUM": Medium, " High ": High} {
		got, err := ParsePriority(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParsePriority("asap")
	assert.ErrorIs(t, err, ErrValidation)
}
