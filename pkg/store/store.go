package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"pinlist/pkg/utils"
)

// Keys used in the durable key-value store
const (
	TasksKey      = "tasks"
	PinnedKey     = "pinnedTasks"
	CategoriesKey = "categories"
)

// DefaultCategories seeds the category list when nothing has been persisted yet
var DefaultCategories = []string{"Personal", "Urgent"}

// KV is the durable key-value storage the store writes through to.
// Put must apply all records or none of them.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(records map[string][]byte) error
}

// Store owns the task list, the pinned snapshots and the category list.
// It is not safe for concurrent use; callers run one operation at a time.
type Store struct {
	kv KV

	tasks      []Task
	pinned     []Task
	categories []string

	defaultCategories []string
	cascadeUnpin      bool
	now               func() time.Time
	lastID            int64
}

// Option configures a Store
type Option func(*Store)

// WithDefaultCategories overrides the seed used when no categories are stored
func WithDefaultCategories(categories []string) Option {
	return func(s *Store) {
		s.defaultCategories = dedupe(categories)
	}
}

// WithCascadeUnpin makes DeleteTasks also drop pinned snapshots of the deleted tasks
func WithCascadeUnpin(enabled bool) Option {
	return func(s *Store) {
		s.cascadeUnpin = enabled
	}
}

// WithClock replaces the clock ids are derived from
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store backed by kv. Call Load to read persisted state.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:                kv,
		defaultCategories: slices.Clone(DefaultCategories),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = []Task{}
	s.pinned = []Task{}
	s.categories = slices.Clone(s.defaultCategories)
	return s
}

// Load reads tasks, pinned tasks and categories from the durable store.
// A missing or unreadable key falls back to its empty default and is only logged.
func (s *Store) Load() {
	tasks, _ := loadKey(s.kv, TasksKey, validateTasks)
	s.tasks = nonNil(tasks)

	pinned, _ := loadKey(s.kv, PinnedKey, validateTasks)
	s.pinned = nonNil(pinned)

	categories, ok := loadKey(s.kv, CategoriesKey, validateCategories)
	if ok {
		s.categories = dedupe(categories)
	} else {
		s.categories = slices.Clone(s.defaultCategories)
	}

	s.lastID = 0
	for _, t := range append(slices.Clone(s.tasks), s.pinned...) {
		s.lastID = max(s.lastID, t.ID)
	}

	utils.Log("Loaded %d tasks, %d pinned, %d categories", len(s.tasks), len(s.pinned), len(s.categories))
}

// loadKey decodes one JSON record. ok is false when the key is absent or corrupt.
func loadKey[T any](kv KV, key string, validate func([]T) error) (items []T, ok bool) {
	data, found, err := kv.Get(key)
	if err != nil {
		utils.Log("Failed to read %s: %v", key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	if err := json.Unmarshal(data, &items); err != nil {
		utils.Log("Failed to decode %s: %v", key, err)
		return nil, false
	}
	if err := validate(items); err != nil {
		utils.Log("Discarding %s: %v", key, err)
		return nil, false
	}
	return items, true
}

func validateTasks(tasks []Task) error {
	seen := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		if err := t.validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %d", ErrValidation, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func validateCategories(categories []string) error {
	for _, c := range categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: empty category name", ErrValidation)
		}
	}
	return nil
}

// state is a staged copy of the store contents. Mutations build the next state,
// persist it, and only then swap it in.
type state struct {
	tasks      []Task
	pinned     []Task
	categories []string
}

func (s *Store) stage() state {
	return state{
		tasks:      slices.Clone(s.tasks),
		pinned:     slices.Clone(s.pinned),
		categories: slices.Clone(s.categories),
	}
}

// addCategory appends name when it is new. It reports whether the list changed.
func (st *state) addCategory(name string) bool {
	if name == "" || slices.Contains(st.categories, name) {
		return false
	}
	st.categories = append(st.categories, name)
	return true
}

// commit writes the given keys of next and swaps next in on success
func (s *Store) commit(next state, keys ...string) error {
	records := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var value any
		switch key {
		case TasksKey:
			value = nonNil(next.tasks)
		case PinnedKey:
			value = nonNil(next.pinned)
		case CategoriesKey:
			value = nonNil(next.categories)
		default:
			return fmt.Errorf("%w: unknown key %q", ErrPersistence, key)
		}

		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %w", ErrPersistence, key, err)
		}
		records[key] = data
	}

	if err := s.kv.Put(records); err != nil {
		utils.Log("Failed to persist %v: %v", keys, err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.tasks = nonNil(next.tasks)
	s.pinned = nonNil(next.pinned)
	s.categories = nonNil(next.categories)
	return nil
}

// nextID derives an id from the clock, bumped past every id already in use
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// CreateTask validates fields and appends a new, uncompleted task
func (s *Store) CreateTask(fields TaskFields) (Task, error) {
	f, err := fields.normalize()
	if err != nil {
		return Task{}, err
	}

	task := Task{
		ID:          s.nextID(),
		Topic:       f.Topic,
		Description: f.Description,
		Category:    f.Category,
		Date:        f.Date,
		Priority:    f.Priority,
		Completed:   false,
	}

	next := s.stage()
	next.tasks = append(next.tasks, task)
	keys := []string{TasksKey}
	if next.addCategory(task.Category) {
		keys = append(keys, CategoriesKey)
	}

	if err := s.commit(next, keys...); err != nil {
		return Task{}, err
	}
	s.lastID = task.ID

	utils.Log("Created task %d: %s", task.ID, task.Topic)
	return task, nil
}

// UpdateTask replaces the editable fields of a task, keeping its id and completion
func (s *Store) UpdateTask(id int64, fields TaskFields) (Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}

	f, err := fields.normalize()
	if err != nil {
		return Task{}, err
	}

	next := s.stage()
	task := next.tasks[idx]
	task.Topic = f.Topic
	task.Description = f.Description
	task.Category = f.Category
	task.Date = f.Date
	task.Priority = f.Priority
	next.tasks[idx] = task

	keys := []string{TasksKey}
	if next.addCategory(task.Category) {
		keys = append(keys, CategoriesKey)
	}

	if err := s.commit(next, keys...); err != nil {
		return Task{}, err
	}

	utils.Log("Updated task %d", id)
	return task, nil
}

// DeleteTasks removes every task whose id is given. Unknown ids are ignored.
// Pinned snapshots are kept unless the store was built WithCascadeUnpin.
func (s *Store) DeleteTasks(ids ...int64) error {
	remove := make(map[int64]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	drop := func(t Task) bool { return remove[t.ID] }

	next := s.stage()
	next.tasks = slices.DeleteFunc(next.tasks, drop)

	var keys []string
	if len(next.tasks) != len(s.tasks) {
		keys = append(keys, TasksKey)
	}
	if s.cascadeUnpin {
		next.pinned = slices.DeleteFunc(next.pinned, drop)
		if len(next.pinned) != len(s.pinned) {
			keys = append(keys, PinnedKey)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.commit(next, keys...); err != nil {
		return err
	}

	utils.Log("Deleted tasks %v", ids)
	return nil
}

// ToggleComplete flips the completion flag of a task
func (s *Store) ToggleComplete(id int64) (Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}

	next := s.stage()
	next.tasks[idx].Completed = !next.tasks[idx].Completed
	if err := s.commit(next, TasksKey); err != nil {
		return Task{}, err
	}
	return next.tasks[idx], nil
}

// PinTask pins a copy of task, or unpins it when a snapshot with the same id
// already exists. It reports whether the task is pinned afterwards.
// The snapshot does not follow later edits of the original task. A new pin is
// always appended, so unpinning and pinning again moves it to the end.
func (s *Store) PinTask(task Task) (bool, error) {
	if err := task.validate(); err != nil {
		return false, err
	}

	next := s.stage()
	idx := slices.IndexFunc(next.pinned, func(t Task) bool { return t.ID == task.ID })
	pinned := idx < 0
	if pinned {
		next.pinned = append(next.pinned, task)
	} else {
		next.pinned = slices.Delete(next.pinned, idx, idx+1)
	}

	if err := s.commit(next, PinnedKey); err != nil {
		return false, err
	}
	return pinned, nil
}

// UnpinTask removes the pinned snapshot with the given id, if any
func (s *Store) UnpinTask(id int64) error {
	idx := slices.IndexFunc(s.pinned, func(t Task) bool { return t.ID == id })
	if idx < 0 {
		return nil
	}

	next := s.stage()
	next.pinned = slices.Delete(next.pinned, idx, idx+1)
	return s.commit(next, PinnedKey)
}

// AddCategory appends a category name unless it is already known
func (s *Store) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}

	next := s.stage()
	if !next.addCategory(name) {
		return nil
	}
	return s.commit(next, CategoriesKey)
}

// Reorder replaces the task order. ids must be a permutation of the stored ids.
func (s *Store) Reorder(ids []int64) error {
	if len(ids) != len(s.tasks) {
		return fmt.Errorf("%w: reorder got %d ids, have %d tasks", ErrValidation, len(ids), len(s.tasks))
	}

	byID := make(map[int64]Task, len(s.tasks))
	for _, t := range s.tasks {
		byID[t.ID] = t
	}

	next := s.stage()
	next.tasks = next.tasks[:0]
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: reorder id %d is unknown or repeated", ErrValidation, id)
		}
		delete(byID, id)
		next.tasks = append(next.tasks, t)
	}

	return s.commit(next, TasksKey)
}

// Move shifts a task delta positions in the stored order, stopping at either end
func (s *Store) Move(id int64, delta int) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}

	target := min(max(idx+delta, 0), len(s.tasks)-1)
	if target == idx {
		return nil
	}

	ids := make([]int64, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			ids = append(ids, t.ID)
		}
	}
	ids = slices.Insert(ids, target, id)
	return s.Reorder(ids)
}

// Get returns the task with the given id
func (s *Store) Get(id int64) (Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	return s.tasks[idx], nil
}

// Tasks returns a copy of all tasks in stored order
func (s *Store) Tasks() []Task {
	return slices.Clone(s.tasks)
}

// Pinned returns a copy of the pinned snapshots in pin order
func (s *Store) Pinned() []Task {
	return slices.Clone(s.pinned)
}

// IsPinned reports whether a snapshot with the given id is pinned
func (s *Store) IsPinned(id int64) bool {
	return slices.ContainsFunc(s.pinned, func(t Task) bool { return t.ID == id })
}

// Categories returns a copy of the known category names
func (s *Store) Categories() []string {
	return slices.Clone(s.categories)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// dedupe drops blank and repeated names, keeping first occurrences in order
func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}
