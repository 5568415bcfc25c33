package client

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/grouping"
	"github.com/taskmaster/planner/internal/domain/tasktree"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
)

// maxReorderCalls bounds the concurrent PATCH calls of one reorder
const maxReorderCalls = 8

// API is the part of the planner API the store needs. *Client satisfies it.
type API interface {
	ListAll(ctx context.Context) ([]entities.Task, error)
	PatchTask(ctx context.Context, id int, fields map[string]interface{}) (*entities.Task, error)
	CreateSubtask(ctx context.Context, parentID int, title string) (*entities.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// State is a read-only snapshot of the store.
type State struct {
	Tasks      []entities.Task
	Expanded   tasktree.IDSet
	SelectedID int
	PanelOpen  bool
}

// Selected returns the selected task of the snapshot, if any.
func (s State) Selected() (entities.Task, bool) {
	if s.SelectedID == 0 {
		return entities.Task{}, false
	}
	for i := range s.Tasks {
		if s.Tasks[i].ID == s.SelectedID {
			return s.Tasks[i], true
		}
	}
	return entities.Task{}, false
}

// Store holds the client-side task list and view state. Local state changes
// under the lock; API calls are made outside it. Toggle, SetQuadrant and
// Move update local state before the call returns.
type Store struct {
	api    API
	now    func() time.Time
	logger *logger.Logger

	mu        sync.Mutex
	tasks     []entities.Task
	expanded  tasktree.IDSet
	selected  int
	panelOpen bool

	subMu       sync.Mutex
	subscribers map[int]func(State)
	nextSub     int
}

// NewStore creates an empty store backed by api
func NewStore(api API, log *logger.Logger) *Store {
	return &Store{
		api:         api,
		now:         time.Now,
		logger:      log.WithComponent("client_store"),
		expanded:    tasktree.NewIDSet(),
		subscribers: make(map[int]func(State)),
	}
}

// Subscribe registers fn to receive a snapshot after every change and
// returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Task returns a copy of the task with id
func (s *Store) Task(id int) (entities.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return entities.Task{}, false
}

// Load replaces the local task list with the server's
func (s *Store) Load(ctx context.Context) error {
	tasks, err := s.api.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	s.mu.Lock()
	s.tasks = tasks
	if s.selected != 0 && s.indexLocked(s.selected) < 0 {
		s.selected = 0
		s.panelOpen = false
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Toggle flips a task between done and pending. The local copy changes at
// once; if the server rejects the change, status and completedAt are put
// back.
func (s *Store) Toggle(ctx context.Context, id int) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return entities.ErrTaskNotFound
	}
	task := &s.tasks[i]
	prevStatus, prevCompletedAt := task.Status, task.CompletedAt

	fields := map[string]interface{}{}
	if task.IsDone() {
		task.MarkPending()
		fields["completedAt"] = nil
	} else {
		task.MarkDone(s.now().UTC())
		fields["completedAt"] = *task.CompletedAt
	}
	fields["status"] = task.Status
	s.mu.Unlock()
	s.notify()

	updated, err := s.api.PatchTask(ctx, id, fields)
	if err != nil {
		s.logger.Warnw("Toggle failed, reverting", "task_id", id, "error", err)
		s.mu.Lock()
		if i := s.indexLocked(id); i >= 0 {
			s.tasks[i].Status = prevStatus
			s.tasks[i].CompletedAt = prevCompletedAt
		}
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("failed to toggle task %d: %w", id, err)
	}

	s.replace(updated)
	return nil
}

// SetQuadrant moves a task to another quadrant, reverting on failure
func (s *Store) SetQuadrant(ctx context.Context, id int, q entities.Quadrant) error {
	if !q.IsValid() {
		return entities.ErrInvalidQuadrant
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return entities.ErrTaskNotFound
	}
	prev := s.tasks[i].Quadrant
	s.tasks[i].Quadrant = q
	s.mu.Unlock()
	s.notify()

	updated, err := s.api.PatchTask(ctx, id, map[string]interface{}{"quadrant": q})
	if err != nil {
		s.logger.Warnw("Quadrant change failed, reverting", "task_id", id, "error", err)
		s.mu.Lock()
		if i := s.indexLocked(id); i >= 0 {
			s.tasks[i].Quadrant = prev
		}
		s.mu.Unlock()
		s.notify()
		return fmt.Errorf("failed to set quadrant of task %d: %w", id, err)
	}

	s.replace(updated)
	return nil
}

// Patch sends an arbitrary field update and stores the server's answer.
// Nothing changes locally until the call succeeds.
func (s *Store) Patch(ctx context.Context, id int, fields map[string]interface{}) (*entities.Task, error) {
	updated, err := s.api.PatchTask(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	s.replace(updated)
	return updated, nil
}

// Move drops the task activeID onto the position of overID. group is the
// list as displayed, such as one board section's top-level ids. When the
// two tasks are not both in group they must be siblings, and the sibling
// list ordered by order is used instead. Every task of the resulting list
// whose order changed is persisted with its own PATCH; if any of them
// fails the whole list is reloaded from the server.
func (s *Store) Move(ctx context.Context, activeID, overID int, group []int) error {
	if activeID == overID {
		return nil
	}

	s.mu.Lock()
	ids, ok := s.reorderListLocked(activeID, overID, group)
	if !ok {
		s.mu.Unlock()
		return nil
	}

	changes := make(map[int]int)
	for pos, id := range ids {
		i := s.indexLocked(id)
		if i < 0 {
			continue
		}
		if s.tasks[i].Order != nil && *s.tasks[i].Order == pos {
			continue
		}
		order := pos
		s.tasks[i].Order = &order
		changes[id] = pos
	}
	s.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}
	s.notify()

	p := pool.New().WithMaxGoroutines(maxReorderCalls).WithErrors().WithContext(ctx)
	for id, order := range changes {
		id, order := id, order
		p.Go(func(ctx context.Context) error {
			_, err := s.api.PatchTask(ctx, id, map[string]interface{}{"order": order})
			return err
		})
	}

	if err := p.Wait(); err != nil {
		s.logger.Warnw("Reorder failed, reloading", "task_id", activeID, "error", err)
		if loadErr := s.Load(ctx); loadErr != nil {
			s.logger.Errorw("Reload after failed reorder failed", "error", loadErr)
		}
		return fmt.Errorf("failed to reorder tasks: %w", err)
	}
	return nil
}

// AddSubtask creates a subtask for today under parentID and expands the
// parent so the new row is visible.
func (s *Store) AddSubtask(ctx context.Context, parentID int, title string) (*entities.Task, error) {
	task, err := s.api.CreateSubtask(ctx, parentID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to add subtask to task %d: %w", parentID, err)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, *task)
	s.expanded.Add(parentID)
	s.mu.Unlock()

	s.notify()
	return task, nil
}

// Delete removes a task on the server and drops it and its descendants
// locally.
func (s *Store) Delete(ctx context.Context, id int) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	s.mu.Lock()
	gone := s.subtreeLocked(id)
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !gone.Has(t.ID) {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	for goneID := range gone {
		s.expanded.Remove(goneID)
	}
	if gone.Has(s.selected) {
		s.selected = 0
		s.panelOpen = false
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// ToggleExpand flips whether id shows its subtasks
func (s *Store) ToggleExpand(id int) bool {
	s.mu.Lock()
	open := s.expanded.Toggle(id)
	s.mu.Unlock()

	s.notify()
	return open
}

// Select opens the detail panel on id
func (s *Store) Select(id int) {
	s.mu.Lock()
	s.selected = id
	s.panelOpen = true
	s.mu.Unlock()

	s.notify()
}

func (s *Store) ClosePanel() {
	s.mu.Lock()
	s.selected = 0
	s.panelOpen = false
	s.mu.Unlock()

	s.notify()
}

// Board groups the local tasks for a category view. An empty category
// shows everything that is not abandoned.
func (s *Store) Board(today, category string) []grouping.Section {
	state := s.Snapshot()
	return grouping.Board(state.Tasks, today, state.Expanded, grouping.ByCategory(category))
}

func (s *Store) reorderListLocked(activeID, overID int, group []int) ([]int, bool) {
	from, to := indexOf(group, activeID), indexOf(group, overID)
	if from >= 0 && to >= 0 {
		return moveItem(group, from, to), true
	}

	ai, oi := s.indexLocked(activeID), s.indexLocked(overID)
	if ai < 0 || oi < 0 {
		return nil, false
	}
	parent := parentOf(&s.tasks[ai])
	if parent != parentOf(&s.tasks[oi]) {
		return nil, false
	}

	var siblings []entities.Task
	for _, t := range s.tasks {
		if parentOf(&t) == parent {
			siblings = append(siblings, t)
		}
	}
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].OrderKey() < siblings[j].OrderKey()
	})

	ids := make([]int, len(siblings))
	for i := range siblings {
		ids[i] = siblings[i].ID
	}
	return moveItem(ids, indexOf(ids, activeID), indexOf(ids, overID)), true
}

// subtreeLocked returns id and every task nested below it
func (s *Store) subtreeLocked(id int) tasktree.IDSet {
	gone := tasktree.NewIDSet(id)
	var walk func(n *tasktree.Node)
	walk = func(n *tasktree.Node) {
		for _, c := range n.Subtasks {
			gone.Add(c.Task.ID)
			walk(c)
		}
	}
	if root := tasktree.Find(tasktree.Build(s.tasks), id); root != nil {
		walk(root)
	}
	return gone
}

func (s *Store) replace(task *entities.Task) {
	if task == nil {
		return
	}
	s.mu.Lock()
	if i := s.indexLocked(task.ID); i >= 0 {
		s.tasks[i] = *task
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) indexLocked(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() State {
	tasks := make([]entities.Task, len(s.tasks))
	for i := range s.tasks {
		tasks[i] = s.tasks[i].Clone()
	}
	return State{
		Tasks:      tasks,
		Expanded:   tasktree.NewIDSet(s.expanded.IDs()...),
		SelectedID: s.selected,
		PanelOpen:  s.panelOpen,
	}
}

func (s *Store) notify() {
	state := s.Snapshot()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func parentOf(t *entities.Task) int {
	if !t.HasParent() {
		return 0
	}
	return *t.ParentID
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// moveItem returns a copy of ids with the element at from moved to to
func moveItem(ids []int, from, to int) []int {
	out := make([]int, 0, len(ids))
	out = append(out, ids[:from]...)
	out = append(out, ids[from+1:]...)

	moved := make([]int, 0, len(ids))
	moved = append(moved, out[:to]...)
	moved = append(moved, ids[from])
	moved = append(moved, out[to:]...)
	return moved
}
