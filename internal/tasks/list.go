package tasks

import (
	"sync"

	"github.com/desertthunder/taskr/internal/models"
)

// List is the client's transient copy of the remote task collection, keyed by id.
//
// Items keep the order the server returned them in; new ids are appended.
type List struct {
	mu     sync.RWMutex
	order  []string
	items  map[string]models.Task
	loaded bool
}

func NewList() *List {
	return &List{items: make(map[string]models.Task)}
}

// Replace swaps the whole collection, as after a full refresh. Tasks without an id are dropped.
func (l *List) Replace(tasks []models.Task) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.order = make([]string, 0, len(tasks))
	l.items = make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if _, dup := l.items[t.ID]; !dup {
			l.order = append(l.order, t.ID)
		}
		l.items[t.ID] = t
	}
	l.loaded = true
}

// Clear drops every task and marks the list as not yet loaded.
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.order = nil
	l.items = make(map[string]models.Task)
	l.loaded = false
}

// Upsert patches a single row with the server's latest response for that id.
func (l *List) Upsert(t models.Task) {
	if t.ID == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[t.ID]; !ok {
		l.order = append(l.order, t.ID)
	}
	l.items[t.ID] = t
}

// Remove drops id and reports whether it was present.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[id]; !ok {
		return false
	}
	delete(l.items, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

func (l *List) Get(id string) (models.Task, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.items[id]
	return t, ok
}

// Items returns the tasks in order.
func (l *List) Items() []models.Task {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Task, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.items[id])
	}
	return out
}

// Filter returns the ordered tasks for which keep is true.
func (l *List) Filter(keep func(models.Task) bool) []models.Task {
	var out []models.Task
	for _, t := range l.Items() {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Empty reports whether a loaded list holds no tasks. It drives the empty-state view.
func (l *List) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded && len(l.order) == 0
}

// Loaded reports whether Replace has been called at least once.
func (l *List) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}
