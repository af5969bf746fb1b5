package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/remote"
)

// Gateway is the remote surface the controller drives. *remote.Gateway
// satisfies it; tests substitute a fake.
type Gateway interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, title string) (model.Todo, error)
	Update(ctx context.Context, id string, done bool) error
	Delete(ctx context.Context, id string) error
}

// Controller owns the local todo list and keeps it consistent with the
// backend. Toggle and delete apply optimistically and roll back if the
// server rejects them; create appends only after confirmation; refresh
// replaces the list wholesale.
//
// Mutating methods block on the network call, so run each one on its own
// goroutine (a tea.Cmd in the TUI). The mutex serializes the
// state-mutating sections while the network portion happens outside it;
// mutations for different records may be in flight at once, and the last
// response to land wins for its record.
type Controller struct {
	gw Gateway

	mu       sync.Mutex
	records  []model.Todo
	loading  bool
	lastErr  string
	inflight map[string]bool // record id -> mutation outstanding
}

func NewController(gw Gateway) *Controller {
	return &Controller{gw: gw, inflight: map[string]bool{}}
}

// Records returns a copy of the list in display order.
func (c *Controller) Records() []model.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Todo, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError is the message from the most recent failed operation, or ""
// after a successful one.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Refresh replaces the local list with the server's view. On failure the
// previous list stays and only the error message changes. The loading
// flag is cleared on every exit path.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	todos, err := c.gw.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.loading = false }()
	if err != nil {
		c.lastErr = userMessage(err)
		return
	}
	c.records = todos
}

// Add creates a record with the given title and reports whether it was
// accepted. A trimmed-empty title is a no-op with no network call. The
// record is appended only once the server confirms it; there is no
// optimistic insert, so callers should keep the typed text visible until
// Add returns true.
func (c *Controller) Add(ctx context.Context, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()

	todo, err := c.gw.Create(ctx, title)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = userMessage(err)
		return false
	}
	c.records = append(c.records, todo)
	return true
}

// ToggleDone optimistically flips a record's done flag, then confirms
// with the server, reverting the flip if the call fails. Unknown ids are
// ignored, as is a second toggle for an id whose mutation is still
// outstanding.
func (c *Controller) ToggleDone(ctx context.Context, id string) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 || c.inflight[id] {
		c.mu.Unlock()
		return
	}
	prev := c.records[i]
	c.records[i].Done = !prev.Done
	done := c.records[i].Done
	c.inflight[id] = true
	c.mu.Unlock()

	err := c.gw.Update(ctx, id, done)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		if j := c.indexOf(id); j >= 0 {
			c.records[j] = prev
		}
		c.lastErr = userMessage(err)
		glog.V(1).Infof("toggle %s rolled back: %v", id, err)
		return
	}
	c.lastErr = ""
}

// Remove optimistically drops a record, restoring it at its old position
// if the server rejects the delete. Only the removed record is restored;
// mutations that landed while the delete was in flight stay applied.
func (c *Controller) Remove(ctx context.Context, id string) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 || c.inflight[id] {
		c.mu.Unlock()
		return
	}
	removed := c.records[i]
	c.records = append(c.records[:i], c.records[i+1:]...)
	c.inflight[id] = true
	c.mu.Unlock()

	err := c.gw.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		at := i
		if at > len(c.records) {
			at = len(c.records)
		}
		rest := append([]model.Todo{removed}, c.records[at:]...)
		c.records = append(c.records[:at], rest...)
		c.lastErr = userMessage(err)
		glog.V(1).Infof("delete %s rolled back: %v", id, err)
		return
	}
	c.lastErr = ""
}

// indexOf locates a record by id. Callers hold the mutex.
func (c *Controller) indexOf(id string) int {
	for i, t := range c.records {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// userMessage folds the error taxonomy into one line fit for the UI.
func userMessage(err error) string {
	var se *remote.ServerError
	var te *remote.TransportError
	var pe *model.ParseError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("server error (%d)", se.Status)
	case errors.As(err, &te):
		return "cannot reach server"
	case errors.As(err, &pe):
		return "unexpected server response"
	}
	return err.Error()
}
