// SPDX-License-Identifier: MIT
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/steelhall/steelhall/internal/client"
)

var (
	// ErrBusy is returned when a mutation is already in flight
	ErrBusy = errors.New("another change is still being saved")
	// ErrClosed is returned after the controller was closed
	ErrClosed = errors.New("controller closed")
	// ErrInvalid is returned when a draft fails the local checks
	ErrInvalid = errors.New("the given data was invalid")
)

// State is the lifecycle of the cached collection
type State int

const (
	Idle State = iota
	Loading
	Loaded
	LoadFailed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Activity is the transient mutation in progress, if any
type Activity int

const (
	None Activity = iota
	Submitting
	Deleting
)

// Notice is a dismissible message about the last failed operation
type Notice struct {
	Message string
	Err     error
}

// Snapshot is a consistent view of the controller
type Snapshot[T Item] struct {
	State    State
	Activity Activity
	Items    []T
	Notice   *Notice
}

// Confirmer asks the user to confirm a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Controller owns the cached collection of one resource. It is safe for
// concurrent use.
type Controller[T Item] struct {
	res Resource[T]
	api API[T]

	ctx    context.Context
	cancel context.CancelFunc

	// mutating serialises create, update and delete
	mutating sync.Mutex

	mu       sync.Mutex
	state    State
	activity Activity
	items    []T
	loaded   bool
	loadGen  int
	notice   *Notice
	closed   bool

	// loading counts List calls in flight; while any is, committed
	// mutations are journaled so a list fetched before them can catch up
	loading int
	journal []change[T]
}

// change is one committed mutation
type change[T Item] struct {
	item    T
	id      uint
	removed bool
}

// NewController creates a controller in the Idle state
func NewController[T Item](res Resource[T], api API[T]) *Controller[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		res:    res,
		api:    api,
		ctx:    ctx,
		cancel: cancel,
		items:  []T{},
	}
}

// Resource returns the descriptor the controller was built with
func (c *Controller[T]) Resource() Resource[T] {
	return c.res
}

// Close cancels in-flight requests. Results arriving afterwards are dropped.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

// scope ties ctx to the controller lifetime
func (c *Controller[T]) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Snapshot returns a copy of the current state
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	var notice *Notice
	if c.notice != nil {
		n := *c.notice
		notice = &n
	}
	return Snapshot[T]{
		State:    c.state,
		Activity: c.activity,
		Items:    append([]T(nil), c.items...),
		Notice:   notice,
	}
}

// Items returns a copy of the cache
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Find returns the cached item with id
func (c *Controller[T]) Find(id uint) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// DismissNotice clears the current notice
func (c *Controller[T]) DismissNotice() {
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
}

// Load fetches the collection and replaces the cache. On failure the
// previous cache is kept.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.loadGen++
	gen := c.loadGen
	c.state = Loading
	c.loading++
	since := len(c.journal)
	c.mu.Unlock()

	ctx, done := c.scope(ctx)
	defer done()
	items, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--
	pending := c.journal[since:]
	if c.loading == 0 {
		c.journal = nil
	}
	if c.closed {
		return ErrClosed
	}
	if gen != c.loadGen {
		// a newer load owns the state
		return err
	}
	if err != nil {
		if c.loaded {
			c.state = Loaded
		} else {
			c.state = LoadFailed
		}
		c.notice = &Notice{Message: fmt.Sprintf("Could not load %s: %v", c.res.Name, err), Err: err}
		return fmt.Errorf("failed to load %s: %w", c.res.Name, err)
	}
	if items == nil {
		items = []T{}
	}
	for _, ch := range pending {
		if ch.removed {
			items = remove(items, ch.id)
		} else {
			items = c.place(items, ch.item)
		}
	}
	c.items = items
	c.loaded = true
	c.state = Loaded
	return nil
}

// Search returns the cached items whose search fields contain term,
// ignoring case. An empty term returns everything. Order is preserved.
func (c *Controller[T]) Search(term string) []T {
	items := c.Items()
	return Filter(c.res, items, term)
}

// Filter applies the descriptor's search fields to items
func Filter[T Item](res Resource[T], items []T, term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || res.SearchFields == nil {
		return append([]T{}, items...)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range res.SearchFields(item) {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// SubmitCreate sends a new item. On success the stored item is appended to
// the cache and written back into the draft.
func (c *Controller[T]) SubmitCreate(ctx context.Context, draft *Draft[T]) error {
	return c.submit(ctx, draft, func(ctx context.Context) (T, error) {
		return c.api.Create(ctx, draft.Item)
	}, 0)
}

// SubmitUpdate sends changes to an existing item
func (c *Controller[T]) SubmitUpdate(ctx context.Context, id uint, draft *Draft[T]) error {
	return c.submit(ctx, draft, func(ctx context.Context) (T, error) {
		return c.api.Update(ctx, id, draft.Item)
	}, id)
}

func (c *Controller[T]) submit(ctx context.Context, draft *Draft[T], call func(context.Context) (T, error), id uint) error {
	if c.isClosed() {
		return ErrClosed
	}
	if c.res.Validate != nil {
		if errs := c.res.Validate(draft.Item); !errs.Empty() {
			draft.Errors = errs
			draft.Saved = false
			return &client.ValidationError{Message: ErrInvalid.Error(), Fields: errs}
		}
	}

	if !c.mutating.TryLock() {
		return ErrBusy
	}
	c.setActivity(Submitting)

	reqCtx, done := c.scope(ctx)
	saved, err := call(reqCtx)
	done()

	c.mu.Lock()
	c.activity = None
	if c.closed {
		c.mu.Unlock()
		c.mutating.Unlock()
		return ErrClosed
	}
	if err == nil {
		c.items = c.place(c.items, saved)
		c.record(change[T]{item: saved})
		draft.Item = saved
		draft.Errors = nil
		draft.Saved = true
		c.mu.Unlock()
		c.mutating.Unlock()
		return nil
	}

	draft.Saved = false
	var verr *client.ValidationError
	if errors.As(err, &verr) {
		draft.Errors = verr.Fields
	}
	c.notice = &Notice{Message: fmt.Sprintf("Could not save %s: %v", c.res.Singular, err), Err: err}
	c.mu.Unlock()
	c.mutating.Unlock()

	if id != 0 && errors.Is(err, client.ErrNotFound) {
		c.reconcile(ctx)
	}
	return err
}

// RequestDelete removes an item once confirmer agrees. It reports whether
// the item was deleted. A nil confirmer never agrees.
func (c *Controller[T]) RequestDelete(ctx context.Context, id uint, confirmer Confirmer) (bool, error) {
	if c.isClosed() {
		return false, ErrClosed
	}
	if confirmer == nil {
		return false, nil
	}
	prompt := fmt.Sprintf("Delete %s #%d?", c.res.Singular, id)
	if item, ok := c.Find(id); ok && c.res.Label != nil {
		prompt = fmt.Sprintf("Delete %s %q?", c.res.Singular, c.res.Label(item))
	}
	ok, err := confirmer.Confirm(ctx, prompt)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := c.deleteResource(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller[T]) deleteResource(ctx context.Context, id uint) error {
	if !c.mutating.TryLock() {
		return ErrBusy
	}
	c.setActivity(Deleting)

	reqCtx, done := c.scope(ctx)
	err := c.api.Delete(reqCtx, id)
	done()

	c.mu.Lock()
	c.activity = None
	if c.closed {
		c.mu.Unlock()
		c.mutating.Unlock()
		return ErrClosed
	}
	if err == nil {
		c.items = remove(c.items, id)
		c.record(change[T]{id: id, removed: true})
		c.mu.Unlock()
		c.mutating.Unlock()
		return nil
	}
	c.notice = &Notice{Message: fmt.Sprintf("Could not delete %s: %v", c.res.Singular, err), Err: err}
	c.mu.Unlock()
	c.mutating.Unlock()

	if errors.Is(err, client.ErrNotFound) {
		c.reconcile(ctx)
	}
	return err
}

// reconcile reloads after the server reported an item missing. Its own
// failure is already recorded as a notice.
func (c *Controller[T]) reconcile(ctx context.Context) {
	_ = c.Load(ctx)
}

// record journals a committed mutation for loads still in flight. mu must
// be held.
func (c *Controller[T]) record(ch change[T]) {
	if c.loading > 0 {
		c.journal = append(c.journal, ch)
	}
}

// place puts item where the server would list it, replacing any copy with
// the same id. Without an order, updates stay in place and creates append.
func (c *Controller[T]) place(items []T, item T) []T {
	id := item.ItemID()
	if c.res.Less == nil {
		for i := range items {
			if items[i].ItemID() == id {
				out := append([]T(nil), items...)
				out[i] = item
				return out
			}
		}
		return append(append([]T(nil), items...), item)
	}

	rest := remove(items, id)
	at := sort.Search(len(rest), func(i int) bool { return c.res.Less(item, rest[i]) })
	out := make([]T, 0, len(rest)+1)
	out = append(out, rest[:at]...)
	out = append(out, item)
	return append(out, rest[at:]...)
}

// remove returns items without the one with id
func remove[T Item](items []T, id uint) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.ItemID() != id {
			out = append(out, item)
		}
	}
	return out
}

func (c *Controller[T]) setActivity(a Activity) {
	c.mu.Lock()
	c.activity = a
	c.mu.Unlock()
}

func (c *Controller[T]) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// indexOf must be called with mu held
func (c *Controller[T]) indexOf(id uint) int {
	for i, item := range c.items {
		if item.ItemID() == id {
			return i
		}
	}
	return -1
}
