package admin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/steelhall/steelhall/internal/client"
	"github.com/steelhall/steelhall/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a scriptable in-memory server for one resource
type fakeAPI struct {
	mu     sync.Mutex
	items  []models.Warehouse
	nextID uint

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	// block, when set, holds every call until it is closed
	block chan struct{}
	// listGate, when set, holds List after it has read the items
	listGate chan struct{}
	listed   atomic.Int32

	lists, creates, updates, deletes atomic.Int32
}

func newFakeAPI(items ...models.Warehouse) *fakeAPI {
	f := &fakeAPI{nextID: 100}
	f.items = append(f.items, items...)
	return f
}

func (f *fakeAPI) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) List(ctx context.Context) ([]models.Warehouse, error) {
	f.lists.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	err, items := f.listErr, append([]models.Warehouse{}, f.items...)
	f.mu.Unlock()
	f.listed.Add(1)
	if f.listGate != nil {
		<-f.listGate
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeAPI) Create(ctx context.Context, w models.Warehouse) (models.Warehouse, error) {
	f.creates.Add(1)
	if err := f.wait(ctx); err != nil {
		return models.Warehouse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.Warehouse{}, f.createErr
	}
	f.nextID++
	w.ID = f.nextID
	f.items = append(f.items, w)
	return w, nil
}

func (f *fakeAPI) Update(ctx context.Context, id uint, w models.Warehouse) (models.Warehouse, error) {
	f.updates.Add(1)
	if err := f.wait(ctx); err != nil {
		return models.Warehouse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return models.Warehouse{}, f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			w.ID = id
			f.items[i] = w
			return w, nil
		}
	}
	return models.Warehouse{}, client.ErrNotFound
}

func (f *fakeAPI) Delete(ctx context.Context, id uint) error {
	f.deletes.Add(1)
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeAPI) remove(id uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return
		}
	}
}

func warehouse(id uint, name, location string) models.Warehouse {
	return models.Warehouse{ID: id, Name: name, Location: location, Status: models.StatusActive}
}

func seeded() *fakeAPI {
	return newFakeAPI(
		warehouse(1, "Hal Noord", "Zwolle"),
		warehouse(2, "Loods Zuid", "Eindhoven"),
		warehouse(3, "Opslag West", "Rotterdam"),
	)
}

func loadedController(t *testing.T, api *fakeAPI) *Controller[models.Warehouse] {
	t.Helper()
	c := NewController(Warehouses(), API[models.Warehouse](api))
	t.Cleanup(c.Close)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func yes() Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
}

func no() Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
}

func TestLoadEmpty(t *testing.T) {
	c := loadedController(t, newFakeAPI())

	snap := c.Snapshot()
	assert.Equal(t, Loaded, snap.State)
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.Notice)
}

func TestFirstLoadFailure(t *testing.T) {
	api := newFakeAPI()
	api.listErr = client.ErrNetwork
	c := NewController(Warehouses(), API[models.Warehouse](api))
	defer c.Close()

	assert.Equal(t, Idle, c.Snapshot().State)
	err := c.Load(context.Background())
	require.ErrorIs(t, err, client.ErrNetwork)

	snap := c.Snapshot()
	assert.Equal(t, LoadFailed, snap.State)
	assert.Empty(t, snap.Items)
	require.NotNil(t, snap.Notice)
	assert.ErrorIs(t, snap.Notice.Err, client.ErrNetwork)

	c.DismissNotice()
	assert.Nil(t, c.Snapshot().Notice)
}

func TestFailedReloadKeepsCache(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	api.listErr = &client.StatusError{Code: 500}
	require.Error(t, c.Load(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, Loaded, snap.State)
	assert.Len(t, snap.Items, 3)
	assert.NotNil(t, snap.Notice)
}

func TestSearch(t *testing.T) {
	c := loadedController(t, seeded())
	all := c.Items()

	assert.Equal(t, all, c.Search(""))
	assert.Equal(t, all, c.Search("   "))

	got := c.Search("HAL")
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)

	got = c.Search("o")
	assert.Len(t, got, 3, "every name contains an o")

	got = c.Search("rotterdam")
	require.Len(t, got, 1)
	assert.Equal(t, "Opslag West", got[0].Name)

	assert.Empty(t, c.Search("amsterdam"))
}

func TestSearchIsSubsetInOrder(t *testing.T) {
	c := loadedController(t, seeded())
	all := c.Items()

	for _, term := range []string{"e", "n", "zuid", "x", "L"} {
		got := c.Search(term)
		j := 0
		for _, item := range got {
			for j < len(all) && all[j].ID != item.ID {
				j++
			}
			require.Less(t, j, len(all), "term %q returned an item out of order or not cached", term)
			j++
		}
	}
}

func TestSearchReturnsCopy(t *testing.T) {
	c := loadedController(t, seeded())

	got := c.Search("")
	got[0].Name = "changed"
	assert.Equal(t, "Hal Noord", c.Items()[0].Name)
}

func TestSubmitCreateAppendsServerItem(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	draft := NewDraft[models.Warehouse]()
	draft.Item = models.Warehouse{Name: "Hal Oost", Location: "Enschede", Status: models.StatusPending}
	require.NoError(t, c.SubmitCreate(context.Background(), draft))

	items := c.Items()
	require.Len(t, items, 4)
	assert.Equal(t, uint(101), items[3].ID)
	assert.Equal(t, "Hal Oost", items[3].Name)
	assert.True(t, draft.Saved)
	assert.Equal(t, uint(101), draft.Item.ID)
	assert.Empty(t, draft.Errors)
	assert.Equal(t, None, c.Snapshot().Activity)
}

func TestClientValidationBlocksRequest(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	draft := NewDraft[models.Warehouse]()
	draft.Item = models.Warehouse{Location: "Enschede", Status: "demolished"}
	err := c.SubmitCreate(context.Background(), draft)

	var verr *client.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, draft.Errors, "name")
	assert.Contains(t, draft.Errors, "status")
	assert.NotEmpty(t, draft.FieldError("name"))
	assert.Equal(t, int32(0), api.creates.Load())
	assert.Len(t, c.Items(), 3)
	assert.False(t, draft.Saved)
}

func TestServerValidationPreservesDraft(t *testing.T) {
	api := seeded()
	api.createErr = &client.ValidationError{
		Message: "The given data was invalid.",
		Fields:  models.FieldErrors{"name": {"has already been taken"}},
	}
	c := loadedController(t, api)

	item := models.Warehouse{Name: "Hal Noord", Location: "Zwolle", Status: models.StatusActive, Price: 1250}
	draft := NewDraft[models.Warehouse]()
	draft.Item = item
	err := c.SubmitCreate(context.Background(), draft)

	var verr *client.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, item, draft.Item)
	assert.Equal(t, []string{"has already been taken"}, draft.Errors["name"])
	assert.False(t, draft.Saved)
	assert.Len(t, c.Items(), 3)
}

func TestSubmitUpdateReplacesItem(t *testing.T) {
	c := loadedController(t, seeded())

	item, ok := c.Find(2)
	require.True(t, ok)
	draft := EditDraft(item)
	draft.Item.Location = "Tilburg"
	require.NoError(t, c.SubmitUpdate(context.Background(), 2, draft))

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Tilburg", items[1].Location)
	assert.True(t, draft.Saved)
}

func TestUpdateNotFoundReconciles(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)
	api.remove(2)

	item, _ := c.Find(2)
	err := c.SubmitUpdate(context.Background(), 2, EditDraft(item))
	require.ErrorIs(t, err, client.ErrNotFound)

	assert.Equal(t, int32(2), api.lists.Load())
	_, found := c.Find(2)
	assert.False(t, found)
	assert.Len(t, c.Items(), 2)
	assert.NotNil(t, c.Snapshot().Notice)
}

func TestDoubleSubmitSendsOneRequest(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)
	api.block = make(chan struct{})

	first := NewDraft[models.Warehouse]()
	first.Item = warehouse(0, "Hal Oost", "Enschede")
	done := make(chan error, 1)
	go func() { done <- c.SubmitCreate(context.Background(), first) }()

	require.Eventually(t, func() bool { return api.creates.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, Submitting, c.Snapshot().Activity)

	second := NewDraft[models.Warehouse]()
	second.Item = first.Item
	assert.ErrorIs(t, c.SubmitCreate(context.Background(), second), ErrBusy)
	_, err := c.RequestDelete(context.Background(), 1, yes())
	assert.ErrorIs(t, err, ErrBusy)

	close(api.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), api.creates.Load())
	assert.Equal(t, int32(0), api.deletes.Load())
	assert.Len(t, c.Items(), 4)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	var prompt string
	deleted, err := c.RequestDelete(context.Background(), 1, ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return false, nil
	}))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Contains(t, prompt, "Hal Noord")
	assert.Equal(t, int32(0), api.deletes.Load())
	assert.Len(t, c.Items(), 3)

	confirmErr := errors.New("stdin closed")
	_, err = c.RequestDelete(context.Background(), 1, ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, confirmErr
	}))
	assert.ErrorIs(t, err, confirmErr)
	assert.Equal(t, int32(0), api.deletes.Load())
}

func TestDeleteShrinksCache(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	deleted, err := c.RequestDelete(context.Background(), 2, yes())
	require.NoError(t, err)
	assert.True(t, deleted)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, []uint{1, 3}, []uint{items[0].ID, items[1].ID})
}

func TestDeleteFailureKeepsItem(t *testing.T) {
	api := seeded()
	api.deleteErr = &client.StatusError{Code: 500, Message: "Server Error"}
	c := loadedController(t, api)

	deleted, err := c.RequestDelete(context.Background(), 2, yes())
	var serr *client.StatusError
	require.ErrorAs(t, err, &serr)
	assert.False(t, deleted)
	assert.Len(t, c.Items(), 3)
	assert.NotNil(t, c.Snapshot().Notice)
}

func TestDeleteNotFoundReconciles(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)
	api.remove(3)

	_, err := c.RequestDelete(context.Background(), 3, no())
	require.NoError(t, err)
	_, err = c.RequestDelete(context.Background(), 3, yes())
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Len(t, c.Items(), 2)
}

func TestCloseDiscardsLateResult(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)
	api.block = make(chan struct{})

	draft := NewDraft[models.Warehouse]()
	draft.Item = warehouse(0, "Hal Oost", "Enschede")
	done := make(chan error, 1)
	go func() { done <- c.SubmitCreate(context.Background(), draft) }()
	require.Eventually(t, func() bool { return api.creates.Load() == 1 }, time.Second, time.Millisecond)

	c.Close()
	assert.ErrorIs(t, <-done, ErrClosed)
	assert.False(t, draft.Saved)
	assert.Len(t, c.Items(), 3)

	assert.ErrorIs(t, c.Load(context.Background()), ErrClosed)
	assert.ErrorIs(t, c.SubmitCreate(context.Background(), draft), ErrClosed)
	_, err := c.RequestDelete(context.Background(), 1, yes())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCreateDuringLoadSurvivesStaleList(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)
	api.listGate = make(chan struct{})

	loadDone := make(chan error, 1)
	go func() { loadDone <- c.Load(context.Background()) }()
	require.Eventually(t, func() bool { return api.listed.Load() == 2 }, time.Second, time.Millisecond)

	draft := NewDraft[models.Warehouse]()
	draft.Item = warehouse(0, "Hal Oost", "Enschede")
	require.NoError(t, c.SubmitCreate(context.Background(), draft))
	require.Len(t, c.Items(), 4)

	close(api.listGate)
	require.NoError(t, <-loadDone)

	items := c.Items()
	require.Len(t, items, 4)
	assert.Equal(t, draft.Item.ID, items[3].ID)
	assert.Equal(t, Loaded, c.Snapshot().State)
}

func TestDeleteDuringLoadSurvivesStaleList(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)
	api.listGate = make(chan struct{})

	loadDone := make(chan error, 1)
	go func() { loadDone <- c.Load(context.Background()) }()
	require.Eventually(t, func() bool { return api.listed.Load() == 2 }, time.Second, time.Millisecond)

	deleted, err := c.RequestDelete(context.Background(), 1, yes())
	require.NoError(t, err)
	require.True(t, deleted)

	close(api.listGate)
	require.NoError(t, <-loadDone)

	_, found := c.Find(1)
	assert.False(t, found)
	assert.Len(t, c.Items(), 2)
}

func TestListAfterCreateHasNoDuplicate(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	draft := NewDraft[models.Warehouse]()
	draft.Item = warehouse(0, "Hal Oost", "Enschede")
	require.NoError(t, c.SubmitCreate(context.Background(), draft))
	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.Items(), 4)
}

func TestFailedSubmitClearsSaved(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	item, _ := c.Find(1)
	draft := EditDraft(item)
	draft.Item.Location = "Kampen"
	require.NoError(t, c.SubmitUpdate(context.Background(), 1, draft))
	require.True(t, draft.Saved)

	api.updateErr = &client.StatusError{Code: 500}
	draft.Item.Location = "Deventer"
	require.Error(t, c.SubmitUpdate(context.Background(), 1, draft))
	assert.False(t, draft.Saved)
	assert.Equal(t, "Deventer", draft.Item.Location)
}

func TestNilConfirmerDoesNotDelete(t *testing.T) {
	api := seeded()
	c := loadedController(t, api)

	deleted, err := c.RequestDelete(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, int32(0), api.deletes.Load())
	assert.Len(t, c.Items(), 3)
}

func TestMutationsFollowListOrder(t *testing.T) {
	hal := warehouse(1, "Hal Noord", "Zwolle")
	hal.SortOrder = 10
	loods := warehouse(2, "Loods Zuid", "Eindhoven")
	loods.SortOrder = 20
	opslag := warehouse(3, "Opslag West", "Rotterdam")
	opslag.SortOrder = 30
	c := loadedController(t, newFakeAPI(hal, loods, opslag))

	draft := NewDraft[models.Warehouse]()
	draft.Item = warehouse(0, "Hal Oost", "Enschede")
	draft.Item.SortOrder = 15
	require.NoError(t, c.SubmitCreate(context.Background(), draft))

	edit := EditDraft(hal)
	edit.Item.SortOrder = 40
	require.NoError(t, c.SubmitUpdate(context.Background(), 1, edit))

	var ids []uint
	for _, item := range c.Items() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []uint{101, 2, 3, 1}, ids)
}

func TestContactsNewestFirst(t *testing.T) {
	c := &Controller[models.Contact]{res: Contacts()}
	now := time.Now()
	items := []models.Contact{
		{ID: 2, Name: "B", CreatedAt: now.Add(-time.Hour)},
		{ID: 1, Name: "A", CreatedAt: now.Add(-2 * time.Hour)},
	}

	items = c.place(items, models.Contact{ID: 3, Name: "C", CreatedAt: now})
	require.Len(t, items, 3)
	assert.Equal(t, uint(3), items[0].ID)

	items = c.place(items, models.Contact{ID: 1, Name: "A2", CreatedAt: now.Add(-2 * time.Hour)})
	require.Len(t, items, 3)
	assert.Equal(t, "A2", items[2].Name)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "load failed", LoadFailed.String())
	assert.Equal(t, "state(9)", State(9).String())
}
