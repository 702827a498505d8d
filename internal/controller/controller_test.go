package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"photobooth-admin/internal/model"
	"photobooth-admin/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// eventLog records the order in which collaborators are called.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// fakeStore is an in-memory store.Store.
type fakeStore struct {
	mu        sync.Mutex
	photos    []model.Photo
	listErr   error
	markErr   error
	deleteErr error
	listFunc  func(ctx context.Context) ([]model.Photo, error)
	log       *eventLog

	listCalls, markCalls, deleteCalls int
}

func (s *fakeStore) List(ctx context.Context) ([]model.Photo, error) {
	s.mu.Lock()
	s.listCalls++
	fn := s.listFunc
	s.mu.Unlock()
	if s.log != nil {
		s.log.add("list")
	}
	if fn != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, &store.StoreError{Op: store.OpList, Err: s.listErr}
	}
	return append([]model.Photo(nil), s.photos...), nil
}

func (s *fakeStore) MarkPrinted(ctx context.Context, id string) error {
	if s.log != nil {
		s.log.add("update:" + id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	if s.markErr != nil {
		return &store.StoreError{Op: store.OpMarkPrinted, ID: id, Err: s.markErr}
	}
	for i := range s.photos {
		if s.photos[i].ID == id {
			s.photos[i].Printed = true
		}
	}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	if s.log != nil {
		s.log.add("delete:" + id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return &store.StoreError{Op: store.OpDelete, ID: id, Err: s.deleteErr}
	}
	kept := s.photos[:0]
	for _, p := range s.photos {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.photos = kept
	return nil
}

func (s *fakeStore) calls() (list, mark, del int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.markCalls, s.deleteCalls
}

// fakePresenter captures renders and prints.
type fakePresenter struct {
	mu     sync.Mutex
	views  []View
	prints []model.Photo
	log    *eventLog
}

func (p *fakePresenter) Render(view View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
}

func (p *fakePresenter) Print(photo model.Photo) {
	if p.log != nil {
		p.log.add("print:" + photo.ID)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prints = append(p.prints, photo)
}

func (p *fakePresenter) lastView() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.views) == 0 {
		return View{}
	}
	return p.views[len(p.views)-1]
}

func (p *fakePresenter) renderCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func twoPhotos() []model.Photo {
	return []model.Photo{
		{ID: "b", Printed: true, CreatedAt: t0.Add(time.Minute)},
		{ID: "a", Printed: false, CreatedAt: t0},
	}
}

func photoIDs(photos []model.Photo) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		out = append(out, p.ID)
	}
	return out
}

func confirmWith(answer bool, prompts *[]string) Confirmer {
	return ConfirmFunc(func(ctx context.Context, prompt string) bool {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		return answer
	})
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestNew_Defaults(t *testing.T) {
	c := New(&fakeStore{}, &fakePresenter{})
	assert.Equal(t, model.FilterAll, c.Filter())
	assert.Empty(t, c.Records())
	assert.True(t, c.View().Empty())
	assert.Equal(t, DefaultPollInterval, c.interval)
}

func TestNew_WithFilter(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p, WithFilter(model.FilterPrinted))

	require.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, 1, p.renderCount())
	assert.Equal(t, model.FilterPrinted, p.lastView().Filter)
	for _, photo := range p.lastView().Photos {
		assert.True(t, photo.Printed)
	}
}

func TestRefresh_ReplacesWorkingSet(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"b", "a"}, photoIDs(c.Records()))
	assert.Equal(t, 1, p.renderCount())
	assert.Equal(t, 2, p.lastView().Total)

	// Wholesale replacement: a photo gone from the store is gone locally.
	s.mu.Lock()
	s.photos = s.photos[:1]
	s.mu.Unlock()
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"b"}, photoIDs(c.Records()))
}

func TestRefresh_Idempotent(t *testing.T) {
	c := New(&fakeStore{photos: twoPhotos()}, &fakePresenter{})
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	first := c.Records()
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, first, c.Records())
}

func TestRefresh_FailureKeepsRecords(t *testing.T) {
	log, logs := newObservedLogger()
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p, WithLogger(log))
	require.NoError(t, c.Refresh(context.Background()))

	s.mu.Lock()
	s.listErr = errors.New("network down")
	s.mu.Unlock()

	err := c.Refresh(context.Background())
	assert.True(t, store.IsStoreError(err))
	assert.Equal(t, []string{"b", "a"}, photoIDs(c.Records()))
	assert.Equal(t, 1, p.renderCount(), "a failed refresh does not re-render")
	assert.Equal(t, 1, logs.FilterMessage("failed to load photos").FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestSetFilter(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p)
	require.NoError(t, c.Refresh(context.Background()))

	c.SetFilter(model.FilterUnprinted)
	assert.Equal(t, model.FilterUnprinted, c.Filter())
	assert.Equal(t, []string{"a"}, photoIDs(p.lastView().Photos))
	assert.Equal(t, model.FilterUnprinted, p.lastView().Filter)

	c.SetFilter(model.FilterPrinted)
	assert.Equal(t, []string{"b"}, photoIDs(c.View().Photos))

	c.SetFilter(model.FilterAll)
	assert.Equal(t, []string{"b", "a"}, photoIDs(c.View().Photos))

	list, mark, del := s.calls()
	assert.Equal(t, 1, list, "filter changes never touch the store")
	assert.Zero(t, mark)
	assert.Zero(t, del)
}

func TestDeriveView_Purity(t *testing.T) {
	records := []model.Photo{
		{ID: "1", Printed: true}, {ID: "2"}, {ID: "3", Printed: true}, {ID: "4"}, {ID: "5"},
	}
	for _, f := range model.Filters {
		got := DeriveView(records, f)

		// Subsequence check: ids appear in the same relative order.
		j := 0
		for _, r := range records {
			if j < len(got) && got[j].ID == r.ID {
				j++
			}
		}
		assert.Equal(t, len(got), j, "filter %s must preserve order", f)

		var expected int
		for _, r := range records {
			if f.Match(r) {
				expected++
			}
		}
		assert.Len(t, got, expected)
	}
	assert.Len(t, records, 5)
}

func TestMarkPrinted_PrintsBeforeUpdate(t *testing.T) {
	events := &eventLog{}
	s := &fakeStore{photos: twoPhotos(), log: events}
	p := &fakePresenter{log: events}
	c := New(s, p)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.MarkPrinted(context.Background(), "a"))

	assert.Equal(t, []string{"list", "print:a", "update:a", "list"}, events.all())
	require.Len(t, p.prints, 1)
	assert.Equal(t, "a", p.prints[0].ID)

	photo, ok := c.Photo("a")
	require.True(t, ok)
	assert.True(t, photo.Printed)
}

func TestMarkPrinted_UnknownID(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.Records()

	require.NoError(t, c.MarkPrinted(context.Background(), "zzz"))

	list, mark, del := s.calls()
	assert.Equal(t, 1, list)
	assert.Zero(t, mark)
	assert.Zero(t, del)
	assert.Empty(t, p.prints)
	assert.Equal(t, before, c.Records())
}

func TestMarkPrinted_UpdateFailure(t *testing.T) {
	log, logs := newObservedLogger()
	s := &fakeStore{photos: twoPhotos(), markErr: errors.New("conflict")}
	p := &fakePresenter{}
	c := New(s, p, WithLogger(log))
	require.NoError(t, c.Refresh(context.Background()))

	err := c.MarkPrinted(context.Background(), "a")
	assert.True(t, store.IsStoreError(err))

	list, mark, _ := s.calls()
	assert.Equal(t, 1, list, "no refresh after a failed update")
	assert.Equal(t, 1, mark)
	assert.Len(t, p.prints, 1, "the print is not rolled back")
	assert.Equal(t, 1, logs.FilterMessage("failed to update print status").Len())

	photo, _ := c.Photo("a")
	assert.False(t, photo.Printed)
}

func TestDeletePhoto_Declined(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	c := New(s, &fakePresenter{})
	require.NoError(t, c.Refresh(context.Background()))

	var prompts []string
	require.NoError(t, c.DeletePhoto(context.Background(), "a", confirmWith(false, &prompts)))
	require.NoError(t, c.DeletePhoto(context.Background(), "a", nil))

	assert.Equal(t, []string{DeletePrompt}, prompts)
	_, _, del := s.calls()
	assert.Zero(t, del)
	assert.Equal(t, []string{"b", "a"}, photoIDs(c.Records()))
}

func TestDeletePhoto_UnknownIDSkipsConfirmation(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	c := New(s, &fakePresenter{})
	require.NoError(t, c.Refresh(context.Background()))

	var prompts []string
	require.NoError(t, c.DeletePhoto(context.Background(), "zzz", confirmWith(true, &prompts)))
	assert.Empty(t, prompts)
	_, _, del := s.calls()
	assert.Zero(t, del)
}

func TestDeletePhoto_Confirmed(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.DeletePhoto(context.Background(), "b", confirmWith(true, nil)))

	list, _, del := s.calls()
	assert.Equal(t, 1, del)
	assert.Equal(t, 2, list)
	assert.Equal(t, []string{"a"}, photoIDs(c.Records()))
	assert.Equal(t, []string{"a"}, photoIDs(p.lastView().Photos))
}

func TestDeletePhoto_Failure(t *testing.T) {
	s := &fakeStore{photos: twoPhotos(), deleteErr: errors.New("forbidden")}
	c := New(s, &fakePresenter{})
	require.NoError(t, c.Refresh(context.Background()))

	err := c.DeletePhoto(context.Background(), "b", confirmWith(true, nil))
	assert.True(t, store.IsStoreError(err))

	list, _, del := s.calls()
	assert.Equal(t, 1, del)
	assert.Equal(t, 1, list)
	assert.Equal(t, []string{"b", "a"}, photoIDs(c.Records()))
}

func TestScenario_UnprintedBecomesEmpty(t *testing.T) {
	s := &fakeStore{photos: []model.Photo{
		{ID: "a", Printed: false, CreatedAt: t0.Add(time.Minute)},
		{ID: "b", Printed: true, CreatedAt: t0},
	}}
	p := &fakePresenter{}
	c := New(s, p)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	c.SetFilter(model.FilterUnprinted)
	assert.Equal(t, []string{"a"}, photoIDs(c.View().Photos))

	require.NoError(t, c.MarkPrinted(ctx, "a"))
	require.NoError(t, c.Refresh(ctx))

	records := c.Records()
	assert.Equal(t, []string{"a", "b"}, photoIDs(records))
	assert.True(t, records[0].Printed)
	assert.True(t, records[1].Printed)

	view := c.View()
	assert.Empty(t, view.Photos)
	assert.True(t, view.Empty())
	assert.True(t, p.lastView().Empty())
}

type unsupportedAction struct{}

func (unsupportedAction) action() {}

func TestHandle(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, RefreshRequested{}))
	require.NoError(t, c.Handle(ctx, FilterSelected{Filter: model.FilterPrinted}))
	assert.Equal(t, model.FilterPrinted, c.Filter())

	require.NoError(t, c.Handle(ctx, PrintRequested{ID: "a"}))
	assert.Len(t, p.prints, 1)

	require.NoError(t, c.Handle(ctx, DeleteRequested{ID: "b", Confirmer: confirmWith(true, nil)}))
	assert.Equal(t, []string{"a"}, photoIDs(c.Records()))

	assert.Error(t, c.Handle(ctx, unsupportedAction{}))
}

func TestRefresh_LastResolvedWins(t *testing.T) {
	older := []model.Photo{{ID: "old"}}
	newer := []model.Photo{{ID: "new"}}

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int
	var mu sync.Mutex

	s := &fakeStore{}
	s.listFunc = func(ctx context.Context) ([]model.Photo, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			return older, nil
		}
		return newer, nil
	}
	p := &fakePresenter{}
	c := New(s, p)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Refresh(context.Background()))
	}()
	<-firstStarted

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"new"}, photoIDs(c.Records()))

	close(releaseFirst)
	wg.Wait()

	assert.Equal(t, []string{"old"}, photoIDs(c.Records()), "the refresh that completes last wins")
	assert.Equal(t, []string{"old"}, photoIDs(p.lastView().Photos))
}

func TestPolling(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	p := &fakePresenter{}
	c := New(s, p, WithPollInterval(10*time.Millisecond))

	c.Start(context.Background())
	c.Start(context.Background())
	assert.True(t, c.Polling())

	assert.Eventually(t, func() bool {
		list, _, _ := s.calls()
		return list >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"b", "a"}, photoIDs(c.Records()))

	c.Stop()
	c.Stop()
	assert.False(t, c.Polling())

	list, _, _ := s.calls()
	time.Sleep(50 * time.Millisecond)
	after, _, _ := s.calls()
	assert.Equal(t, list, after, "no refreshes after Stop")
}

func TestPolling_StopWaitsForInflightRefresh(t *testing.T) {
	log, logs := newObservedLogger()
	entered := make(chan struct{}, 1)
	s := &fakeStore{}
	s.listFunc = func(ctx context.Context) ([]model.Photo, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, &store.StoreError{Op: store.OpList, Err: ctx.Err()}
	}
	c := New(s, &fakePresenter{}, WithPollInterval(5*time.Millisecond), WithLogger(log))

	c.Start(context.Background())
	<-entered
	c.Stop()

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len(), "cancelled refreshes are not reported as failures")
}

func TestPolling_ParentContextCancel(t *testing.T) {
	c := New(&fakeStore{}, &fakePresenter{}, WithPollInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()
	c.Stop()
}

func TestPolling_RestartsAfterParentCancel(t *testing.T) {
	s := &fakeStore{photos: twoPhotos()}
	c := New(s, &fakePresenter{}, WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	require.True(t, c.Polling())

	cancel()
	assert.Eventually(t, func() bool { return !c.Polling() }, time.Second, time.Millisecond,
		"a loop whose parent context ended is not reported as running")

	c.Start(context.Background())
	defer c.Stop()
	assert.True(t, c.Polling())

	before, _, _ := s.calls()
	assert.Eventually(t, func() bool {
		list, _, _ := s.calls()
		return list > before
	}, 2*time.Second, 5*time.Millisecond, "the restarted loop refreshes again")
}
