package organize

import (
	"context"
	"sync"
	"testing"
	"time"

	"tabwise_server/core/domain"
	"tabwise_server/core/port/out"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeGateway struct {
	mu          sync.Mutex
	tabs        []domain.TabSnapshot
	nextGroupID int
	removed     []int
	ungrouped   [][]int
	createdURLs []string
	styled      map[int]out.GroupStyle

	// queryEntered/queryRelease make QueryTabs block for the busy test.
	queryEntered chan struct{}
	queryRelease chan struct{}
}

func newFakeGateway(tabs []domain.TabSnapshot) *fakeGateway {
	return &fakeGateway{
		tabs:        tabs,
		nextGroupID: 100,
		styled:      make(map[int]out.GroupStyle),
	}
}

func (g *fakeGateway) QueryTabs(ctx context.Context) ([]domain.TabSnapshot, error) {
	if g.queryEntered != nil {
		g.queryEntered <- struct{}{}
		<-g.queryRelease
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	snapshot := make([]domain.TabSnapshot, len(g.tabs))
	copy(snapshot, g.tabs)
	return snapshot, nil
}

func (g *fakeGateway) GroupTabs(ctx context.Context, tabIDs []int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextGroupID++
	id := g.nextGroupID
	for i := range g.tabs {
		for _, tid := range tabIDs {
			if g.tabs[i].ID == tid {
				g.tabs[i].GroupID = id
			}
		}
	}
	return id, nil
}

func (g *fakeGateway) UpdateGroup(ctx context.Context, groupID int, style out.GroupStyle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.styled[groupID] = style
	return nil
}

func (g *fakeGateway) UngroupTabs(ctx context.Context, tabIDs []int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ungrouped = append(g.ungrouped, append([]int(nil), tabIDs...))
	for i := range g.tabs {
		for _, tid := range tabIDs {
			if g.tabs[i].ID == tid {
				g.tabs[i].GroupID = 0
			}
		}
	}
	return nil
}

func (g *fakeGateway) RemoveTabs(ctx context.Context, tabIDs []int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removed = append(g.removed, tabIDs...)
	keep := g.tabs[:0]
	for _, tab := range g.tabs {
		closed := false
		for _, tid := range tabIDs {
			if tab.ID == tid {
				closed = true
			}
		}
		if !closed {
			keep = append(keep, tab)
		}
	}
	g.tabs = keep
	return nil
}

func (g *fakeGateway) CreateTab(ctx context.Context, url string, active bool) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createdURLs = append(g.createdURLs, url)
	id := 1000 + len(g.createdURLs)
	g.tabs = append(g.tabs, domain.TabSnapshot{ID: id, URL: url})
	return id, nil
}

type fakeCategoryRepo struct {
	categories []domain.Category
	mappings   []domain.CategoryMapping
}

func (r *fakeCategoryRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return r.categories, nil
}
func (r *fakeCategoryRepo) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	for i := range r.categories {
		if r.categories[i].ID == id {
			return &r.categories[i], nil
		}
	}
	return nil, nil
}
func (r *fakeCategoryRepo) CreateCategory(ctx context.Context, cat *domain.Category) error { return nil }
func (r *fakeCategoryRepo) UpdateCategory(ctx context.Context, cat *domain.Category) error { return nil }
func (r *fakeCategoryRepo) DeleteCategory(ctx context.Context, id string) error            { return nil }
func (r *fakeCategoryRepo) ListMappings(ctx context.Context) ([]domain.CategoryMapping, error) {
	return r.mappings, nil
}
func (r *fakeCategoryRepo) PutMapping(ctx context.Context, m *domain.CategoryMapping) error {
	return nil
}
func (r *fakeCategoryRepo) DeleteMapping(ctx context.Context, domainKey string) error { return nil }

type fakePatternRepo struct {
	store *domain.PatternStore
}

func (r *fakePatternRepo) Load(ctx context.Context) (*domain.PatternStore, error) {
	if r.store == nil {
		return domain.NewPatternStore(), nil
	}
	return r.store, nil
}
func (r *fakePatternRepo) Save(ctx context.Context, store *domain.PatternStore) error {
	r.store = store
	return nil
}

type fakeUndoRepo struct {
	state *domain.UndoState
}

func (r *fakeUndoRepo) Get(ctx context.Context) (*domain.UndoState, error) { return r.state, nil }
func (r *fakeUndoRepo) Put(ctx context.Context, state *domain.UndoState) error {
	r.state = state
	return nil
}
func (r *fakeUndoRepo) Clear(ctx context.Context) error {
	r.state = nil
	return nil
}

// =============================================================================
// Tests
// =============================================================================

func workCategories() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: []domain.Category{
			{ID: "work", Name: "Work", Color: "blue", Position: 0},
		},
		mappings: []domain.CategoryMapping{
			{Domain: "github.com", CategoryID: "work"},
		},
	}
}

func TestOrganizeFullRun(t *testing.T) {
	gateway := newFakeGateway([]domain.TabSnapshot{
		{ID: 1, URL: "https://example.com/a"},
		{ID: 2, URL: "https://example.com/a?utm_source=mail"},
		{ID: 3, URL: "https://github.com/golang/go/issues/1"},
		{ID: 4, URL: "https://github.com/golang/go/pull/2", GroupID: 7},
	})
	undoRepo := &fakeUndoRepo{}
	c := NewCoordinator(gateway, workCategories(), &fakePatternRepo{}, undoRepo, nil)

	result := c.Organize(context.Background(), domain.DefaultOrganizeConfig())

	if !result.Success {
		t.Fatalf("run failed: %q, errors %v", result.Message, result.Errors)
	}
	if result.ClosedDuplicates != 1 {
		t.Errorf("closed = %d, want 1", result.ClosedDuplicates)
	}
	if result.GroupsCreated != 1 {
		t.Errorf("groups created = %d, want 1", result.GroupsCreated)
	}
	if !result.CanUndo {
		t.Error("CanUndo not set after successful run")
	}
	if result.Message != "Created 1 groups, closed 1 duplicates" {
		t.Errorf("message = %q", result.Message)
	}

	// The surviving exact duplicate is the first tab; the second closed.
	if len(gateway.removed) != 1 || gateway.removed[0] != 2 {
		t.Errorf("removed = %v, want [2]", gateway.removed)
	}

	// Pre-existing group membership is dissolved before planning.
	if len(gateway.ungrouped) == 0 {
		t.Fatal("no ungroup call for previously grouped tab")
	}

	// The created group carries the category label and color.
	var style out.GroupStyle
	for _, s := range gateway.styled {
		style = s
	}
	if style.Title != "Work" || style.Color != domain.ColorBlue {
		t.Errorf("style = %+v, want Work/blue", style)
	}

	// Undo state recorded everything needed for reversal.
	if undoRepo.state == nil {
		t.Fatal("no undo state stored")
	}
	if len(undoRepo.state.CreatedGroupIDs) != 1 {
		t.Errorf("created group ids = %v, want one", undoRepo.state.CreatedGroupIDs)
	}
	if len(undoRepo.state.ClosedTabs) != 1 {
		t.Errorf("closed refs = %v, want one", undoRepo.state.ClosedTabs)
	}
}

func TestOrganizeBusyGuard(t *testing.T) {
	gateway := newFakeGateway([]domain.TabSnapshot{
		{ID: 1, URL: "https://example.com/a"},
	})
	gateway.queryEntered = make(chan struct{}, 4)
	gateway.queryRelease = make(chan struct{})
	c := NewCoordinator(gateway, workCategories(), &fakePatternRepo{}, &fakeUndoRepo{}, nil)

	done := make(chan *domain.ExecutionResult, 1)
	go func() {
		done <- c.Organize(context.Background(), domain.DefaultOrganizeConfig())
	}()

	// Wait until the first run holds the lock inside QueryTabs.
	<-gateway.queryEntered

	busy := c.Organize(context.Background(), domain.DefaultOrganizeConfig())
	if busy.Success {
		t.Error("concurrent organize must not succeed")
	}
	if busy.Message != BusyMessage {
		t.Errorf("message = %q, want %q", busy.Message, BusyMessage)
	}

	// Unblock the first run to completion.
	close(gateway.queryRelease)
	go func() {
		for range gateway.queryEntered {
		}
	}()
	select {
	case first := <-done:
		if !first.Success {
			t.Errorf("first run failed: %q", first.Message)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}
}

func TestUndoWithoutState(t *testing.T) {
	gateway := newFakeGateway(nil)
	c := NewCoordinator(gateway, workCategories(), &fakePatternRepo{}, &fakeUndoRepo{}, nil)

	result := c.Undo(context.Background())
	if result.Success {
		t.Error("undo without state must not succeed")
	}
	if result.Message != "No organize operation to undo" {
		t.Errorf("message = %q", result.Message)
	}
}

func TestUndoRestores(t *testing.T) {
	gateway := newFakeGateway([]domain.TabSnapshot{
		{ID: 3, URL: "https://github.com/golang/go/issues/1", GroupID: 101},
		{ID: 4, URL: "https://github.com/golang/go/pull/2", GroupID: 101},
		{ID: 5, URL: "https://example.com/other"},
	})
	undoRepo := &fakeUndoRepo{
		state: &domain.UndoState{
			ID:              "undo-1",
			Timestamp:       time.Now(),
			CreatedGroupIDs: []int{101},
			ClosedTabs:      []domain.ClosedTabRef{{URL: "https://example.com/closed"}},
		},
	}
	c := NewCoordinator(gateway, workCategories(), &fakePatternRepo{}, undoRepo, nil)

	result := c.Undo(context.Background())
	if !result.Success {
		t.Fatalf("undo failed: %q", result.Message)
	}
	if result.Message != "Restored 2 tabs, reopened 1 closed tabs" {
		t.Errorf("message = %q", result.Message)
	}
	if len(gateway.createdURLs) != 1 || gateway.createdURLs[0] != "https://example.com/closed" {
		t.Errorf("reopened = %v", gateway.createdURLs)
	}
	if undoRepo.state != nil {
		t.Error("undo state not cleared")
	}

	// Grouped tabs created by the run are dissolved; the bystander is not.
	for _, tab := range gateway.tabs {
		if tab.ID == 3 || tab.ID == 4 {
			if tab.GroupID != 0 {
				t.Errorf("tab %d still grouped", tab.ID)
			}
		}
	}

	// A second undo is a no-op failure.
	again := c.Undo(context.Background())
	if again.Success || again.Message != "No organize operation to undo" {
		t.Errorf("second undo = %+v", again)
	}
}

func TestUngroupBatching(t *testing.T) {
	tabs := make([]domain.TabSnapshot, 25)
	ids := make([]int, 25)
	for i := range tabs {
		tabs[i] = domain.TabSnapshot{ID: i + 1, GroupID: 9}
		ids[i] = i + 1
	}
	gateway := newFakeGateway(tabs)
	c := NewCoordinator(gateway, workCategories(), &fakePatternRepo{}, &fakeUndoRepo{}, nil)

	c.ungroupBatched(context.Background(), ids)

	if len(gateway.ungrouped) != 3 {
		t.Fatalf("got %d batches, want 3", len(gateway.ungrouped))
	}
	for i, batch := range gateway.ungrouped[:2] {
		if len(batch) != UngroupBatchSize {
			t.Errorf("batch %d size = %d, want %d", i, len(batch), UngroupBatchSize)
		}
	}
	if len(gateway.ungrouped[2]) != 5 {
		t.Errorf("last batch size = %d, want 5", len(gateway.ungrouped[2]))
	}
}

func TestPreviewDoesNotTouchTabs(t *testing.T) {
	gateway := newFakeGateway([]domain.TabSnapshot{
		{ID: 1, URL: "https://example.com/a"},
		{ID: 2, URL: "https://example.com/a"},
		{ID: 3, URL: "https://github.com/golang/go/issues/1"},
		{ID: 4, URL: "https://github.com/golang/go/pull/2"},
	})
	c := NewCoordinator(gateway, workCategories(), &fakePatternRepo{}, &fakeUndoRepo{}, nil)

	plan, dups, err := c.Preview(context.Background(), domain.DefaultOrganizeConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(dups) != 1 {
		t.Errorf("got %d duplicate groups, want 1", len(dups))
	}
	if len(plan.Groups) == 0 {
		t.Error("empty plan")
	}
	if len(gateway.removed) != 0 || len(gateway.ungrouped) != 0 || len(gateway.styled) != 0 {
		t.Error("preview mutated tabs")
	}
}
