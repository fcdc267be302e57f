package organize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tabwise_server/core/domain"
	"tabwise_server/core/port/out"
	"tabwise_server/core/service/classification"
	"tabwise_server/core/service/dedup"
	"tabwise_server/core/service/detect"
	"tabwise_server/pkg/logger"

	"github.com/google/uuid"
)

// UngroupBatchSize chunks ungroup calls to respect host API batch limits.
const UngroupBatchSize = 10

// BusyMessage is returned when a second run is attempted while one holds
// the coordinator lock.
const BusyMessage = "Organize already running"

// =============================================================================
// Coordinator - mutex-guarded organize / undo execution
// =============================================================================

// Coordinator runs grouping plans against the host tab API. One run at a
// time: a second organize issued while one is running gets a busy result
// with no side effects.
type Coordinator struct {
	gateway      out.TabGateway
	categoryRepo out.CategoryRepository
	patternRepo  out.PatternRepository
	undoRepo     out.UndoRepository
	reportRepo   out.ReportRepository // optional

	dedup    *dedup.Detector
	registry *detect.Registry
	planner  *Planner

	mu sync.Mutex // held for the whole of one organize or undo run
}

// NewCoordinator wires the coordinator with its outbound ports. reportRepo
// may be nil.
func NewCoordinator(
	gateway out.TabGateway,
	categoryRepo out.CategoryRepository,
	patternRepo out.PatternRepository,
	undoRepo out.UndoRepository,
	reportRepo out.ReportRepository,
) *Coordinator {
	return &Coordinator{
		gateway:      gateway,
		categoryRepo: categoryRepo,
		patternRepo:  patternRepo,
		undoRepo:     undoRepo,
		reportRepo:   reportRepo,
		dedup:        dedup.NewDetector(),
		registry:     detect.NewDefaultRegistry(),
		planner:      NewPlanner(),
	}
}

// Organize executes one full organize run. Partial failures accumulate in
// the result's Errors without aborting the run; only a busy coordinator or
// an unrecoverable step flips Success to false.
func (c *Coordinator) Organize(ctx context.Context, cfg domain.SmartOrganizeConfig) (result *domain.ExecutionResult) {
	if !c.mu.TryLock() {
		logger.Warn("[Coordinator.Organize] rejected: already running")
		return &domain.ExecutionResult{
			Success: false,
			Message: BusyMessage,
		}
	}
	defer c.mu.Unlock()

	started := time.Now()
	result = &domain.ExecutionResult{}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Coordinator.Organize] panic recovered: %v", r)
			result = &domain.ExecutionResult{
				Success: false,
				Message: fmt.Sprintf("organize aborted: %v", r),
			}
		}
	}()

	logger.Info("[Coordinator.Organize] starting run (closeDuplicates=%v minGroupSize=%d)",
		cfg.CloseDuplicates, cfg.MinGroupSize)

	// 1. Close duplicates first so they never reach the planner.
	var closedRefs []domain.ClosedTabRef
	if cfg.CloseDuplicates {
		refs, closed, err := c.closeDuplicates(ctx)
		if err != nil {
			result.Errors = append(result.Errors, "duplicate close: "+err.Error())
		}
		closedRefs = refs
		result.ClosedDuplicates = closed
	}

	// 2. Re-snapshot after closures; record the prior grouping for undo.
	tabs, err := c.gateway.QueryTabs(ctx)
	if err != nil {
		result.Success = false
		result.Message = "failed to query tabs: " + err.Error()
		return result
	}
	var previouslyGrouped []int
	for _, tab := range tabs {
		if tab.GroupID != 0 {
			previouslyGrouped = append(previouslyGrouped, tab.ID)
		}
	}

	// 3. Ungroup everything in batches. A failed batch is skipped, not
	// fatal; the next batch still runs.
	c.ungroupBatched(ctx, previouslyGrouped)

	// 4. Classify, detect, plan.
	plan, err := c.buildPlan(ctx, tabs, cfg)
	if err != nil {
		result.Success = false
		result.Message = "failed to build plan: " + err.Error()
		return result
	}

	// 5. Create and style each group. Per-group failures are recorded and
	// the run continues.
	var createdGroupIDs []int
	for _, group := range plan.Groups {
		groupID, err := c.gateway.GroupTabs(ctx, group.TabIDs)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("group %q: %v", group.Label, err))
			continue
		}
		style := out.GroupStyle{Title: group.Label, Color: group.Color}
		if err := c.gateway.UpdateGroup(ctx, groupID, style); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("style %q: %v", group.Label, err))
		}
		createdGroupIDs = append(createdGroupIDs, groupID)
		result.GroupsCreated++
	}

	// 6. Replace the undo state.
	undo := &domain.UndoState{
		ID:              uuid.NewString(),
		Timestamp:       time.Now(),
		CreatedGroupIDs: createdGroupIDs,
		UngroupedTabIDs: previouslyGrouped,
		ClosedTabs:      closedRefs,
	}
	if err := c.undoRepo.Put(ctx, undo); err != nil {
		result.Errors = append(result.Errors, "undo state: "+err.Error())
	} else {
		result.CanUndo = true
	}

	result.Success = true
	result.Message = fmt.Sprintf("Created %d groups, closed %d duplicates",
		result.GroupsCreated, result.ClosedDuplicates)

	c.archiveReport(ctx, started, len(tabs), plan, cfg, result)

	logger.WithDuration(time.Since(started)).
		Info("[Coordinator.Organize] done: %d groups, %d closed, %d errors",
			result.GroupsCreated, result.ClosedDuplicates, len(result.Errors))
	return result
}

// Preview builds a grouping plan without touching the host. It does not
// take the run mutex.
func (c *Coordinator) Preview(ctx context.Context, cfg domain.SmartOrganizeConfig) (*domain.GroupingPlan, []domain.DuplicateGroup, error) {
	tabs, err := c.gateway.QueryTabs(ctx)
	if err != nil {
		return nil, nil, err
	}
	var dups []domain.DuplicateGroup
	if cfg.CloseDuplicates {
		dups = c.dedup.Detect(tabs)
	}
	plan, err := c.buildPlan(ctx, tabs, cfg)
	if err != nil {
		return nil, nil, err
	}
	return plan, dups, nil
}

// Undo reverses the most recent organize run: dissolves the groups it
// created and reopens the tabs it closed. A second undo is a no-op failure.
func (c *Coordinator) Undo(ctx context.Context) (result *domain.ExecutionResult) {
	if !c.mu.TryLock() {
		return &domain.ExecutionResult{
			Success: false,
			Message: BusyMessage,
		}
	}
	defer c.mu.Unlock()

	result = &domain.ExecutionResult{}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Coordinator.Undo] panic recovered: %v", r)
			result = &domain.ExecutionResult{
				Success: false,
				Message: fmt.Sprintf("undo aborted: %v", r),
			}
		}
	}()

	undo, err := c.undoRepo.Get(ctx)
	if err != nil {
		result.Message = "failed to load undo state: " + err.Error()
		return result
	}
	if undo == nil {
		result.Message = "No organize operation to undo"
		return result
	}

	tabs, err := c.gateway.QueryTabs(ctx)
	if err != nil {
		result.Message = "failed to query tabs: " + err.Error()
		return result
	}
	created := make(map[int]bool, len(undo.CreatedGroupIDs))
	for _, id := range undo.CreatedGroupIDs {
		created[id] = true
	}
	var grouped []int
	for _, tab := range tabs {
		if created[tab.GroupID] {
			grouped = append(grouped, tab.ID)
		}
	}
	c.ungroupBatched(ctx, grouped)

	for _, ref := range undo.ClosedTabs {
		if _, err := c.gateway.CreateTab(ctx, ref.URL, false); err != nil {
			result.Errors = append(result.Errors, "reopen "+ref.URL+": "+err.Error())
		}
	}

	if err := c.undoRepo.Clear(ctx); err != nil {
		result.Errors = append(result.Errors, "clear undo state: "+err.Error())
	}

	result.Success = true
	result.Message = fmt.Sprintf("Restored %d tabs, reopened %d closed tabs",
		len(grouped), len(undo.ClosedTabs))
	logger.Info("[Coordinator.Undo] done: %d ungrouped, %d reopened", len(grouped), len(undo.ClosedTabs))
	return result
}

// =============================================================================
// Steps
// =============================================================================

func (c *Coordinator) closeDuplicates(ctx context.Context) ([]domain.ClosedTabRef, int, error) {
	tabs, err := c.gateway.QueryTabs(ctx)
	if err != nil {
		return nil, 0, err
	}
	groups := c.dedup.Detect(tabs)
	if len(groups) == 0 {
		return nil, 0, nil
	}
	var refs []domain.ClosedTabRef
	var ids []int
	for _, g := range groups {
		for _, tab := range g.Close {
			ids = append(ids, tab.ID)
			refs = append(refs, domain.ClosedTabRef{URL: tab.URL, Title: tab.Title})
		}
	}
	if err := c.gateway.RemoveTabs(ctx, ids); err != nil {
		return nil, 0, err
	}
	return refs, len(ids), nil
}

func (c *Coordinator) ungroupBatched(ctx context.Context, ids []int) {
	for start := 0; start < len(ids); start += UngroupBatchSize {
		end := start + UngroupBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := c.gateway.UngroupTabs(ctx, ids[start:end]); err != nil {
			logger.Warn("[Coordinator] ungroup batch %d-%d failed: %v", start, end, err)
		}
	}
}

func (c *Coordinator) buildPlan(ctx context.Context, tabs []domain.TabSnapshot, cfg domain.SmartOrganizeConfig) (*domain.GroupingPlan, error) {
	categories, err := c.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	mappings, err := c.categoryRepo.ListMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	store, err := c.patternRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}

	mappingIndex := make(map[string]string, len(mappings))
	for _, m := range mappings {
		mappingIndex[m.Domain] = m.CategoryID
	}
	pipelineCfg := classification.DefaultPipelineConfig()
	pipelineCfg.RespectUserCategories = cfg.RespectUserCategories
	pipeline := classification.NewPipeline(&classification.PipelineDeps{
		Mappings:   mappingIndex,
		Patterns:   store,
		Categories: categories,
	}, pipelineCfg)
	results := pipeline.ClassifyAll(ctx, tabs, domain.TimeOfDayFor(time.Now()))

	var clusters []detect.CandidateGroup
	if cfg.EnableSmartGroups {
		clusters = c.registry.DetectAll(tabs, make(detect.ClaimSet))
	}

	return c.planner.Plan(PlanInput{
		Tabs:            tabs,
		Classifications: results,
		Categories:      categories,
		Clusters:        clusters,
		Config:          cfg,
	}), nil
}

// archiveReport stores the run record when a report repository is wired.
// Archive failures are logged, never surfaced.
func (c *Coordinator) archiveReport(ctx context.Context, started time.Time, tabCount int, plan *domain.GroupingPlan, cfg domain.SmartOrganizeConfig, result *domain.ExecutionResult) {
	if c.reportRepo == nil {
		return
	}
	report := &out.OrganizeReport{
		ID:               uuid.NewString(),
		StartedAt:        started,
		DurationMs:       time.Since(started).Milliseconds(),
		TabCount:         tabCount,
		GroupsCreated:    result.GroupsCreated,
		ClosedDuplicates: result.ClosedDuplicates,
		Success:          result.Success,
		Errors:           result.Errors,
		Groups:           plan.Groups,
		Config:           cfg,
	}
	if err := c.reportRepo.SaveReport(ctx, report); err != nil {
		logger.Warn("[Coordinator] report archive failed: %v", err)
	}
}
