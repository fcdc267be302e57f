// Package organize turns per-tab classifications and detector clusters into
// an executable grouping plan, and runs that plan against the host tab API
// under a single-flight mutex.
package organize

import (
	"sort"
	"strings"
	"time"

	"tabwise_server/core/domain"
	"tabwise_server/core/service/detect"
)

// PlanInput is everything the planner needs for one merge.
type PlanInput struct {
	Tabs            []domain.TabSnapshot
	Classifications map[int]*domain.ClassificationResult
	Categories      []domain.Category // persisted order
	Clusters        []detect.CandidateGroup
	Config          domain.SmartOrganizeConfig

	// CompactLabels switches category labels to their initialisms.
	CompactLabels bool
}

// Planner merges classification output and detector clusters into a strict
// partition of tab ids.
type Planner struct{}

// NewPlanner creates a planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan builds the grouping plan. Merge order fixes precedence: category
// groups in persisted category order first, then project clusters in
// discovery order, then the remaining clusters in detector order. A tab id
// assigned by an earlier step is dropped from every later group, so no id
// ever appears twice.
func (p *Planner) Plan(in PlanInput) *domain.GroupingPlan {
	plan := &domain.GroupingPlan{}
	assigned := make(map[int]bool)
	pinned := make(map[int]bool)
	for _, tab := range in.Tabs {
		if tab.Pinned {
			pinned[tab.ID] = true
		}
	}

	minSize := in.Config.MinGroupSize
	if minSize < 1 {
		minSize = domain.DefaultOrganizeConfig().MinGroupSize
	}
	if in.Config.GroupSingleTabs {
		minSize = 1
	}

	for _, cat := range orderedCategories(in.Categories) {
		ids := p.categoryMembers(in, cat, assigned)
		if len(ids) < minSize {
			continue
		}
		p.orderIDs(ids, in)
		for _, id := range ids {
			assigned[id] = true
		}
		plan.Groups = append(plan.Groups, domain.PlannedGroup{
			Label:  categoryLabel(&cat, in.CompactLabels),
			Color:  domain.ParseGroupColor(cat.Color),
			TabIDs: ids,
			Source: domain.GroupSourceCategory,
		})
	}

	if !in.Config.EnableSmartGroups {
		return plan
	}

	// Clusters arrive in detector order with project first; a single pass
	// keeps both project discovery order and detector priority. Pinned tabs
	// stay out of cluster groups the same as category groups.
	for _, cluster := range in.Clusters {
		ids := make([]int, 0, len(cluster.TabIDs))
		for _, id := range cluster.TabIDs {
			if !assigned[id] && !pinned[id] {
				ids = append(ids, id)
			}
		}
		if len(ids) < detect.MinClusterSize {
			continue
		}
		p.orderIDs(ids, in)
		for _, id := range ids {
			assigned[id] = true
		}
		source := domain.GroupSourceCluster
		if cluster.Detector == detect.DetectorProject {
			source = domain.GroupSourceProject
		}
		plan.Groups = append(plan.Groups, domain.PlannedGroup{
			Label:          cluster.Label,
			Color:          cluster.Color,
			TabIDs:         ids,
			Source:         source,
			SourceDetector: cluster.Detector,
		})
	}
	return plan
}

// categoryMembers collects unassigned, unpinned tabs classified into the
// category, matching classification category names case-insensitively
// against both the category id and its display name.
func (p *Planner) categoryMembers(in PlanInput, cat domain.Category, assigned map[int]bool) []int {
	var ids []int
	for _, tab := range in.Tabs {
		if assigned[tab.ID] || tab.Pinned {
			continue
		}
		result := in.Classifications[tab.ID]
		if result == nil {
			continue
		}
		if categoryMatches(&cat, result.Category) {
			ids = append(ids, tab.ID)
		}
	}
	return ids
}

// orderIDs sorts group members: most recently accessed first when
// PrioritizeRecent is set, ascending tab id otherwise.
func (p *Planner) orderIDs(ids []int, in PlanInput) {
	if !in.Config.PrioritizeRecent {
		sort.Ints(ids)
		return
	}
	access := make(map[int]time.Time, len(in.Tabs))
	for _, tab := range in.Tabs {
		access[tab.ID] = tab.LastAccessed
	}
	sort.Slice(ids, func(i, j int) bool {
		if !access[ids[i]].Equal(access[ids[j]]) {
			return access[ids[i]].After(access[ids[j]])
		}
		return ids[i] < ids[j]
	})
}

// orderedCategories returns categories in persisted position order with
// system and uncategorized entries moved to the end.
func orderedCategories(cats []domain.Category) []domain.Category {
	out := make([]domain.Category, len(cats))
	copy(out, cats)
	sort.SliceStable(out, func(i, j int) bool {
		if lastRank(&out[i]) != lastRank(&out[j]) {
			return lastRank(&out[i]) < lastRank(&out[j])
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func lastRank(c *domain.Category) int {
	if strings.EqualFold(c.Name, domain.CategoryUncategorized) || c.ID == domain.CategoryUncategorized {
		return 2
	}
	if c.IsSystem {
		return 1
	}
	return 0
}

func categoryMatches(cat *domain.Category, name string) bool {
	return strings.EqualFold(cat.ID, name) || strings.EqualFold(cat.Name, name)
}

func categoryLabel(cat *domain.Category, compact bool) string {
	if compact {
		if ini := cat.Initialism(); ini != "" {
			return ini
		}
	}
	return cat.Name
}
