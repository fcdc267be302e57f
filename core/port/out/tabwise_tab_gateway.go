package out

import (
	"context"

	"tabwise_server/core/domain"
)

// GroupStyle carries the label/color/collapsed update applied to a tab group
// right after it is created.
type GroupStyle struct {
	Title     string            `json:"title"`
	Color     domain.GroupColor `json:"color"`
	Collapsed bool              `json:"collapsed"`
}

// TabGateway is the outbound port for the host tab-management API. All calls
// target the current window; the adapter decides how they reach the browser.
type TabGateway interface {
	// QueryTabs returns a snapshot of all tabs in the current window.
	QueryTabs(ctx context.Context) ([]domain.TabSnapshot, error)

	// GroupTabs places the given tabs into a new group and returns its id.
	GroupTabs(ctx context.Context, tabIDs []int) (int, error)

	// UpdateGroup sets a group's label, color and collapsed state.
	UpdateGroup(ctx context.Context, groupID int, style GroupStyle) error

	// UngroupTabs removes the given tabs from whatever groups they are in.
	UngroupTabs(ctx context.Context, tabIDs []int) error

	// RemoveTabs closes the given tabs.
	RemoveTabs(ctx context.Context, tabIDs []int) error

	// CreateTab opens a URL in a new tab. The tab is not focused unless
	// active is set.
	CreateTab(ctx context.Context, url string, active bool) (int, error)
}
