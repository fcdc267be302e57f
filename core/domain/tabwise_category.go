package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Group Colors (closed set)
// =============================================================================

// GroupColor is the closed set of colors the host tab API accepts for a tab
// group. Anything user-supplied is normalized through ParseGroupColor before
// it reaches the execution boundary.
type GroupColor string

const (
	ColorGrey   GroupColor = "grey"
	ColorBlue   GroupColor = "blue"
	ColorRed    GroupColor = "red"
	ColorYellow GroupColor = "yellow"
	ColorGreen  GroupColor = "green"
	ColorPink   GroupColor = "pink"
	ColorPurple GroupColor = "purple"
	ColorCyan   GroupColor = "cyan"
	ColorOrange GroupColor = "orange"
)

// ParseGroupColor maps a loose color string onto the closed set. Unknown
// values fall back to grey rather than leaking through to the host API.
func ParseGroupColor(s string) GroupColor {
	switch GroupColor(strings.ToLower(strings.TrimSpace(s))) {
	case ColorBlue, ColorRed, ColorYellow, ColorGreen, ColorPink, ColorPurple, ColorCyan, ColorOrange, ColorGrey:
		return GroupColor(strings.ToLower(strings.TrimSpace(s)))
	case "gray":
		return ColorGrey
	default:
		return ColorGrey
	}
}

// =============================================================================
// Categories
// =============================================================================

// Category is a user-visible label with color, domains and keywords used to
// group tabs. Categories are owned by the configuration store; the engine
// only ever reads them.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Domains   []string  `json:"domains"`
	Keywords  []string  `json:"keywords"`
	IsDefault bool      `json:"is_default"`
	IsSystem  bool      `json:"is_system"`
	Position  int       `json:"position"` // persisted order index
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Initialism returns a short label for compact group titles ("Work Stuff"
// -> "WS", single word -> first two letters uppercased).
func (c *Category) Initialism() string {
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) == 1 {
		r := []rune(fields[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strings.ToUpper(string([]rune(f)[0])))
	}
	return b.String()
}

// CategoryUncategorized is the reserved key used when no classifier produced
// a category for a tab.
const CategoryUncategorized = "uncategorized"

// CategoryMapping is an explicit domain -> category override set by the
// user. It is the highest-priority classification signal.
type CategoryMapping struct {
	Domain     string    `json:"domain"`
	CategoryID string    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}
