package domain

// UserPattern holds the learned statistics for one domain. Counts only ever
// grow; the store is loaded once per organize run and written back only by
// the learning entry point.
type UserPattern struct {
	Domain         string              `json:"domain"`
	CategoryCounts map[string]int      `json:"category_counts"`
	TimePatterns   map[TimeOfDay]int   `json:"time_patterns"`
	ContextDomains map[string][]string `json:"context_domains"` // category -> co-occurring domains
}

// ContextDomainCap bounds the co-occurrence list per category. The stored
// list is deduplicated and, past the cap, oldest entries are evicted.
const ContextDomainCap = 100

// NewUserPattern returns an empty pattern record for a domain.
func NewUserPattern(domain string) *UserPattern {
	return &UserPattern{
		Domain:         domain,
		CategoryCounts: make(map[string]int),
		TimePatterns:   make(map[TimeOfDay]int),
		ContextDomains: make(map[string][]string),
	}
}

// TotalCount returns the sum of all category counts for this domain.
func (p *UserPattern) TotalCount() int {
	total := 0
	for _, n := range p.CategoryCounts {
		total += n
	}
	return total
}

// RecordContext appends session domains to the co-occurrence list for a
// category, deduplicating and evicting the oldest entries past the cap.
func (p *UserPattern) RecordContext(category string, sessionDomains []string) {
	existing := p.ContextDomains[category]
	seen := make(map[string]bool, len(existing))
	for _, d := range existing {
		seen[d] = true
	}
	for _, d := range sessionDomains {
		if d == "" || d == p.Domain || seen[d] {
			continue
		}
		existing = append(existing, d)
		seen[d] = true
	}
	if len(existing) > ContextDomainCap {
		existing = existing[len(existing)-ContextDomainCap:]
	}
	p.ContextDomains[category] = existing
}

// PatternStore is the full persisted learning state: per-domain patterns
// plus the per-category membership history (which domains the user has ever
// filed under a category, deduplicated).
type PatternStore struct {
	Patterns        map[string]*UserPattern `json:"patterns"`         // keyed by domain
	CategoryDomains map[string][]string     `json:"category_domains"` // category -> member domains
}

// NewPatternStore returns an empty store.
func NewPatternStore() *PatternStore {
	return &PatternStore{
		Patterns:        make(map[string]*UserPattern),
		CategoryDomains: make(map[string][]string),
	}
}

// Pattern returns the record for a domain, creating it on first use.
func (s *PatternStore) Pattern(domain string) *UserPattern {
	if p, ok := s.Patterns[domain]; ok {
		return p
	}
	p := NewUserPattern(domain)
	s.Patterns[domain] = p
	return p
}

// RecordMembership adds a domain to a category's membership history,
// keeping the list deduplicated.
func (s *PatternStore) RecordMembership(category, domain string) {
	for _, d := range s.CategoryDomains[category] {
		if d == domain {
			return
		}
	}
	s.CategoryDomains[category] = append(s.CategoryDomains[category], domain)
}
