package classification

import (
	"context"
	"strings"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/urlnorm"
)

// =============================================================================
// Static Fallback Classifier
// =============================================================================

type fallbackEntry struct {
	category   string
	confidence float64
}

// FallbackClassifier is the cascade's terminal stage: a built-in domain
// table at low confidence, with "uncategorized" as the floor. It always
// returns a result.
type FallbackClassifier struct {
	domains map[string]fallbackEntry
}

// NewFallbackClassifier creates the static-table classifier.
func NewFallbackClassifier() *FallbackClassifier {
	return &FallbackClassifier{domains: fallbackDomains}
}

// Name returns the classifier name.
func (c *FallbackClassifier) Name() string {
	return "fallback"
}

// Stage returns the cascade stage number.
func (c *FallbackClassifier) Stage() int {
	return 4
}

// Classify looks the domain up in the static table; unknown domains and
// unparseable URLs become "uncategorized" at the floor confidence.
func (c *FallbackClassifier) Classify(ctx context.Context, tctx *domain.TabContext) (*domain.ClassificationResult, error) {
	key := urlnorm.Domain(tctx.Tab.URL)
	if key == "" {
		return &domain.ClassificationResult{
			Category:   domain.CategoryUncategorized,
			Confidence: ConfidenceUncategorized,
			Source:     domain.SourceFallback,
			Reasoning:  "unparseable URL",
		}, nil
	}

	if entry, ok := c.lookup(key); ok {
		return &domain.ClassificationResult{
			Category:   entry.category,
			Confidence: entry.confidence,
			Source:     domain.SourceFallback,
			Reasoning:  "static table entry for " + key,
		}, nil
	}

	return &domain.ClassificationResult{
		Category:   domain.CategoryUncategorized,
		Confidence: ConfidenceUncategorized,
		Source:     domain.SourceFallback,
		Reasoning:  "no static entry for " + key,
	}, nil
}

// lookup resolves a domain directly, then by parent-domain suffix.
func (c *FallbackClassifier) lookup(key string) (fallbackEntry, bool) {
	if entry, ok := c.domains[key]; ok {
		return entry, true
	}
	for parent, entry := range c.domains {
		if strings.HasSuffix(key, "."+parent) {
			return entry, true
		}
	}
	return fallbackEntry{}, false
}

// fallbackDomains is the built-in last-resort table. Confidences stay in the
// 0.30-0.40 band so any learned or heuristic signal outranks them.
var fallbackDomains = map[string]fallbackEntry{
	// === Development ===
	"github.com":            {category: "development", confidence: 0.40},
	"gitlab.com":            {category: "development", confidence: 0.40},
	"bitbucket.org":         {category: "development", confidence: 0.40},
	"stackoverflow.com":     {category: "development", confidence: 0.40},
	"developer.mozilla.org": {category: "development", confidence: 0.38},
	"npmjs.com":             {category: "development", confidence: 0.38},
	"pypi.org":              {category: "development", confidence: 0.38},
	"go.dev":                {category: "development", confidence: 0.38},
	"docker.com":            {category: "development", confidence: 0.35},
	"vercel.com":            {category: "development", confidence: 0.35},
	"netlify.com":           {category: "development", confidence: 0.35},

	// === Work ===
	"docs.google.com":   {category: "work", confidence: 0.38},
	"sheets.google.com": {category: "work", confidence: 0.38},
	"slides.google.com": {category: "work", confidence: 0.38},
	"notion.so":         {category: "work", confidence: 0.38},
	"atlassian.net":     {category: "work", confidence: 0.38},
	"linear.app":        {category: "work", confidence: 0.38},
	"asana.com":         {category: "work", confidence: 0.36},
	"trello.com":        {category: "work", confidence: 0.36},
	"slack.com":         {category: "work", confidence: 0.36},
	"zoom.us":           {category: "work", confidence: 0.35},
	"figma.com":         {category: "work", confidence: 0.35},

	// === Social ===
	"facebook.com":  {category: "social", confidence: 0.40},
	"instagram.com": {category: "social", confidence: 0.40},
	"twitter.com":   {category: "social", confidence: 0.40},
	"x.com":         {category: "social", confidence: 0.40},
	"reddit.com":    {category: "social", confidence: 0.38},
	"linkedin.com":  {category: "social", confidence: 0.38},
	"tiktok.com":    {category: "social", confidence: 0.38},
	"discord.com":   {category: "social", confidence: 0.35},

	// === Entertainment ===
	"youtube.com":      {category: "entertainment", confidence: 0.40},
	"netflix.com":      {category: "entertainment", confidence: 0.40},
	"twitch.tv":        {category: "entertainment", confidence: 0.40},
	"spotify.com":      {category: "entertainment", confidence: 0.38},
	"hulu.com":         {category: "entertainment", confidence: 0.38},
	"disneyplus.com":   {category: "entertainment", confidence: 0.38},
	"steampowered.com": {category: "entertainment", confidence: 0.35},

	// === Shopping ===
	"amazon.com":     {category: "shopping", confidence: 0.40},
	"ebay.com":       {category: "shopping", confidence: 0.40},
	"etsy.com":       {category: "shopping", confidence: 0.38},
	"aliexpress.com": {category: "shopping", confidence: 0.38},
	"walmart.com":    {category: "shopping", confidence: 0.36},
	"target.com":     {category: "shopping", confidence: 0.36},

	// === News ===
	"nytimes.com":          {category: "news", confidence: 0.40},
	"bbc.com":              {category: "news", confidence: 0.40},
	"cnn.com":              {category: "news", confidence: 0.38},
	"reuters.com":          {category: "news", confidence: 0.38},
	"theguardian.com":      {category: "news", confidence: 0.38},
	"bloomberg.com":        {category: "news", confidence: 0.36},
	"news.ycombinator.com": {category: "news", confidence: 0.36},

	// === Learning ===
	"wikipedia.org":   {category: "learning", confidence: 0.38},
	"coursera.org":    {category: "learning", confidence: 0.38},
	"udemy.com":       {category: "learning", confidence: 0.38},
	"khanacademy.org": {category: "learning", confidence: 0.38},
	"edx.org":         {category: "learning", confidence: 0.36},
	"duolingo.com":    {category: "learning", confidence: 0.35},
}
