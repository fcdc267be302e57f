package urlnorm

import "testing"

func TestDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain host", url: "https://github.com/golang/go", want: "github.com"},
		{name: "www stripped", url: "https://www.example.com/page", want: "example.com"},
		{name: "uppercase host lowered", url: "https://GitHub.COM/owner", want: "github.com"},
		{name: "port dropped", url: "http://localhost:8080/x", want: "localhost"},
		{name: "no host", url: "not a url", want: ""},
		{name: "empty", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Domain(tt.url); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{
			name: "tracking params stripped",
			a:    "https://example.com/article?utm_source=x&utm_medium=email",
			b:    "https://example.com/article",
			same: true,
		},
		{
			name: "fragment ignored",
			a:    "https://example.com/page#section-2",
			b:    "https://example.com/page",
			same: true,
		},
		{
			name: "trailing slash ignored",
			a:    "https://example.com/docs/",
			b:    "https://example.com/docs",
			same: true,
		},
		{
			name: "scheme collapsed",
			a:    "http://example.com/page",
			b:    "https://example.com/page",
			same: true,
		},
		{
			name: "www collapsed",
			a:    "https://www.example.com/page",
			b:    "https://example.com/page",
			same: true,
		},
		{
			name: "meaningful query preserved",
			a:    "https://example.com/search?q=golang",
			b:    "https://example.com/search?q=rust",
			same: false,
		},
		{
			name: "different paths",
			a:    "https://example.com/a",
			b:    "https://example.com/b",
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ca, cb := Canonical(tt.a), Canonical(tt.b)
			if (ca == cb) != tt.same {
				t.Errorf("Canonical(%q) = %q, Canonical(%q) = %q, want same=%v",
					tt.a, ca, tt.b, cb, tt.same)
			}
		})
	}
}

func TestCanonicalUnparseable(t *testing.T) {
	// Unparseable input must still yield a stable key.
	if got := Canonical("::bad::/"); got != Canonical("::bad::") {
		t.Errorf("unparseable input not stable: %q", got)
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Go 1.22 Release Notes - The Go Programming Language")
	for _, want := range []string{"go", "22", "release", "notes", "programming", "language"} {
		if !tokens[want] {
			t.Errorf("missing token %q in %v", want, tokens)
		}
	}
	// Single-character fragments are dropped.
	if tokens["1"] {
		t.Error("single-character token should be dropped")
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "kubernetes operator patterns", b: "kubernetes operator patterns", want: 1.0},
		{name: "disjoint", a: "cooking recipes", b: "quantum physics", want: 0.0},
		{name: "both empty", a: "", b: "", want: 0.0},
		{name: "one empty", a: "something", b: "", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("TitleSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	// Partial overlap sits strictly between 0 and 1.
	got := TitleSimilarity("kubernetes operator patterns", "kubernetes client patterns")
	if got <= 0 || got >= 1 {
		t.Errorf("partial overlap = %v, want in (0, 1)", got)
	}
}
