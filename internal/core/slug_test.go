package core

import (
	"context"
	"regexp"
	"strings"
	"testing"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "DRAGONS", "dragons"},
		{"spaces to hyphens", "Hello World", "hello-world"},
		{"trim whitespace", "  hello world  ", "hello-world"},
		{"multiple spaces", "hello   world", "hello-world"},
		{"punctuation removal", "What's up, Doc?", "whats-up-doc"},
		{"hyphens kept", "server-side-swift", "server-side-swift"},
		{"consecutive hyphens collapsed", "slow--burn", "slow-burn"},
		{"leading and trailing hyphens trimmed", "--dragons--", "dragons"},
		{"numbers allowed", "Top 10 Posts", "top-10-posts"},
		{"unicode stripped", "café résumé", "caf-rsum"},
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"mixed case with numbers", "Vapor 4 Released!", "vapor-4-released"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSlug(tt.input)
			if result != tt.expected {
				t.Errorf("GenerateSlug(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGenerateSlugAlphabet(t *testing.T) {
	inputs := []string{
		"Hello, World!",
		"  --- leading junk ---  ",
		"TABS\tAND\nNEWLINES",
		"ümläut Über Alles",
		"a   b---c   d",
		"1234 !!! 5678",
	}

	valid := regexp.MustCompile(`^[a-z0-9-]*$`)
	for _, input := range inputs {
		slug := GenerateSlug(input)

		if !valid.MatchString(slug) {
			t.Errorf("GenerateSlug(%q) = %q contains characters outside [a-z0-9-]", input, slug)
		}
		if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
			t.Errorf("GenerateSlug(%q) = %q has a leading or trailing hyphen", input, slug)
		}
		if strings.Contains(slug, "--") {
			t.Errorf("GenerateSlug(%q) = %q has consecutive hyphens", input, slug)
		}
	}
}

func TestGenerateUniqueSlug(t *testing.T) {
	existing := map[string]bool{}
	lookup := func(ctx context.Context, slug string) (bool, error) {
		return existing[slug], nil
	}

	first, err := GenerateUniqueSlug(context.Background(), "Hello World", lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "hello-world" {
		t.Fatalf("expected base slug on first use, got %q", first)
	}

	existing[first] = true

	second, err := GenerateUniqueSlug(context.Background(), "Hello World", lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second == first {
		t.Fatalf("expected a distinct slug for the second post, got %q twice", second)
	}
	if !regexp.MustCompile(`^hello-world-\d+$`).MatchString(second) {
		t.Errorf("expected suffixed slug matching hello-world-<suffix>, got %q", second)
	}
	if existing[second] {
		t.Errorf("suffixed slug %q already present in the lookup", second)
	}
}

func TestGenerateUniqueSlugPropagatesLookupError(t *testing.T) {
	wantErr := context.DeadlineExceeded
	lookup := func(ctx context.Context, slug string) (bool, error) {
		return false, wantErr
	}

	_, err := GenerateUniqueSlug(context.Background(), "Hello World", lookup)
	if err == nil {
		t.Fatal("expected the lookup error to surface")
	}
}
