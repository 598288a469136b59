package core

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/mdobak/go-xerrors"
)

// SlugExistsFunc reports whether a slug is already taken.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// GenerateSlug normalizes a title or name into a URL-safe slug: lowercase,
// trimmed, restricted to [a-z0-9-], words joined by single hyphens, runs of
// hyphens collapsed, no leading or trailing hyphen. The result is empty when
// the input has no retainable characters.
func GenerateSlug(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))

	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == ' ' {
			b.WriteRune(r)
		}
	}

	slug = strings.Join(strings.Fields(b.String()), "-")

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return strings.Trim(slug, "-")
}

// GenerateUniqueSlug computes the base slug for the input and returns it when
// no existing entity holds it. On a collision it appends a random numeric
// suffix and returns without re-checking the suffixed candidate, so the
// uniqueness guarantee is best-effort: a clash on the suffixed form needs
// both a base-slug collision and the same random draw. The function only
// queries, it never writes.
func GenerateUniqueSlug(ctx context.Context, input string, exists SlugExistsFunc) (string, error) {
	slug := GenerateSlug(input)

	taken, err := exists(ctx, slug)
	if err != nil {
		return "", xerrors.New(err)
	}
	if !taken {
		return slug, nil
	}

	return fmt.Sprintf("%s-%d", slug, rand.Intn(1_000_000_000)), nil
}
