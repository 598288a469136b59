package validator

import "testing"

func TestCheckNotBlank(t *testing.T) {
	v := New()
	v.CheckNotBlank("  ", "title", "must be provided")

	if v.IsValid() {
		t.Error("expected whitespace-only value to be rejected")
	}
	if v.Errors["title"] != "must be provided" {
		t.Errorf("unexpected error map: %v", v.Errors)
	}
}

func TestAddErrorKeepsFirstMessage(t *testing.T) {
	v := New()
	v.AddError("slug", "first")
	v.AddError("slug", "second")

	if v.Errors["slug"] != "first" {
		t.Errorf("expected first message to win, got %q", v.Errors["slug"])
	}
}

func TestIsUnique(t *testing.T) {
	v := New()

	if !v.IsUnique([]string{"go", "postgres", "blog"}) {
		t.Error("expected distinct values to be unique")
	}
	if v.IsUnique([]string{"go", "go"}) {
		t.Error("expected duplicate values to be rejected")
	}
}
