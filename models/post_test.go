package models

import (
	"testing"
	"time"
)

func TestTouchPublishedPost(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 4, 2, 12, 30, 0, 0, time.UTC)

	post := &Post{Published: true, CreatedAt: created}
	post.Touch(now)

	if !post.CreatedAt.Equal(created) {
		t.Errorf("expected creation date to be kept, got %v", post.CreatedAt)
	}
	if post.UpdatedAt == nil || !post.UpdatedAt.Equal(now) {
		t.Errorf("expected edit timestamp %v, got %v", now, post.UpdatedAt)
	}
}

func TestTouchDraftPost(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 4, 2, 12, 30, 0, 0, time.UTC)

	post := &Post{Published: false, CreatedAt: created}
	post.Touch(now)

	if !post.CreatedAt.Equal(now) {
		t.Errorf("expected creation date to be refreshed to %v, got %v", now, post.CreatedAt)
	}
	if post.UpdatedAt != nil {
		t.Errorf("expected no edit timestamp on a draft, got %v", post.UpdatedAt)
	}
}
