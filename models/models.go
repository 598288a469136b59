package models

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Post struct {
	ID        int64      `json:"-"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Excerpt   *string    `json:"excerpt,omitempty"`
	ImageURL  *string    `json:"image,omitempty"`
	Slug      string     `json:"slug"`
	AuthorID  int64      `json:"-"`
	Published bool       `json:"published"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Touch records an edit on the post. A post that was already published keeps
// its creation date and gets an edit timestamp; a draft has its creation date
// refreshed instead and carries no edit timestamp.
//
// Call Touch before applying the edit's new publish flag: the rule depends on
// the state the post was in when the edit arrived.
func (p *Post) Touch(now time.Time) {
	if p.Published {
		p.UpdatedAt = &now
	} else {
		p.CreatedAt = now
		p.UpdatedAt = nil
	}
}

type Tag struct {
	ID         int64      `json:"-"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type TagWithPostCount struct {
	Tag       Tag
	PostCount int64
}

type AuthorPostCount struct {
	AuthorID  int64
	Name      string
	Username  string
	PostCount int64
}
