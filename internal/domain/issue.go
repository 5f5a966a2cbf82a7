package domain

import "time"

// IssueDraft is a client-side issue record not yet persisted to the server.
// Drafts are consumed by the create operation and discarded.
type IssueDraft struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Assignees []string `json:"assignees,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Milestone int      `json:"milestone,omitempty"` // milestone number, 0 means none
}

// IssuePatch is a partial update for an existing issue. Nil fields are left
// untouched by the server.
type IssuePatch struct {
	Title     *string   `json:"title,omitempty"`
	Body      *string   `json:"body,omitempty"`
	State     *string   `json:"state,omitempty"`
	Assignees *[]string `json:"assignees,omitempty"`
	Labels    *[]string `json:"labels,omitempty"`
	Milestone *int      `json:"milestone,omitempty"`
}

// Issue represents an issue as returned by the server. Read-only to the core.
type Issue struct {
	Number    int
	Title     string
	Body      string
	State     string // "open", "closed"
	Assignees []string
	Labels    []string
	Milestone int // milestone number, 0 means none
	HTMLURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
