package domain

import "time"

// Milestone represents a milestone, unique by number within its repository.
type Milestone struct {
	Number     int
	Title      string
	State      string // "open", "closed"
	DueOn      *time.Time
	Repository string // full name of the repository the milestone belongs to
}
