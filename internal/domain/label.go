package domain

// Label represents an issue label, unique by name within its repository.
type Label struct {
	Name        string
	Color       string // hex without leading '#'
	Description string
	Repository  string // full name of the repository the label belongs to
}
