package domain

// Repository represents a repository under an owner.
// FullName ("owner/name") is the unique identity.
type Repository struct {
	FullName string
	Name     string
	Owner    Owner // back-reference only, not owning
	Private  bool
	HTMLURL  string
}
