package domain

// Assignee represents an account an issue can be assigned to, scoped to the
// owner it was listed under. For a user-kind owner the only valid assignee is
// the authenticated user themself.
type Assignee struct {
	Login     string
	Org       string // owner login the assignee was fetched for
	AvatarURL string
}
