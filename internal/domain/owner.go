package domain

// OwnerKind distinguishes user accounts from organization accounts.
type OwnerKind string

const (
	// KindUser is a personal account.
	KindUser OwnerKind = "user"
	// KindOrganization is an organization account.
	KindOrganization OwnerKind = "org"
)

// Owner represents a user or organization account that holds repositories.
// Identity is the login; owners are immutable once fetched.
type Owner struct {
	Login     string
	Kind      OwnerKind
	AvatarURL string
}

// Qualifier returns the search qualifier for this owner, e.g. "org:acme".
func (o Owner) Qualifier() string {
	return string(o.Kind) + ":" + o.Login
}
