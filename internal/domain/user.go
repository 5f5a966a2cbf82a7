package domain

// User represents the authenticated identity behind the access token.
type User struct {
	Login     string
	Name      string
	AvatarURL string
	HTMLURL   string
}

// AsOwner returns the user's personal account as an Owner.
func (u User) AsOwner() Owner {
	return Owner{Login: u.Login, Kind: KindUser, AvatarURL: u.AvatarURL}
}
