package entity

// Identity is the owner of a cart for one request: a signed-in user or an
// anonymous guest token. A resolved identity has exactly one field set; the
// zero value means nobody could be identified.
type Identity struct {
	UserID       string
	SessionToken string
}

func UserIdentity(userID string) Identity { return Identity{UserID: userID} }

func GuestIdentity(token string) Identity { return Identity{SessionToken: token} }

func (i Identity) IsZero() bool { return i.UserID == "" && i.SessionToken == "" }

func (i Identity) IsGuest() bool { return i.UserID == "" && i.SessionToken != "" }

// Valid reports whether exactly one of the two owner fields is set.
func (i Identity) Valid() bool { return (i.UserID == "") != (i.SessionToken == "") }

// Owns reports whether the cart belongs to this identity. The zero identity
// owns nothing.
func (i Identity) Owns(c Cart) bool {
	if i.UserID != "" {
		return c.UserID == i.UserID
	}
	if i.SessionToken != "" {
		return c.SessionToken == i.SessionToken
	}
	return false
}

// String is safe to log; guest tokens act as bearer credentials and are not
// printed in full.
func (i Identity) String() string {
	switch {
	case i.UserID != "":
		return "user:" + i.UserID
	case len(i.SessionToken) > 12:
		return "guest:" + i.SessionToken[:12] + "..."
	case i.SessionToken != "":
		return "guest:" + i.SessionToken
	default:
		return "anonymous"
	}
}
