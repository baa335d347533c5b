package entities

// Principal is the actor performing a request. The zero value is anonymous.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Anonymous returns the principal used for unauthenticated calls
func Anonymous() Principal {
	return Principal{}
}

// IsAnonymous reports whether no identity was supplied
func (p Principal) IsAnonymous() bool {
	return p.UserID == ""
}
