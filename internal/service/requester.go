package service

import "github.com/iliyamo/tiered-catalog/internal/tier"

// Requester is the authenticated caller of an operation. The zero value is
// an anonymous caller.
type Requester struct {
	ID       string
	Username string
	Tier     tier.Tier
	IsAdmin  bool
}

// Authenticated reports whether r identifies a user.
func (r Requester) Authenticated() bool { return r.ID != "" }

func requireUser(r Requester) error {
	if !r.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(r Requester) error {
	if !r.Authenticated() {
		return ErrUnauthenticated
	}
	if !r.IsAdmin {
		return ErrForbidden
	}
	return nil
}
