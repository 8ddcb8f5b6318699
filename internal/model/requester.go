package model

// RequesterIdentity is the two-armed identity used for the one-active-hold
// rule and ownership checks: a user id when the request is authenticated,
// otherwise the requester's email. The arms are never coerced into one key
// space, so an authenticated requester's prior anonymous hold under the same
// email is intentionally not detected.
type RequesterIdentity struct {
	UserID *string
	Email  string
}

func AuthenticatedRequester(userID, email string) RequesterIdentity {
	return RequesterIdentity{UserID: &userID, Email: email}
}

func AnonymousRequester(email string) RequesterIdentity {
	return RequesterIdentity{Email: email}
}

func (i RequesterIdentity) Authenticated() bool {
	return i.UserID != nil && *i.UserID != ""
}

// Owns reports whether the identity may release or confirm the given hold.
// Authenticated callers must match a non-null stored requester id; anonymous
// callers are trusted by possession of the hold id alone.
func (i RequesterIdentity) Owns(r *Reservation) bool {
	if !i.Authenticated() || r.RequesterID == nil {
		return true
	}
	return *r.RequesterID == *i.UserID
}
