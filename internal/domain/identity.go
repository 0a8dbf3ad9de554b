package domain

// IdentityStatus mirrors the auth provider's session state.
type IdentityStatus string

const (
	IdentityLoading         IdentityStatus = "loading"
	IdentityAuthenticated   IdentityStatus = "authenticated"
	IdentityUnauthenticated IdentityStatus = "unauthenticated"
)

// Identity is the resolved view of who is talking to us.
type Identity struct {
	Status   IdentityStatus
	Username Username
	ImageURL string
}

// Authenticated reports whether this identity can own a session. A still
// loading identity is not authenticated yet; nothing may run on its behalf.
func (id Identity) Authenticated() bool {
	return id.Status == IdentityAuthenticated && id.Username != ""
}
