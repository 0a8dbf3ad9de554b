package identity

import (
	"net/http"
	"strings"

	"github.com/ssechho/fanchatbot/internal/domain"
)

// Resolver turns an incoming request's credentials into an Identity. The
// real provider (OAuth login, Kakao profile) sits in front of this service;
// a Resolver is the seam where its verdict enters.
type Resolver interface {
	Resolve(r *http.Request) domain.Identity
}

const (
	defaultUserHeader  = "X-Fanchat-User"
	defaultImageHeader = "X-Fanchat-User-Image"
)

// HeaderResolver trusts identity headers set by an authenticating proxy.
// A missing user header resolves as unauthenticated.
type HeaderResolver struct {
	UserHeader  string
	ImageHeader string
}

func NewHeaderResolver() *HeaderResolver {
	return &HeaderResolver{
		UserHeader:  defaultUserHeader,
		ImageHeader: defaultImageHeader,
	}
}

func (h *HeaderResolver) Resolve(r *http.Request) domain.Identity {
	username := strings.TrimSpace(r.Header.Get(h.UserHeader))
	if username == "" {
		return domain.Identity{Status: domain.IdentityUnauthenticated}
	}

	return domain.Identity{
		Status:   domain.IdentityAuthenticated,
		Username: domain.Username(username),
		ImageURL: r.Header.Get(h.ImageHeader),
	}
}

// Static always resolves to one fixed identity; local mode and tests.
type Static struct {
	Identity domain.Identity
}

func (s *Static) Resolve(r *http.Request) domain.Identity {
	return s.Identity
}
