// Package identity maps an inbound request to the owner of a cart: the
// signed-in user when a valid session is present, otherwise the guest token
// carried in the cart_session_id cookie.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/auth"
	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/repository"
)

const (
	GuestCookieName   = "cart_session_id"
	SessionCookieName = "session_token"

	DefaultGuestMaxAge = 30 * 24 * time.Hour
	maxGuestTokenLen   = 128
)

// Resolver is the identity provider the cart depends on.
type Resolver interface {
	// Resolve always yields exactly one identity, minting a guest cookie if
	// needed, or fails.
	Resolve(w http.ResponseWriter, r *http.Request) (entity.Identity, error)
	// Peek never writes; it returns the zero identity when nothing is present.
	Peek(r *http.Request) (entity.Identity, error)
}

// Authenticator resolves the signed-in user for account endpoints.
type Authenticator interface {
	Authenticate(r *http.Request) (*entity.User, error)
}

// UserLookup is the part of repository.UserRepository the resolver needs.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// Options configures the cookies written by CookieResolver.
type Options struct {
	GuestMaxAge time.Duration
	// Secure marks cookies Secure; set in production.
	Secure bool
}

// CookieResolver resolves identities from the session token and guest cookie.
type CookieResolver struct {
	tokens   *auth.TokenManager
	users    UserLookup
	opts     Options
	newGuest func() string
	logger   *zap.Logger
}

var (
	_ Resolver      = (*CookieResolver)(nil)
	_ Authenticator = (*CookieResolver)(nil)
)

func NewCookieResolver(tokens *auth.TokenManager, users UserLookup, opts Options, logger *zap.Logger) *CookieResolver {
	if opts.GuestMaxAge <= 0 {
		opts.GuestMaxAge = DefaultGuestMaxAge
	}
	return &CookieResolver{
		tokens:   tokens,
		users:    users,
		opts:     opts,
		newGuest: func() string { return "guest_" + uuid.NewString() },
		logger:   logger,
	}
}

// writtenReporter is implemented by gin's ResponseWriter.
type writtenReporter interface {
	Written() bool
}

func (c *CookieResolver) Resolve(w http.ResponseWriter, r *http.Request) (entity.Identity, error) {
	id, err := c.Peek(r)
	if err != nil || !id.IsZero() {
		return id, err
	}

	if w == nil {
		return entity.Identity{}, entity.Unauthorized("Unable to establish a cart session")
	}
	if wr, ok := w.(writtenReporter); ok && wr.Written() {
		return entity.Identity{}, entity.Unauthorized("Unable to establish a cart session")
	}

	token := c.newGuest()
	http.SetCookie(w, c.cookie(GuestCookieName, token, c.opts.GuestMaxAge))
	c.logger.Debug("Minted guest cart session", zap.String("identity", entity.GuestIdentity(token).String()))
	return entity.GuestIdentity(token), nil
}

func (c *CookieResolver) Peek(r *http.Request) (entity.Identity, error) {
	user, err := c.sessionUser(r)
	if err != nil {
		return entity.Identity{}, err
	}
	if user != nil {
		// An authenticated session owns the request; any guest cookie is ignored.
		return entity.UserIdentity(user.ID), nil
	}

	if token := guestToken(r); token != "" {
		return entity.GuestIdentity(token), nil
	}
	return entity.Identity{}, nil
}

func (c *CookieResolver) Authenticate(r *http.Request) (*entity.User, error) {
	user, err := c.sessionUser(r)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUnauthorized
	}
	return user, nil
}

// sessionUser returns nil without error when there is no usable session: a
// missing, invalid or expired token, or a token for a deleted user.
func (c *CookieResolver) sessionUser(r *http.Request) (*entity.User, error) {
	raw := sessionToken(r)
	if raw == "" {
		return nil, nil
	}
	claims, err := c.tokens.Parse(raw)
	if err != nil {
		c.logger.Debug("Ignoring session token", zap.Error(err))
		return nil, nil
	}
	user, err := c.users.FindByID(r.Context(), claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, entity.Internal("failed to load session user", err)
	}
	return user, nil
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Fields(h)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if ck, err := r.Cookie(SessionCookieName); err == nil {
		return ck.Value
	}
	return ""
}

func guestToken(r *http.Request) string {
	ck, err := r.Cookie(GuestCookieName)
	if err != nil {
		return ""
	}
	v := strings.TrimSpace(ck.Value)
	if len(v) > maxGuestTokenLen {
		return ""
	}
	return v
}

// SetSession writes the session cookie after a successful sign-in.
func (c *CookieResolver) SetSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(SessionCookieName, token, c.tokens.TTL()))
}

// ClearSession expires the session cookie.
func (c *CookieResolver) ClearSession(w http.ResponseWriter) {
	ck := c.cookie(SessionCookieName, "", 0)
	ck.MaxAge = -1
	http.SetCookie(w, ck)
}

func (c *CookieResolver) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
