package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"
)

// CookieName carries the edit token between requests.
const CookieName = "clawban_edit"

// ErrEditForbidden is returned by RequireEdit when the caller holds no
// valid edit token.
var ErrEditForbidden = errors.New("edit forbidden")

// Gate answers "can this caller edit?" based on the edit cookie and
// issues/revokes that cookie. It keeps no server-side session state: the
// cookie token is self-contained and verified on every check.
type Gate struct {
	secret string
	now    func() time.Time
}

func NewGate(secret string) *Gate {
	return &Gate{secret: secret, now: time.Now}
}

// Enabled reports whether a shared secret is configured. When false the
// board is view-only: CanEdit and Unlock always fail.
func (g *Gate) Enabled() bool { return g.secret != "" }

// CanEdit reports whether the request carries a valid, unexpired edit token.
func (g *Gate) CanEdit(r *http.Request) bool {
	if g.secret == "" {
		return false
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	_, ok := Verify(c.Value, g.secret, g.now())
	return ok
}

// RequireEdit is the precondition guard for mutation handlers.
func (g *Gate) RequireEdit(r *http.Request) error {
	if !g.CanEdit(r) {
		return ErrEditForbidden
	}
	return nil
}

// Unlock issues the edit cookie iff the password matches the configured
// secret. The comparison is constant-time.
func (g *Gate) Unlock(w http.ResponseWriter, password string) bool {
	if g.secret == "" {
		return false
	}
	if !constantTimeEq(password, g.secret) {
		return false
	}
	now := g.now()
	token, err := Issue(g.secret, now)
	if err != nil {
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(TokenTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

// Lock expires the edit cookie. Previously issued tokens stay valid until
// their own expiry if replayed; there is no revocation list.
func (g *Gate) Lock(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func constantTimeEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
