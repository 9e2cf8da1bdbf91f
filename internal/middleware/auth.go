package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"yuvai/internal/db"
	"yuvai/internal/models"
)

// Session and locals keys.
const (
	SessionUsername = "username"
	IdentityKey     = "identity"
)

// AuthMiddleware resolves the session's username to an identity.
type AuthMiddleware struct {
	store db.AccountStore
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(store db.AccountStore) *AuthMiddleware {
	return &AuthMiddleware{store: store}
}

// GetIdentity returns the identity placed on the request by the middleware.
func GetIdentity(c fiber.Ctx) (models.Identity, bool) {
	id, ok := c.Locals(IdentityKey).(models.Identity)
	return id, ok
}

// resolve loads the account named in the session. A session naming an
// account that no longer exists is destroyed.
func (m *AuthMiddleware) resolve(c fiber.Ctx) (models.Identity, bool) {
	sess := session.FromContext(c)
	if sess == nil {
		return models.Identity{}, false
	}

	username, _ := sess.Get(SessionUsername).(string)
	if username == "" {
		return models.Identity{}, false
	}

	acct, err := m.store.GetAccount(c.Context(), username)
	if err != nil {
		if errors.Is(err, db.ErrAccountNotFound) {
			sess.Destroy()
		} else {
			log.Printf("Failed to load account %s: %v", username, err)
		}
		return models.Identity{}, false
	}

	id := models.Identity{Username: acct.Username, Role: acct.Role}
	c.Locals(IdentityKey, id)
	return id, true
}

// RequireAuth ensures the user is authenticated, redirecting to /login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if _, ok := m.resolve(c); !ok {
		return c.Redirect().To("/login")
	}
	return c.Next()
}

// RequireAPIAuth is RequireAuth for JSON endpoints: unauthenticated requests
// get a 401 envelope instead of a redirect.
func (m *AuthMiddleware) RequireAPIAuth(c fiber.Ctx) error {
	if _, ok := m.resolve(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "authentication required",
		})
	}
	return c.Next()
}

// RequireAdmin must run after RequireAPIAuth.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	id, ok := GetIdentity(c)
	if !ok || !id.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": "error",
			"error":  "admin access required",
		})
	}
	return c.Next()
}

// OptionalAuth loads the identity if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	m.resolve(c)
	return c.Next()
}
