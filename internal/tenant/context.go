package tenant

import (
	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/labstack/echo/v4"
)

// identityKey is the echo-context key the authentication gate installs
// the identity under. The context is request-local and discarded with the
// request; it is never shared across requests.
const identityKey = "identity"

// Identity is the caller resolved from a verified access token plus a fresh
// user-store lookup. It is the only source of the tenant id: nothing in this
// package ever reads a store id from request parameters or bodies.
type Identity struct {
	UserID   uint
	StoreID  *uint
	Username string
	Role     model.UserRole
}

// Store returns the caller's store id. System-wide ADMIN accounts have no
// store and cannot act on store-scoped resources.
func (id *Identity) Store() (uint, error) {
	if id.StoreID == nil {
		return 0, apperr.Unauthorized("user has no store assigned")
	}
	return *id.StoreID, nil
}

// Install places the identity into the request context. Called only by the
// authentication gate.
func Install(c echo.Context, id *Identity) {
	c.Set(identityKey, id)
}

// FromContext returns the installed identity or an Unauthenticated error
// when the request carries no valid credential.
func FromContext(c echo.Context) (*Identity, error) {
	id, ok := c.Get(identityKey).(*Identity)
	if !ok || id == nil {
		return nil, apperr.Unauthorized("user not authenticated")
	}
	return id, nil
}

// Installed reports whether an identity is present without failing
func Installed(c echo.Context) bool {
	id, ok := c.Get(identityKey).(*Identity)
	return ok && id != nil
}
