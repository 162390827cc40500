package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/comandero-software/comandero/internal/auth"
	"github.com/comandero-software/comandero/internal/authz"
	"github.com/comandero-software/comandero/internal/domain"
)

// LocalPrincipal is the key under which the resolved principal is stored
// in the request locals. It is shared with every package that reads the
// principal off a connection, such as the websocket handler.
const LocalPrincipal = domain.PrincipalKey

// PrincipalResolver turns the two realm cookies into a principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, staffToken, customerToken string) domain.Principal
}

// Session resolves the request's principal from the realm cookies and
// stores it in the request locals. It runs on every request and never
// rejects: an absent, malformed or revoked credential simply yields the
// anonymous principal. Enforcement is the Gate's job.
func Session(resolver PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := resolver.Resolve(
			c.Context(),
			c.Cookies(auth.CookieStaffSession),
			c.Cookies(auth.CookieCustomerSession),
		)
		c.Locals(LocalPrincipal, principal)
		return c.Next()
	}
}

// Gate enforces the route policy. Denied requests are redirected to the
// sign-in page of the realm the route requires; authenticated principals
// hitting their own realm's entry pages are bounced to their home page.
func Gate(policy *authz.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := policy.Decide(c.Path(), GetPrincipal(c))
		if decision.Allowed {
			return c.Next()
		}
		return c.Redirect(decision.RedirectTo, fiber.StatusFound)
	}
}

// GetPrincipal retrieves the resolved principal from the request locals.
// Requests that never passed through Session report as anonymous.
func GetPrincipal(c *fiber.Ctx) domain.Principal {
	principal, ok := c.Locals(LocalPrincipal).(domain.Principal)
	if !ok {
		return domain.Anonymous
	}
	return principal
}

// RequireStaff guards individual handlers that depend on a staff
// principal regardless of what the route table says.
func RequireStaff(c *fiber.Ctx) (domain.Principal, error) {
	principal := GetPrincipal(c)
	if !principal.IsStaff() {
		return domain.Anonymous, domain.ErrUnauthorized
	}
	return principal, nil
}

// RequireCustomer is the customer realm's counterpart of RequireStaff.
func RequireCustomer(c *fiber.Ctx) (domain.Principal, error) {
	principal := GetPrincipal(c)
	if !principal.IsCustomer() {
		return domain.Anonymous, domain.ErrUnauthorized
	}
	return principal, nil
}
