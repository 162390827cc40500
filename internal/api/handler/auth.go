package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/api/middleware"
	"github.com/comandero-software/comandero/internal/auth"
	"github.com/comandero-software/comandero/internal/authz"
	"github.com/comandero-software/comandero/internal/domain"
	"github.com/comandero-software/comandero/internal/service"
)

type AuthHandler struct {
	authService   *service.AuthService
	staffTTL      time.Duration
	customerTTL   time.Duration
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	staffTTL time.Duration,
	customerTTL time.Duration,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		staffTTL:      staffTTL,
		customerTTL:   customerTTL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// StaffLogin handles POST /api/auth/login
func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	token, staff, err := h.authService.StaffLogin(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, auth.CookieStaffSession, token, h.staffTTL)

	return c.JSON(fiber.Map{
		"data":     staff,
		"redirect": authz.StaffHomePath,
	})
}

// StaffLogout handles POST /api/auth/logout
func (h *AuthHandler) StaffLogout(c *fiber.Ctx) error {
	_ = h.authService.StaffLogout(c.Context(), c.Cookies(auth.CookieStaffSession))
	h.clearSessionCookie(c, auth.CookieStaffSession)

	return c.JSON(fiber.Map{
		"success":  true,
		"redirect": authz.StaffSignInPath,
	})
}

// TrackSession handles POST /api/auth/sessions/track. It always succeeds:
// an anonymous or stale credential is simply not tracked.
func (h *AuthHandler) TrackSession(c *fiber.Ctx) error {
	h.authService.TrackActivity(
		c.Context(),
		c.Cookies(auth.CookieStaffSession),
		c.Cookies(auth.CookieCustomerSession),
	)

	principal := middleware.GetPrincipal(c)
	return c.JSON(fiber.Map{
		"tracked": !principal.IsAnonymous(),
	})
}

// TwoFactorStatus handles GET /api/auth/two-factor/status.
//
// This endpoint predates the shared error envelope and browser clients
// still parse its flat body, so it answers with {"enabled"} / {"error"}
// directly instead of going through the error handler.
func (h *AuthHandler) TwoFactorStatus(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if !principal.IsStaff() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	// Defaults to the caller's own account; admin tooling passes an
	// explicit user_id to check another one.
	userID := principal.ID
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		userID = parsed
	}

	enabled, err := h.authService.TwoFactorStatus(c.Context(), principal, userID)
	if err != nil {
		if appErr, ok := err.(*domain.AppError); ok && appErr.StatusCode == fiber.StatusNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		h.logger.Error("two-factor status lookup failed", "error", err, "staff_id", principal.ID, "user_id", userID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"enabled": enabled,
	})
}

// CustomerRegister handles POST /api/customer/register
func (h *AuthHandler) CustomerRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	token, customer, err := h.authService.CustomerRegister(c.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, auth.CookieCustomerSession, token, h.customerTTL)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":     customer,
		"redirect": authz.CustomerHomePath,
	})
}

// CustomerLogin handles POST /api/customer/login
func (h *AuthHandler) CustomerLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	token, customer, err := h.authService.CustomerLogin(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, auth.CookieCustomerSession, token, h.customerTTL)

	return c.JSON(fiber.Map{
		"data":     customer,
		"redirect": authz.CustomerHomePath,
	})
}

// CustomerSignout handles POST /api/auth/customer/signout
func (h *AuthHandler) CustomerSignout(c *fiber.Ctx) error {
	_ = h.authService.CustomerLogout(c.Context(), c.Cookies(auth.CookieCustomerSession))
	h.clearSessionCookie(c, auth.CookieCustomerSession)

	return c.JSON(fiber.Map{
		"success":  true,
		"redirect": authz.CustomerSignInPath,
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
