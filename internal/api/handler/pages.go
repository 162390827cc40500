package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/comandero-software/comandero/internal/api/middleware"
)

// PagesHandler serves the minimal server-rendered shells the SPA boots
// from. The route gate decides who may reach each shell; these handlers
// only render.
type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func page(c *fiber.Ctx, title string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString("<!doctype html><html><head><title>" + title + "</title></head><body><div id=\"app\" data-page=\"" + title + "\"></div></body></html>")
}

// Landing handles GET /
func (h *PagesHandler) Landing(c *fiber.Ctx) error {
	return page(c, "Comandero")
}

// StaffLogin handles GET /auth/login
func (h *PagesHandler) StaffLogin(c *fiber.Ctx) error {
	return page(c, "Staff Sign In")
}

// Dashboard handles GET /dashboard
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString("<!doctype html><html><head><title>Dashboard</title></head><body><div id=\"app\" data-page=\"Dashboard\" data-restaurant=\"" + principal.RestaurantID.String() + "\"></div></body></html>")
}

// CustomerLogin handles GET /customer/login
func (h *PagesHandler) CustomerLogin(c *fiber.Ctx) error {
	return page(c, "Sign In")
}

// CustomerRegister handles GET /customer/register
func (h *PagesHandler) CustomerRegister(c *fiber.Ctx) error {
	return page(c, "Create Account")
}

// CustomerHome handles GET /customer
func (h *PagesHandler) CustomerHome(c *fiber.Ctx) error {
	return page(c, "My Orders")
}
