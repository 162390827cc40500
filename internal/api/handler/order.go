package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/api/middleware"
	"github.com/comandero-software/comandero/internal/domain"
	"github.com/comandero-software/comandero/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *slog.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	principal, err := middleware.RequireStaff(c)
	if err != nil {
		return err
	}

	var input service.CreateOrderInput
	if err := c.BodyParser(&input); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	order, err := h.orderService.Create(c.Context(), principal.RestaurantID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": order,
	})
}

// List handles GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	principal, err := middleware.RequireStaff(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.ListOpen(c.Context(), principal.RestaurantID)
	if err != nil {
		return err
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return c.JSON(fiber.Map{
		"data": orders,
		"meta": fiber.Map{
			"total": len(orders),
		},
	})
}

// Get handles GET /api/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	principal, err := middleware.RequireStaff(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order ID format")
	}

	order, err := h.orderService.GetByID(c.Context(), principal.RestaurantID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": order,
	})
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := middleware.RequireStaff(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order ID format")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	order, err := h.orderService.UpdateStatus(c.Context(), principal.RestaurantID, orderID, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": order,
	})
}
