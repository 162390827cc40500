package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/api/middleware"
	"github.com/comandero-software/comandero/internal/domain"
	"github.com/comandero-software/comandero/internal/webhook"
)

// WebhookHandler lets restaurant staff manage outbound webhook endpoints.
type WebhookHandler struct {
	service *webhook.Service
	logger  *slog.Logger
}

func NewWebhookHandler(service *webhook.Service, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

type createWebhookRequest struct {
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Events  []string `json:"events"`
	Enabled bool     `json:"enabled"`
}

// List handles GET /api/webhooks
func (h *WebhookHandler) List(c *fiber.Ctx) error {
	principal, err := middleware.RequireStaff(c)
	if err != nil {
		return err
	}

	webhooks, err := h.service.GetWebhooksByRestaurant(c.Context(), principal.RestaurantID)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	if webhooks == nil {
		webhooks = []*webhook.Webhook{}
	}

	return c.JSON(fiber.Map{
		"data": webhooks,
	})
}

// Create handles POST /api/webhooks. The signing secret is generated
// server-side and returned exactly once in the response.
func (h *WebhookHandler) Create(c *fiber.Ctx) error {
	principal, err := middleware.RequireStaff(c)
	if err != nil {
		return err
	}

	var req createWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if req.Name == "" || req.URL == "" {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("name and url are required"))
	}
	if len(req.Events) == 0 {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("at least one event is required"))
	}

	secret, err := generateWebhookSecret(32)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	w := &webhook.Webhook{
		RestaurantID: principal.RestaurantID,
		Name:         req.Name,
		URL:          req.URL,
		Secret:       secret,
		Events:       req.Events,
		Enabled:      req.Enabled,
	}

	if err := h.service.CreateWebhook(c.Context(), w); err != nil {
		return domain.ErrInternal.WithError(err)
	}

	h.logger.Info("webhook created",
		"webhook_id", w.ID,
		"restaurant_id", principal.RestaurantID,
		"name", w.Name,
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":   w,
		"secret": secret,
	})
}

// Delete handles DELETE /api/webhooks/:id
func (h *WebhookHandler) Delete(c *fiber.Ctx) error {
	principal, err := middleware.RequireStaff(c)
	if err != nil {
		return err
	}

	webhookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(fmt.Errorf("invalid webhook ID format"))
	}

	if err := h.service.DeleteWebhook(c.Context(), principal.RestaurantID, webhookID); err != nil {
		return err
	}

	h.logger.Info("webhook deleted",
		"webhook_id", webhookID,
		"restaurant_id", principal.RestaurantID,
	)

	return c.Status(fiber.StatusNoContent).Send(nil)
}

func generateWebhookSecret(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
