package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comandero-software/comandero/internal/api/middleware"
	"github.com/comandero-software/comandero/internal/domain"
	"github.com/comandero-software/comandero/internal/service"
	"github.com/comandero-software/comandero/internal/ws"
)

// MockOrderRepo is a testify mock of the order repository
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) ListOpen(ctx context.Context, restaurantID uuid.UUID) ([]domain.Order, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.EventType
}

func (p *recordingPublisher) Publish(room string, eventType ws.EventType, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newOrderApp wires an order handler behind a fixed staff principal.
func newOrderApp(repo *MockOrderRepo, pub ws.Publisher, principal domain.Principal) *fiber.App {
	logger := testHandlerLogger()
	svc := service.NewOrderService(repo, pub, logger)
	h := NewOrderHandler(svc, logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
	})
	app.Use(func(c *fiber.Ctx) error {
		if !principal.IsAnonymous() {
			c.Locals(middleware.LocalPrincipal, principal)
		}
		return c.Next()
	})

	app.Post("/api/orders", h.Create)
	app.Get("/api/orders", h.List)
	app.Get("/api/orders/:id", h.Get)
	app.Patch("/api/orders/:id/status", h.UpdateStatus)

	return app
}

func staffPrincipal(restaurantID uuid.UUID) domain.Principal {
	return domain.Principal{
		Realm:        domain.RealmStaff,
		ID:           uuid.New(),
		RestaurantID: restaurantID,
	}
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestOrderHandler_Create(t *testing.T) {
	restaurantID := uuid.New()

	t.Run("creates an order", func(t *testing.T) {
		repo := new(MockOrderRepo)
		pub := &recordingPublisher{}
		app := newOrderApp(repo, pub, staffPrincipal(restaurantID))

		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

		req := jsonRequest("POST", "/api/orders", fiber.Map{
			"table_number": "12",
			"items": []fiber.Map{
				{"menu_item_id": uuid.NewString(), "name": "Gnocchi", "quantity": 2, "unit_price": 1150},
			},
		})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var result struct {
			Data domain.Order `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, restaurantID, result.Data.RestaurantID)
		assert.Equal(t, domain.StatusPending, result.Data.Status)
		assert.Equal(t, []ws.EventType{ws.EventOrderCreated}, pub.events)
	})

	t.Run("empty order is rejected", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		req := jsonRequest("POST", "/api/orders", fiber.Map{"table_number": "12"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, domain.ErrValidationFailed.StatusCode, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "VALIDATION_FAILED")
	})

	t.Run("anonymous request is rejected", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, domain.Anonymous)

		req := jsonRequest("POST", "/api/orders", fiber.Map{"table_number": "12"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_List(t *testing.T) {
	restaurantID := uuid.New()

	t.Run("returns open orders", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		orders := []domain.Order{
			{ID: uuid.New(), RestaurantID: restaurantID, Status: domain.StatusPending},
			{ID: uuid.New(), RestaurantID: restaurantID, Status: domain.StatusPreparing},
		}
		repo.On("ListOpen", mock.Anything, restaurantID).Return(orders, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/orders", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result struct {
			Data []domain.Order `json:"data"`
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result.Data, 2)
		assert.Equal(t, 2, result.Meta.Total)
	})

	t.Run("empty list is a json array, not null", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		repo.On("ListOpen", mock.Anything, restaurantID).Return([]domain.Order(nil), nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/orders", nil))
		require.NoError(t, err)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `"data":[]`)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	restaurantID := uuid.New()
	orderID := uuid.New()

	t.Run("returns the order", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		repo.On("GetByID", mock.Anything, restaurantID, orderID).Return(&domain.Order{
			ID:           orderID,
			RestaurantID: restaurantID,
			Status:       domain.StatusReady,
		}, nil)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/orders/"+orderID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		resp, err := app.Test(httptest.NewRequest("GET", "/api/orders/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing order maps to 404", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		repo.On("GetByID", mock.Anything, restaurantID, orderID).Return(nil, domain.ErrOrderNotFound)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/orders/"+orderID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "ORDER_NOT_FOUND")
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	restaurantID := uuid.New()
	orderID := uuid.New()

	t.Run("moves the order forward", func(t *testing.T) {
		repo := new(MockOrderRepo)
		pub := &recordingPublisher{}
		app := newOrderApp(repo, pub, staffPrincipal(restaurantID))

		repo.On("GetByID", mock.Anything, restaurantID, orderID).Return(&domain.Order{
			ID: orderID, RestaurantID: restaurantID, Status: domain.StatusConfirmed,
		}, nil)
		repo.On("UpdateStatus", mock.Anything, restaurantID, orderID, domain.StatusConfirmed, domain.StatusPreparing).Return(&domain.Order{
			ID: orderID, RestaurantID: restaurantID, Status: domain.StatusPreparing,
		}, nil)

		req := jsonRequest("PATCH", "/api/orders/"+orderID.String()+"/status", fiber.Map{"status": "PREPARING"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result struct {
			Data domain.Order `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, domain.StatusPreparing, result.Data.Status)
		assert.Equal(t, []ws.EventType{ws.EventOrderUpdated}, pub.events)
	})

	t.Run("illegal transition maps to 422", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		repo.On("GetByID", mock.Anything, restaurantID, orderID).Return(&domain.Order{
			ID: orderID, RestaurantID: restaurantID, Status: domain.StatusCompleted,
		}, nil)

		req := jsonRequest("PATCH", "/api/orders/"+orderID.String()+"/status", fiber.Map{"status": "PENDING"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, domain.ErrInvalidTransition.StatusCode, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "INVALID_STATUS_TRANSITION")
	})

	t.Run("unknown status maps to 400", func(t *testing.T) {
		repo := new(MockOrderRepo)
		app := newOrderApp(repo, &recordingPublisher{}, staffPrincipal(restaurantID))

		req := jsonRequest("PATCH", "/api/orders/"+orderID.String()+"/status", fiber.Map{"status": "FLAMBEED"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, domain.ErrInvalidOrderStatus.StatusCode, resp.StatusCode)
	})
}
