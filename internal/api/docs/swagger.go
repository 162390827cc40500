package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// StaffLoginResponse is the body returned by a successful staff login
type StaffLoginResponse struct {
	Data     StaffData `json:"data"`
	Redirect string    `json:"redirect" example:"/dashboard"`
}

// StaffData is the staff member as serialized in responses
type StaffData struct {
	ID           string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RestaurantID string `json:"restaurant_id" example:"6f1f64ab-7c11-4f39-9b2a-1f6f0b1a2c3d"`
	Email        string `json:"email" example:"maria@trattoria.example"`
	Name         string `json:"name" example:"Maria"`
	Role         string `json:"role" example:"waiter"`
}

// SignoutResponse is returned by logout/signout endpoints
type SignoutResponse struct {
	Success  bool   `json:"success" example:"true"`
	Redirect string `json:"redirect" example:"/auth/login"`
}

// TrackResponse is returned by the session activity endpoint
type TrackResponse struct {
	Tracked bool `json:"tracked" example:"true"`
}

// TwoFactorStatusResponse is the flat body of the two-factor status endpoint
type TwoFactorStatusResponse struct {
	Enabled bool `json:"enabled" example:"false"`
}

// CustomerData is the customer account as serialized in responses
type CustomerData struct {
	ID    string `json:"id" example:"9a2b3c4d-0000-4000-8000-000000000001"`
	Email string `json:"email" example:"diner@example.com"`
	Name  string `json:"name" example:"Alex"`
}

// CustomerResponse wraps a customer account
type CustomerResponse struct {
	Data CustomerData `json:"data"`
}

// OrderItemData is one line of an order
type OrderItemData struct {
	Name     string `json:"name" example:"Margherita"`
	Quantity int    `json:"quantity" example:"2"`
	Price    string `json:"price" example:"8.50"`
}

// OrderData is the order as serialized in responses
type OrderData struct {
	ID           string          `json:"id" example:"7b8c9d0e-0000-4000-8000-000000000002"`
	RestaurantID string          `json:"restaurant_id" example:"6f1f64ab-7c11-4f39-9b2a-1f6f0b1a2c3d"`
	TableNumber  string          `json:"table_number" example:"12"`
	Status       string          `json:"status" example:"PENDING"`
	Items        []OrderItemData `json:"items"`
	Notes        string          `json:"notes,omitempty" example:"no basil"`
	CreatedAt    string          `json:"created_at" example:"2024-01-01T00:00:00Z"`
	UpdatedAt    string          `json:"updated_at" example:"2024-01-01T00:00:00Z"`
}

// OrderResponse wraps a single order
type OrderResponse struct {
	Data OrderData `json:"data"`
}

// OrderListResponse wraps the order list with its meta block
type OrderListResponse struct {
	Data []OrderData   `json:"data"`
	Meta OrderListMeta `json:"meta"`
}

// OrderListMeta carries list totals
type OrderListMeta struct {
	Total int `json:"total" example:"3"`
}

// WebhookData is a configured webhook endpoint
type WebhookData struct {
	ID           string   `json:"id" example:"1c2d3e4f-0000-4000-8000-000000000003"`
	RestaurantID string   `json:"restaurant_id" example:"6f1f64ab-7c11-4f39-9b2a-1f6f0b1a2c3d"`
	Name         string   `json:"name" example:"kitchen-printer"`
	URL          string   `json:"url" example:"https://printer.example/hook"`
	Events       []string `json:"events" example:"order:create,order:update"`
	Enabled      bool     `json:"enabled" example:"true"`
}

// WebhookListResponse wraps the webhook list
type WebhookListResponse struct {
	Data []WebhookData `json:"data"`
}

// WebhookCreatedResponse includes the one-time signing secret
type WebhookCreatedResponse struct {
	Data   WebhookData `json:"data"`
	Secret string      `json:"secret" example:"3f7a..."`
}

// HealthResponse is the health/readiness body
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ErrorResponse is the shared error envelope's inner object
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// FlatErrorResponse is the legacy flat error body of the two-factor endpoint
type FlatErrorResponse struct {
	Error string `json:"error" example:"User not found"`
}

// EmptyResponse represents a no-content response
type EmptyResponse struct{}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Comandero API",
		Version:     "v1.0.0",
		Description: "Multi-tenant restaurant platform: staff and customer sessions, orders, realtime kitchen events, webhooks",
		Host:        "localhost:3000",
		Path:        "/api",
	})

	endpoints := []*endpoint.EndPoint{
		// Staff auth

		// POST /api/auth/login
		endpoint.New(
			endpoint.POST,
			"/auth/login",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Staff login"),
			endpoint.WithDescription("Exchanges staff email+password for a staff_session cookie. Body: {email, password}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StaffLoginResponse{}, "200", "Session issued, cookie set"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "RESTAURANT_INACTIVE", Message: "Restaurant is not active"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
			}),
		),

		// POST /api/auth/logout
		endpoint.New(
			endpoint.POST,
			"/auth/logout",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Staff logout"),
			endpoint.WithDescription("Revokes the staff session and clears the cookie. Always succeeds."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SignoutResponse{}, "200", "Session revoked"),
			}),
		),

		// POST /api/auth/sessions/track
		endpoint.New(
			endpoint.POST,
			"/auth/sessions/track",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Record session activity"),
			endpoint.WithDescription("Best-effort last-active bump for the caller's session. Returns 200 even when nothing could be tracked."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TrackResponse{}, "200", "Activity recorded (or no session present)"),
			}),
		),

		// GET /api/auth/two-factor/status
		endpoint.New(
			endpoint.GET,
			"/auth/two-factor/status",
			endpoint.WithTags("Auth"),
			endpoint.WithSummary("Two-factor enrollment status"),
			endpoint.WithDescription("Answers with a flat body for legacy browser clients."),
			endpoint.WithParams(
				parameter.StrParam("user_id", parameter.Query, parameter.WithDescription("Staff id to check; defaults to the caller")),
			),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TwoFactorStatusResponse{}, "200", "Status retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(FlatErrorResponse{Error: "Unauthorized"}, "401", "Unauthorized"),
				response.New(FlatErrorResponse{Error: "User not found"}, "404", "Not Found"),
				response.New(FlatErrorResponse{Error: "Internal server error"}, "500", "Internal Server Error"),
			}),
		),

		// Customer auth

		// POST /api/customer/register
		endpoint.New(
			endpoint.POST,
			"/customer/register",
			endpoint.WithTags("Customer"),
			endpoint.WithSummary("Customer registration"),
			endpoint.WithDescription("Creates a customer account and issues a customer_session cookie. Body: {email, name, password}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CustomerResponse{}, "201", "Account created, cookie set"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CUSTOMER_EXISTS", Message: "An account with this email already exists"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
			}),
		),

		// POST /api/customer/login
		endpoint.New(
			endpoint.POST,
			"/customer/login",
			endpoint.WithTags("Customer"),
			endpoint.WithSummary("Customer login"),
			endpoint.WithDescription("Exchanges customer email+password for a customer_session cookie. Body: {email, password}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CustomerResponse{}, "200", "Session issued, cookie set"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}, "401", "Unauthorized"),
			}),
		),

		// POST /api/auth/customer/signout
		endpoint.New(
			endpoint.POST,
			"/auth/customer/signout",
			endpoint.WithTags("Customer"),
			endpoint.WithSummary("Customer signout"),
			endpoint.WithDescription("Deletes the customer session record and clears the cookie. Always succeeds."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SignoutResponse{Redirect: "/customer/login"}, "200", "Session removed"),
			}),
		),

		// Orders

		// POST /api/orders
		endpoint.New(
			endpoint.POST,
			"/orders",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("Create an order"),
			endpoint.WithDescription("Opens an order for the staff principal's restaurant and broadcasts order:create. Body: {table_number, items, notes?, customer_id?}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OrderResponse{}, "201", "Order created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Authentication required"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"CookieAuth": {}}}),
		),

		// GET /api/orders
		endpoint.New(
			endpoint.GET,
			"/orders",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("List open orders"),
			endpoint.WithDescription("Lists orders for the staff principal's restaurant, newest first."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("status", parameter.Query, parameter.WithDescription("Filter by order status")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OrderListResponse{}, "200", "Orders retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Authentication required"}, "401", "Unauthorized"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"CookieAuth": {}}}),
		),

		// GET /api/orders/{id}
		endpoint.New(
			endpoint.GET,
			"/orders/{id}",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("Get one order"),
			endpoint.WithDescription("Fetches an order by id. Orders of other restaurants answer 404."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Order id (UUID)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OrderResponse{}, "200", "Order retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "invalid order ID format"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Authentication required"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "Order not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"CookieAuth": {}}}),
		),

		// PATCH /api/orders/{id}/status
		endpoint.New(
			endpoint.PATCH,
			"/orders/{id}/status",
			endpoint.WithTags("Orders"),
			endpoint.WithSummary("Advance order status"),
			endpoint.WithDescription("Applies one status transition and broadcasts order:update with the post-mutation snapshot. Body: {status}."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Order id (UUID)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OrderResponse{}, "200", "Status updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "Order not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INVALID_STATUS_TRANSITION", Message: "Order status transition not allowed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_ORDER_STATUS", Message: "Unknown order status"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"CookieAuth": {}}}),
		),

		// Webhooks

		// GET /api/webhooks
		endpoint.New(
			endpoint.GET,
			"/webhooks",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("List webhooks"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookListResponse{}, "200", "Webhooks retrieved"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Authentication required"}, "401", "Unauthorized"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"CookieAuth": {}}}),
		),

		// POST /api/webhooks
		endpoint.New(
			endpoint.POST,
			"/webhooks",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("Create a webhook"),
			endpoint.WithDescription("Registers an outbound endpoint for order events. Body: {name, url, events, enabled}. The signing secret is returned once."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(WebhookCreatedResponse{}, "201", "Webhook created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Authentication required"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"CookieAuth": {}}}),
		),

		// DELETE /api/webhooks/{id}
		endpoint.New(
			endpoint.DELETE,
			"/webhooks/{id}",
			endpoint.WithTags("Webhooks"),
			endpoint.WithSummary("Delete a webhook"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Webhook id (UUID)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Webhook deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "WEBHOOK_NOT_FOUND", Message: "Webhook not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"CookieAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
