package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	gql "github.com/spec-kit/issue-tracker/internal/api/graphql"
	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/repository/memory"
	"github.com/spec-kit/issue-tracker/internal/service"
)

func newTestApp(t *testing.T, basePath string) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(logger)
	cfg := config.Config{
		App:  config.AppConfig{Name: "issue-tracker-test", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 10, BcryptCost: 4},
	}

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users()})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Tickets(),
		UserRepo:   store.Users(),
		Dispatcher: dispatcher,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: store.Comments(),
		TicketRepo:  store.Tickets(),
		Dispatcher:  dispatcher,
	})
	schema, err := gql.NewSchema(ticketService, commentService)
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	app := NewApp(cfg.App.Name, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		BasePath:       basePath,
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, logger, metrics, handlers.HealthCheck{Name: "store", Pinger: store}),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		GraphQL:        gql.Handler(schema),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload
}

func register(t *testing.T, app *fiber.App, name, email string) dto.AuthResponse {
	t.Helper()
	status, body := do(t, app, "POST", "/auth/register", "", fiber.Map{
		"name": name, "email": email, "password": "Secret123",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestTicketAndCommentFlow(t *testing.T) {
	app := newTestApp(t, "")
	alice := register(t, app, "Alice", "alice@example.com")
	bob := register(t, app, "Bob", "bob@example.com")

	status, body := do(t, app, "POST", "/tickets", alice.Token, fiber.Map{"title": "Login bug"})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	ticket := decode[dto.TicketResponse](t, body)
	assert.Equal(t, "Open", string(ticket.Status))
	assert.Equal(t, "Medium", string(ticket.Priority))
	assert.Equal(t, alice.User.ID, ticket.CreatedBy)

	status, body = do(t, app, "POST", "/tickets/"+ticket.ID+"/comments", alice.Token, fiber.Map{"content": "nice"})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	comment := decode[dto.CommentResponse](t, body)
	assert.Equal(t, "Alice", comment.Author.Name)
	assert.Equal(t, ticket.ID, comment.TicketID)

	status, body = do(t, app, "DELETE", "/comments/"+comment.ID, bob.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	errBody := decode[ErrorResponse](t, body)
	assert.Equal(t, "FORBIDDEN", errBody.Code)
	assert.Equal(t, "You can only delete your own comments", errBody.Message)

	status, body = do(t, app, "DELETE", "/comments/"+comment.ID, alice.Token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Comment deleted successfully", decode[dto.MessageResponse](t, body).Message)

	status, body = do(t, app, "GET", "/tickets/"+ticket.ID+"/comments", alice.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]dto.CommentResponse](t, body))

	status, _ = do(t, app, "DELETE", "/comments/"+comment.ID, alice.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTicketEndpoints(t *testing.T) {
	app := newTestApp(t, "")
	alice := register(t, app, "Alice", "alice@example.com")

	status, body := do(t, app, "POST", "/tickets", alice.Token, fiber.Map{"title": "ab", "priority": "Urgent"})
	require.Equal(t, fiber.StatusBadRequest, status)
	errBody := decode[ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION_FAILED", errBody.Code)
	assert.Contains(t, errBody.Details, "title")
	assert.Contains(t, errBody.Details, "priority")

	_, body = do(t, app, "POST", "/tickets", alice.Token, fiber.Map{"title": "Printer offline", "priority": "High"})
	printer := decode[dto.TicketResponse](t, body)
	_, body = do(t, app, "POST", "/tickets", alice.Token, fiber.Map{"title": "Login bug"})
	login := decode[dto.TicketResponse](t, body)

	status, body = do(t, app, "PUT", "/tickets/"+printer.ID, alice.Token, fiber.Map{"status": "Closed"})
	require.Equal(t, fiber.StatusOK, status, string(body))
	updated := decode[dto.TicketResponse](t, body)
	assert.Equal(t, "Closed", string(updated.Status))
	assert.Equal(t, "High", string(updated.Priority))

	status, body = do(t, app, "GET", "/tickets?search=BUG", alice.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	found := decode[[]dto.TicketResponse](t, body)
	require.Len(t, found, 1)
	assert.Equal(t, login.ID, found[0].ID)

	status, body = do(t, app, "GET", "/tickets?status=Closed", alice.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	closed := decode[[]dto.TicketResponse](t, body)
	require.Len(t, closed, 1)
	assert.Equal(t, printer.ID, closed[0].ID)

	status, _ = do(t, app, "GET", "/tickets?sortBy=priority", alice.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, "GET", "/tickets?search=nothing", alice.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	status, body = do(t, app, "DELETE", "/tickets/"+printer.ID, alice.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Ticket deleted successfully", decode[dto.MessageResponse](t, body).Message)

	status, _ = do(t, app, "GET", "/tickets/"+printer.ID, alice.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGuardRejectsAnonymousRequests(t *testing.T) {
	app := newTestApp(t, "")
	for _, tc := range []struct{ method, path string }{
		{"GET", "/tickets"},
		{"POST", "/tickets"},
		{"GET", "/tickets/abc"},
		{"PUT", "/tickets/abc"},
		{"DELETE", "/tickets/abc"},
		{"GET", "/tickets/abc/comments"},
		{"POST", "/tickets/abc/comments"},
		{"DELETE", "/comments/abc"},
		{"GET", "/auth/me"},
		{"POST", "/graphql"},
	} {
		status, body := do(t, app, tc.method, tc.path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, "%s %s", tc.method, tc.path)
		assert.Equal(t, "UNAUTHORIZED", decode[ErrorResponse](t, body).Code)
	}

	status, _ := do(t, app, "GET", "/tickets", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAuthEndpointsUnderBasePath(t *testing.T) {
	app := newTestApp(t, "/api")

	status, body := do(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"name": "Ada", "email": "ada@example.com", "password": "Secret123", "confirmPassword": "Secret123",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	registered := decode[dto.AuthResponse](t, body)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.NotContains(t, string(body), "Secret123")

	status, body = do(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"name": "Ada", "email": "ADA@example.com", "password": "Secret123",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode[ErrorResponse](t, body).Code)

	status, body = do(t, app, "POST", "/api/auth/register", "", fiber.Map{"name": "A", "email": "bad", "password": "weak"})
	require.Equal(t, fiber.StatusBadRequest, status)
	details := decode[ErrorResponse](t, body).Details
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	status, _ = do(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "Wrong123"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = do(t, app, "POST", "/api/auth/login", "", fiber.Map{"email": "ada@example.com", "password": "Secret123"})
	require.Equal(t, fiber.StatusOK, status)
	loggedIn := decode[dto.AuthResponse](t, body)

	status, body = do(t, app, "GET", "/api/auth/me", loggedIn.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, registered.User.ID, decode[dto.UserResponse](t, body).ID)

	status, _ = do(t, app, "GET", "/auth/me", loggedIn.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, "")

	status, body := do(t, app, "GET", "/health/live", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "alive")

	status, body = do(t, app, "GET", "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"store":"ok"`)

	status, body = do(t, app, "GET", "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	snap := decode[observability.Snapshot](t, body)
	assert.GreaterOrEqual(t, snap.TotalRequests, int64(2))
}

func TestGraphQLQueries(t *testing.T) {
	app := newTestApp(t, "")
	alice := register(t, app, "Alice", "alice@example.com")
	_, body := do(t, app, "POST", "/tickets", alice.Token, fiber.Map{"title": "Login bug"})
	ticket := decode[dto.TicketResponse](t, body)
	do(t, app, "POST", "/tickets/"+ticket.ID+"/comments", alice.Token, fiber.Map{"content": "on it"})

	status, body := do(t, app, "POST", "/graphql", alice.Token, fiber.Map{
		"query": `query($id: ID!) {
			tickets(search: "login") { id title status }
			comments(ticketId: $id) { content author { name } }
		}`,
		"variables": fiber.Map{"id": ticket.ID},
	})
	require.Equal(t, fiber.StatusOK, status, string(body))

	var result struct {
		Data struct {
			Tickets []struct {
				ID     string `json:"id"`
				Title  string `json:"title"`
				Status string `json:"status"`
			} `json:"tickets"`
			Comments []struct {
				Content string `json:"content"`
				Author  struct {
					Name string `json:"name"`
				} `json:"author"`
			} `json:"comments"`
		} `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Empty(t, result.Errors)
	require.Len(t, result.Data.Tickets, 1)
	assert.Equal(t, ticket.ID, result.Data.Tickets[0].ID)
	assert.Equal(t, "Open", result.Data.Tickets[0].Status)
	require.Len(t, result.Data.Comments, 1)
	assert.Equal(t, "Alice", result.Data.Comments[0].Author.Name)

	status, body = do(t, app, "POST", "/graphql", alice.Token, fiber.Map{
		"query": `{ ticket(id: "missing") { id } }`,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "ticket not found")

	status, _ = do(t, app, "POST", "/graphql", alice.Token, fiber.Map{"query": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
