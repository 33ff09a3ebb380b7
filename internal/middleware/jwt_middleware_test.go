package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecoms/internal/middleware"
	"ecoms/internal/models"
	"ecoms/internal/repositories"
	"ecoms/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProtectedApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	authService := services.NewAuthService(repositories.NewMockUserRepository(), "middleware_secret", time.Hour)
	ctx := context.Background()
	require.NoError(t, authService.RegisterUser(ctx, &models.User{Username: "clerk", Email: "clerk@example.com", Password: "password123"}))
	token, err := authService.LoginUser(ctx, "clerk", "password123")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/protected", middleware.AuthRequired(authService), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("username").(string))
	})
	return app, token
}

func TestAuthRequired(t *testing.T) {
	app, token := setupProtectedApp(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestBootstrapOrAuth(t *testing.T) {
	ctx := context.Background()
	authService := services.NewAuthService(repositories.NewMockUserRepository(), "middleware_secret", time.Hour)

	app := fiber.New()
	app.Post("/register", middleware.BootstrapOrAuth(authService), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	post := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/register", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	// No accounts yet: the first one is created without a token
	assert.Equal(t, http.StatusCreated, post(""))

	require.NoError(t, authService.RegisterUser(ctx, &models.User{Username: "clerk", Email: "clerk@example.com", Password: "password123"}))
	token, err := authService.LoginUser(ctx, "clerk", "password123")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, post(""))
	assert.Equal(t, http.StatusUnauthorized, post("Bearer not.a.token"))
	assert.Equal(t, http.StatusCreated, post("Bearer "+token))
}
