package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"teamwork/errs"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]any) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestJSONError(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return JSONError(c, errs.Forbidden("You are not a member of this team"))
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, false, body["success"])
	require.Equal(t, "You are not a member of this team", body["error"])

	status, body = call(t, func(c *fiber.Ctx) error {
		return JSONError(c, errors.New("db exploded"))
	})
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Internal server error", body["error"])
}

func TestJSONSuccess(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return JSONSuccess(c, http.StatusCreated, fiber.Map{"task": fiber.Map{"id": "t1"}})
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, true, body["success"])
	require.Equal(t, "t1", body["task"].(map[string]any)["id"])

	_, body = call(t, func(c *fiber.Ctx) error {
		return JSONSuccess(c, http.StatusOK, []string{"a"})
	})
	require.Equal(t, []any{"a"}, body["data"])
}

func TestErrorHandler(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return fiber.NewError(http.StatusUnauthorized, "User not authenticated")
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "User not authenticated", body["error"])

	status, body = call(t, func(c *fiber.Ctx) error {
		return errs.NotFound("Task not found")
	})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Task not found", body["error"])
}
