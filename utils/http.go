// utils/http.go - Fiber response helpers
package utils

import (
	"github.com/gofiber/fiber/v2"

	"teamwork/errs"
)

// JSONError renders err as {"success": false, "error": reason} with the
// status carried by the error, 500 for anything outside the taxonomy.
func JSONError(c *fiber.Ctx, err error) error {
	return c.Status(errs.StatusOf(err)).JSON(fiber.Map{
		"success": false,
		"error":   errs.Reason(err),
	})
}

// JSONSuccess merges data into a {"success": true} response. Anything that
// is not a fiber.Map is sent under "data".
func JSONSuccess(c *fiber.Ctx, status int, data interface{}) error {
	response := fiber.Map{"success": true}

	if dataMap, ok := data.(fiber.Map); ok {
		for k, v := range dataMap {
			response[k] = v
		}
	} else if data != nil {
		response["data"] = data
	}

	return c.Status(status).JSON(response)
}

// ErrorHandler is the app-wide fallback for errors returned by handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "error": fe.Message})
	}
	return JSONError(c, err)
}
