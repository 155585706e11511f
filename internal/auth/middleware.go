package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sunolegal/backend/pkg/models"
)

const identityKey = "identity"

/* ============================== Middleware ============================== */

// RequireAuth verifies the bearer token with the configured Verifier and
// injects the Identity into the context.
func RequireAuth(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		token := strings.TrimPrefix(h, "Bearer ")
		if token == h {
			token = "" // no bearer prefix; the mock verifier tolerates this
		}
		id, err := v.Verify(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// RequireAdmin ensures the authenticated caller has admin privilege.
// Admin privilege is checked independently of ownership.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !MustIdentity(c).IsAdmin {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}

// MustIdentity reads the verified identity from context or panics
// (programming error: route registered without RequireAuth).
func MustIdentity(c *fiber.Ctx) Identity {
	if v := c.Locals(identityKey); v != nil {
		return v.(Identity)
	}
	panic(errors.New("identity not in context"))
}

// InjectIdentity places a fixed identity into the context. Test helper
// standing in for RequireAuth.
func InjectIdentity(id Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(identityKey, id)
		return c.Next()
	}
}

/* =========================== Error Formatting =========================== */

// httpCodeToString converts an HTTP status code to a short, stable string.
func httpCodeToString(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// ErrorHandler is a global Fiber error handler that returns a consistent
// JSON shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Defaults
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	// Fiber errors carry status codes
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if strings.TrimSpace(e.Message) != "" {
			msg = e.Message
		} else {
			// Use Fiber's default messages per status code
			msg = fiber.ErrInternalServerError.Message
			switch code {
			case fiber.StatusBadRequest:
				msg = fiber.ErrBadRequest.Message
			case fiber.StatusUnauthorized:
				msg = fiber.ErrUnauthorized.Message
			case fiber.StatusForbidden:
				msg = fiber.ErrForbidden.Message
			case fiber.StatusNotFound:
				msg = fiber.ErrNotFound.Message
			case fiber.StatusConflict:
				msg = fiber.ErrConflict.Message
			}
		}
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Code:    httpCodeToString(code),
		Error:   true,
		Message: msg,
	})
}
