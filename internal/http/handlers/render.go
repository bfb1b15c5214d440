package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"

	"exportimport/internal/domain"
	applog "exportimport/internal/log"
	"exportimport/internal/validate"
)

type okResponse struct {
	Success bool `json:"success"`
}

type insertResponse struct {
	Success    bool   `json:"success"`
	InsertedID string `json:"inserted_id"`
}

type updateResponse struct {
	Success       bool  `json:"success"`
	MatchedCount  int64 `json:"matched_count"`
	ModifiedCount int64 `json:"modified_count"`
}

type deleteResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deleted_count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func invalid(msg string) error { return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, msg) }

// idParam validates the :id route parameter.
func idParam(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return "", invalid("malformed id")
	}
	return id, nil
}

func ownerQuery(c *fiber.Ctx) (string, error) {
	email, ok := validate.Owner(c.Query("email"))
	if !ok {
		return "", invalid("email query parameter is required")
	}
	return email, nil
}

// decodeBody parses the raw body as JSON regardless of Content-Type.
func decodeBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return invalid("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return err
		}
		return invalid("malformed JSON body")
	}
	return nil
}

// ErrorHandler is the single place where errors become HTTP responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	switch {
	case status >= fiber.StatusInternalServerError:
		applog.Error(c, "server.error", err, map[string]any{"status": status})
	case status == fiber.StatusBadRequest:
		applog.Security(c, "validation.fail", map[string]any{"reason": msg, "status": status})
	}
	return c.Status(status).JSON(errorResponse{Success: false, Message: msg})
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, domain.ErrStoreFailure):
		// Checked first: a store error may wrap a client-facing kind.
		return fiber.StatusInternalServerError, "Server error"
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return fiber.StatusBadRequest, "Not enough quantity available"
	case errors.Is(err, domain.ErrInvalidArgument):
		return fiber.StatusBadRequest, detail(err, domain.ErrInvalidArgument)
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, detail(err, domain.ErrNotFound) + " not found"
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	default:
		// Never leak store internals.
		return fiber.StatusInternalServerError, "Server error"
	}
}

// detail strips the "<kind>: " prefix and capitalizes what is left.
func detail(err, kind error) string {
	s := strings.TrimPrefix(err.Error(), kind.Error())
	s = strings.TrimPrefix(s, ": ")
	if s == "" {
		s = kind.Error()
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
