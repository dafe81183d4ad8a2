package response

import "github.com/gofiber/fiber/v3"

// Envelope is the uniform wrapper around every API response.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Object  any      `json:"object"`
	Errors  []string `json:"errors"`
}

// PaginatedEnvelope adds page metadata to listing responses.
type PaginatedEnvelope struct {
	Envelope
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalSize  int `json:"totalSize"`
}

const (
	MessageOK                  = "ok"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageGone                = "gone"
	MessageUnsupportedMedia    = "unsupported media type"
	MessageInternalServerError = "internal server error"
	MessageError               = "error"
)

func Success(c fiber.Ctx, status int, message string, object any) error {
	st := normalizeStatus(status)
	return c.Status(st).JSON(Envelope{
		Success: true,
		Message: normalizeMessage(message, st),
		Object:  object,
		Errors:  []string{},
	})
}

func Paginated(c fiber.Ctx, message string, object any, page, size, total int) error {
	return c.Status(fiber.StatusOK).JSON(PaginatedEnvelope{
		Envelope: Envelope{
			Success: true,
			Message: normalizeMessage(message, fiber.StatusOK),
			Object:  object,
			Errors:  []string{},
		},
		PageNumber: page,
		PageSize:   size,
		TotalSize:  total,
	})
}

func Error(c fiber.Ctx, status int, message string, errs []string) error {
	st := normalizeStatus(status)
	if errs == nil {
		errs = []string{}
	}
	return c.Status(st).JSON(Envelope{
		Success: false,
		Message: normalizeMessage(message, st),
		Object:  nil,
		Errors:  errs,
	})
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func normalizeMessage(message string, status int) string {
	if message != "" {
		return message
	}
	return DefaultMessage(status)
}

func DefaultMessage(status int) string {
	switch status {
	case fiber.StatusOK, fiber.StatusCreated:
		return MessageOK
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusForbidden:
		return MessageForbidden
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusGone:
		return MessageGone
	case fiber.StatusUnsupportedMediaType:
		return MessageUnsupportedMedia
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		return MessageError
	}
}
