package handler

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"job-board/internal/delivery/http/middleware"
	"job-board/internal/pkg/pagination"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	if n < 1 {
		return 0, errors.New(key + " must be positive")
	}
	return n, nil
}

func parsePage(c fiber.Ctx) (pagination.Params, error) {
	page, err := parseQueryIntStrict(c, "page", pagination.DefaultPage)
	if err != nil {
		return pagination.Params{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", []string{err.Error()}, err)
	}
	size, err := parseQueryIntStrict(c, "size", pagination.DefaultSize)
	if err != nil {
		return pagination.Params{}, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", []string{err.Error()}, err)
	}
	return pagination.Params{Page: page, Size: size}.Normalize(), nil
}

// queryMulti collects a repeated query parameter. Comma separated values are
// split as well, so ?s=a&s=b and ?s=a,b are equivalent.
func queryMulti(c fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Request().URI().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func pathUUID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// validationMessages flattens field errors into "field: message" strings.
func validationMessages(err error) []string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []string{"invalid input"}
	}
	out := make([]string, 0, len(verrs))
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		out = append(out, field+": "+ferr.Error())
	}
	sort.Strings(out)
	return out
}

func validationError(err error) *middleware.AppError {
	return middleware.NewAppError(fiber.StatusBadRequest, "Validation failed", validationMessages(err), err)
}
