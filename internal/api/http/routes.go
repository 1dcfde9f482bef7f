package httpapi

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-news-aggregation/internal/content"
	"github.com/i474232898/weather-news-aggregation/internal/pkg/log"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. logger is
// attached to every request context handed to the service.
func RegisterRoutes(app *fiber.App, service *content.Service, logger *slog.Logger) {
	v1 := app.Group("/api/v1")

	v1.Get("/content", func(c *fiber.Ctx) error {
		var q contentQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.Aggregate(log.Into(c.UserContext(), logger), q.toRequest())
		if err != nil {
			if errors.Is(err, content.ErrInvalidRequest) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to aggregate content")
		}

		return c.JSON(res)
	})
}

// contentQuery holds query parameters for the content endpoint. Lists are comma separated.
type contentQuery struct {
	Categories  string `query:"categories"`
	Priority    string `query:"priority"`
	Sources     string `query:"sources"`
	Limit       int    `query:"limit" validate:"gte=0,lte=500"`
	MaxAgeHours int    `query:"maxAgeHours" validate:"gte=0,lte=720"`
}

func (q contentQuery) toRequest() content.Request {
	req := content.Request{
		PriorityFilter: q.Priority,
		MaxItems:       q.Limit,
		MaxAgeHours:    q.MaxAgeHours,
	}
	for _, c := range splitList(q.Categories) {
		req.Categories = append(req.Categories, content.Category(c))
	}
	for _, s := range splitList(q.Sources) {
		req.Sources = append(req.Sources, content.SourceGroup(s))
	}
	return req
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
