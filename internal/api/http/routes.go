package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-flatten/internal/export"
	"github.com/i474232898/weather-flatten/internal/weather"
)

var validate = validator.New()

// maxCitiesPerRequest mirrors the max=50 rule on tableQuery.Cities.
const maxCitiesPerRequest = 50

// RegisterRoutes wires the HTTP handlers into the Fiber app. Requests that
// name no city fall back to defaultCities.
func RegisterRoutes(app *fiber.App, service *weather.Service, defaultCities []string) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/table", func(c *fiber.Ctx) error {
		req, err := parseTableQuery(c, defaultCities)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.Run(c.UserContext(), req.Cities)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "weather batch aborted: "+err.Error())
		}

		switch req.Format {
		case "csv":
			c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
			return export.WriteCSV(c, &report.Table)
		case "arrow":
			c.Set(fiber.HeaderContentType, "application/vnd.apache.arrow.stream")
			return export.WriteArrow(c, &report.Table)
		default:
			return c.JSON(export.NewReportDocument(report))
		}
	})

	v1.Get("/weather/fields", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"columns": service.Spec().Columns(),
			"policy":  service.Policy(),
		})
	})
}

// tableQuery holds query parameters for the table endpoint.
type tableQuery struct {
	Cities []string `validate:"required,min=1,max=50,dive,required"`
	Format string   `validate:"omitempty,oneof=csv json arrow"`
}

func parseTableQuery(c *fiber.Ctx, defaultCities []string) (tableQuery, error) {
	var q tableQuery

	for _, v := range c.Context().QueryArgs().PeekMulti("city") {
		q.Cities = append(q.Cities, string(v))
	}
	if len(q.Cities) == 0 {
		q.Cities = defaultCities
	}
	q.Format = c.Query("format")

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
