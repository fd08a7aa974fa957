package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/swaggo/swag"
)

// Swagger serves the swagger UI for spec. Host and schemes are fixed here,
// before any request is served; an empty host makes the UI use the page origin.
func Swagger(spec *swag.Spec, host string, schemes []string) fiber.Handler {
	spec.Host = host
	spec.Schemes = schemes
	return swagger.New(swagger.Config{InstanceName: spec.InstanceName()})
}
