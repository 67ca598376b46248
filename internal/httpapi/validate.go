package httpapi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// validationMiddleware parses and validates the request body against
// the DTO registered for the current path/method, then stashes the
// parsed, validated value in Locals for the handler to retrieve.
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodOptions {
		return c.Next()
	}

	path := c.Path()
	var body interface{}
	switch {
	case strings.HasSuffix(path, "/game/start") && method == fiber.MethodPost:
		body = &StartGameRequest{}
	case strings.HasSuffix(path, "/game/move") && method == fiber.MethodPost:
		body = &MoveRequest{}
	case strings.HasSuffix(path, "/models") && method == fiber.MethodPost:
		body = &ModelsRequest{}
	case strings.HasSuffix(path, "/models/default") && method == fiber.MethodPost:
		body = &ModelsDefaultRequest{}
	default:
		return c.Next()
	}

	if len(c.Body()) > 0 {
		if err := c.BodyParser(body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body: " + err.Error()})
		}
	}

	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: validationMessage(err)})
	}

	c.Locals("body", body)
	return c.Next()
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	var details strings.Builder
	for _, e := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch e.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "min":
			if e.Type().Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			}
		case "max":
			if e.Type().Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			}
		case "omitempty":
			continue
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag()))
		}
	}
	return details.String()
}
