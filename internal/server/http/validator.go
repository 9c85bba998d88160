package http

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/timeslot"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var gameListRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}(,[A-Za-z0-9_-]{1,16})*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("civildate", func(fl validator.FieldLevel) bool {
		_, err := timeslot.ParseDate(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("gamecode", func(fl validator.FieldLevel) bool {
		return catalog.ValidCode(fl.Field().String())
	})
	v.RegisterValidation("gamelist", func(fl validator.FieldLevel) bool {
		return gameListRegex.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
	})
	return v
}

// validationMiddleware parses and validates the JSON body of write routes,
// storing the typed request in c.Locals("validatedBody")
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method != fiber.MethodPost && method != fiber.MethodPut {
		return c.Next()
	}

	path := strings.TrimSuffix(c.Path(), "/")
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games") && method == fiber.MethodPost:
		requestType = &core.CreateGameRequest{}
	case strings.Contains(path, "/games/") && method == fiber.MethodPut:
		requestType = &core.UpdateGameRequest{}
	case (strings.HasSuffix(path, "/results/timewise") || strings.HasSuffix(path, "/results")) && method == fiber.MethodPost:
		requestType = &core.ResultRequest{}
	default:
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.CodeInvalidRequest,
			Details: err.Error(),
		})
	}

	if err := validate.Struct(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.CodeValidationFailed,
			Details: formatValidationErrors(err),
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

// parseQuery fills dst from the query string and validates it
func parseQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return core.NewValidationError("query", "%v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return core.NewValidationError("", "%s", formatValidationErrors(err))
	}
	return nil
}

// validatedBody returns the request stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (*T, error) {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return nil, errors.New("validation bypass detected")
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return nil, errors.New("validation data missing")
	}
	return body, nil
}

func formatValidationErrors(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	var details strings.Builder
	for _, fe := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min":
			if fe.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
			}
		case "max":
			if fe.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
			}
		case "civildate":
			details.WriteString(fmt.Sprintf("%s must be a real date in YYYY-MM-DD format", fe.Field()))
		case "gamecode":
			details.WriteString(fmt.Sprintf("%s must be 1-16 letters, digits, '_' or '-'", fe.Field()))
		case "gamelist":
			details.WriteString(fmt.Sprintf("%s must be a comma-separated list of game codes", fe.Field()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return details.String()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
