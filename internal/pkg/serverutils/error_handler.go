package serverutils

import (
	"errors"

	"turingtest-be/internal/pkg/apperror"
	"turingtest-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders every error returned by a handler as
// {status, message}. Unclassified errors become a 500 and are logged.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		appErr := apperror.From(err)
		status := appErr.Kind.Status()

		if appErr.Kind == apperror.KindInternal {
			log.Error("HTTP", "Unhandled error", map[string]interface{}{
				"method":     ctx.Method(),
				"path":       ctx.Path(),
				"request_id": ctx.Locals("requestid"),
				"error":      err,
			})
		}

		return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
	}
}
