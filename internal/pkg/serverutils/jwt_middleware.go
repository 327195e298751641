// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"errors"
	"strings"

	"turingtest-be/internal/pkg/apperror"
	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserId    = "user_id"
	LocalUserEmail = "user_email"

	AccessTokenHeader = "access_token"
)

// TokenFromRequest reads "Authorization: Bearer <token>", falling back to
// the raw access_token header.
func TokenFromRequest(ctx *fiber.Ctx) string {
	if auth := ctx.Get(fiber.HeaderAuthorization); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
			return strings.TrimSpace(auth[7:])
		}
	}
	return strings.TrimSpace(ctx.Get(AccessTokenHeader))
}

// Authenticate verifies a raw token and logs why it was rejected. The
// caller only ever sees a generic Unauthorized.
func Authenticate(tokens token.ITokenService, log logger.ILogger, raw string) (*token.Identity, error) {
	if raw == "" {
		return nil, apperror.Unauthorized("Unauthorized", nil)
	}

	identity, err := tokens.Verify(raw)
	if err != nil {
		kind := "malformed"
		if errors.Is(err, token.ErrExpired) {
			kind = "expired"
		}
		log.Warn("AUTH", "Rejected bearer token", map[string]interface{}{
			"kind":   kind,
			"reason": err.Error(),
		})
		return nil, apperror.Unauthorized("Unauthorized", err)
	}
	return identity, nil
}

func JwtMiddleware(tokens token.ITokenService, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, err := Authenticate(tokens, log, TokenFromRequest(ctx))
		if err != nil {
			return err
		}

		ctx.Locals(LocalUserId, identity.Id)
		ctx.Locals(LocalUserEmail, identity.Email)
		return ctx.Next()
	}
}

// CurrentUser returns the identity JwtMiddleware stored on ctx.
func CurrentUser(ctx *fiber.Ctx) (userId, email string, err error) {
	userId, _ = ctx.Locals(LocalUserId).(string)
	email, _ = ctx.Locals(LocalUserEmail).(string)
	if userId == "" {
		return "", "", apperror.Unauthorized("Unauthorized", nil)
	}
	return userId, email, nil
}
