package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/logger"
	"github.com/mnuddindev/foodgram/pkg/utils"
)

const claimsLocal = "claims"

// Authenticate resolves the caller from the Authorization header. Requests
// without a header continue anonymously; a bad or revoked token is rejected.
func Authenticate(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := tokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		claims, err := opt.Tokens.Verify(raw)
		if err != nil {
			opt.Logger.Warn(ctx).WithFields("error", err.Error(), "path", c.Path()).Logs("Access token rejected")
			if errors.Is(err, ErrExpiredToken) {
				return utils.SendError(c, utils.NewError(fiber.StatusUnauthorized, "Token has expired"))
			}
			return utils.SendError(c, utils.NewError(fiber.StatusUnauthorized, "Invalid token"))
		}

		if opt.Rclient.IsBlacklisted(ctx, claims.ID) {
			opt.Logger.Warn(ctx).WithFields("user_id", claims.UserID).Logs("Attempted use of blacklisted access token")
			return utils.SendError(c, utils.NewError(fiber.StatusUnauthorized, "Token has been invalidated"))
		}

		if _, err := user.GetUserCached(ctx, opt.Rclient, opt.DB, claims.UserID); err != nil {
			opt.Logger.Warn(ctx).WithFields("user_id", claims.UserID).Logs("Token owner not found")
			return utils.SendError(c, utils.NewError(fiber.StatusUnauthorized, "Invalid token"))
		}

		c.Locals("user_id", claims.UserID)
		c.Locals(claimsLocal, claims)
		c.SetUserContext(logger.WithUserID(ctx, claims.UserID))

		opt.Logger.Debug(c.UserContext()).WithFields("path", c.Path()).Logs("User authenticated")
		return c.Next()
	}
}

// tokenFromHeader accepts "Token <jwt>" and "Bearer <jwt>".
func tokenFromHeader(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(token)
	}
	return ""
}
