package v1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mnuddindev/foodgram/internal/auth"
	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/utils"
)

func recipesLimit(c *fiber.Ctx) (int, error) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, utils.Validation("recipes_limit must be a non-negative integer", raw)
	}
	return n, nil
}

func Subscribe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	authorID, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	limit, err := recipesLimit(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	callerID := auth.CallerID(c)
	author, err := user.Subscribe(ctx, DB, callerID, authorID)
	if err != nil {
		Logger.Warn(ctx).WithFields("author_id", authorID, "error", err).Logs("Subscribe rejected")
		return utils.SendError(c, err)
	}

	out, err := serializeSubscriptions(ctx, callerID, []user.User{*author}, limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	Logger.Info(ctx).WithFields("author_id", authorID).Logs("Subscribed to author")
	return utils.SendCreated(c, out[0])
}

func Unsubscribe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	authorID, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := user.Unsubscribe(ctx, DB, auth.CallerID(c), authorID); err != nil {
		Logger.Warn(ctx).WithFields("author_id", authorID, "error", err).Logs("Unsubscribe rejected")
		return utils.SendError(c, err)
	}
	Logger.Info(ctx).WithFields("author_id", authorID).Logs("Unsubscribed from author")
	return utils.SendNoContent(c)
}

// Subscriptions lists the caller's authors with their newest recipes.
func Subscriptions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p, err := utils.ParsePagination(c, PageSize)
	if err != nil {
		return utils.SendError(c, err)
	}
	limit, err := recipesLimit(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	callerID := auth.CallerID(c)
	authors, count, err := user.ListSubscriptions(ctx, DB, callerID, p)
	if err != nil {
		return utils.SendError(c, err)
	}
	out, err := serializeSubscriptions(ctx, callerID, authors, limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	page, err := utils.NewPage(c, p, count, out)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, page)
}
