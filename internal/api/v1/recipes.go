package v1

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/mnuddindev/foodgram/internal/auth"
	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/utils"
)

// ListRecipes serves the filtered, paginated recipe feed.
func ListRecipes(c *fiber.Ctx) error {
	ctx := c.UserContext()
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return utils.SendError(c, utils.Validation("Malformed query string", err.Error()))
	}
	filter, err := recipes.ParseRecipeFilter(query)
	if err != nil {
		Logger.Warn(ctx).WithFields("error", err).Logs("Invalid recipe filter")
		return utils.SendError(c, err)
	}
	p, err := utils.ParsePagination(c, PageSize)
	if err != nil {
		return utils.SendError(c, err)
	}

	callerID := auth.CallerID(c)
	list, count, err := recipes.ListRecipes(ctx, DB, filter, callerID, p)
	if err != nil {
		return utils.SendError(c, err)
	}
	out, err := serializeRecipes(ctx, callerID, list)
	if err != nil {
		return utils.SendError(c, err)
	}
	page, err := utils.NewPage(c, p, count, out)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, page)
}

func GetRecipe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	recipe, err := recipes.GetRecipe(ctx, DB, id)
	if err != nil {
		return utils.SendError(c, err)
	}
	out, err := serializeRecipe(ctx, auth.CallerID(c), recipe)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, out)
}

func CreateRecipe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var in recipes.RecipeInput
	if err := utils.StrictBodyParser(c, &in); err != nil {
		return utils.SendError(c, err)
	}

	callerID := auth.CallerID(c)
	recipe, err := recipes.CreateRecipe(ctx, DB, Media, callerID, in)
	if err != nil {
		Logger.Warn(ctx).WithFields("error", err).Logs("Recipe rejected")
		return utils.SendError(c, err)
	}
	out, err := serializeRecipe(ctx, callerID, recipe)
	if err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(ctx).WithFields("recipe_id", recipe.ID).Logs("Recipe created")
	return utils.SendCreated(c, out)
}

func UpdateRecipe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	var patch recipes.RecipePatch
	if err := utils.StrictBodyParser(c, &patch); err != nil {
		return utils.SendError(c, err)
	}

	callerID := auth.CallerID(c)
	recipe, err := recipes.UpdateRecipe(ctx, DB, Media, callerID, id, patch)
	if err != nil {
		Logger.Warn(ctx).WithFields("recipe_id", id, "error", err).Logs("Recipe update rejected")
		return utils.SendError(c, err)
	}
	out, err := serializeRecipe(ctx, callerID, recipe)
	if err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(ctx).WithFields("recipe_id", id).Logs("Recipe updated")
	return utils.SendSuccess(c, out)
}

func DeleteRecipe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := recipes.DeleteRecipe(ctx, DB, Media, auth.CallerID(c), id); err != nil {
		Logger.Warn(ctx).WithFields("recipe_id", id, "error", err).Logs("Recipe delete rejected")
		return utils.SendError(c, err)
	}

	Logger.Info(ctx).WithFields("recipe_id", id).Logs("Recipe deleted")
	return utils.SendNoContent(c)
}

// AddEntry and RemoveEntry return the toggle handlers for one relation.
func AddEntry(kind recipes.EntryKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id, err := utils.ParamID(c, "id")
		if err != nil {
			return utils.SendError(c, err)
		}
		summary, err := recipes.AddEntry(ctx, DB, kind, auth.CallerID(c), id)
		if err != nil {
			Logger.Warn(ctx).WithFields("recipe_id", id, "kind", kind, "error", err).Logs("Add rejected")
			return utils.SendError(c, err)
		}
		return utils.SendCreated(c, summary)
	}
}

func RemoveEntry(kind recipes.EntryKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id, err := utils.ParamID(c, "id")
		if err != nil {
			return utils.SendError(c, err)
		}
		if err := recipes.RemoveEntry(ctx, DB, kind, auth.CallerID(c), id); err != nil {
			Logger.Warn(ctx).WithFields("recipe_id", id, "kind", kind, "error", err).Logs("Remove rejected")
			return utils.SendError(c, err)
		}
		return utils.SendNoContent(c)
	}
}

// DownloadShoppingCart sends the caller's merged shopping list as a text
// attachment. An empty cart yields an empty file.
func DownloadShoppingCart(c *fiber.Ctx) error {
	ctx := c.UserContext()
	callerID := auth.CallerID(c)

	u, err := user.GetUserCached(ctx, Redis, DB, callerID)
	if err != nil {
		return utils.SendError(c, err)
	}
	report, err := Shopping.BuildShoppingList(ctx, callerID)
	if err != nil {
		Logger.Error(ctx).WithFields("error", err).Logs("Failed to build shopping list")
		return utils.SendError(c, err)
	}

	Logger.Info(ctx).WithFields("items", len(report.Items)).Logs("Shopping list downloaded")
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s_shopping_list.txt"`, u.Username))
	return c.Status(fiber.StatusOK).SendString(report.String())
}
