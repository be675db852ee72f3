package v1

import (
	"github.com/gofiber/fiber/v2"
	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	"github.com/mnuddindev/foodgram/pkg/utils"
)

func ListTags(c *fiber.Ctx) error {
	tags, err := recipes.ListTags(c.UserContext(), Redis, DB)
	if err != nil {
		return utils.SendError(c, err)
	}
	if tags == nil {
		tags = []recipes.Tag{}
	}
	return utils.SendSuccess(c, tags)
}

func GetTag(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	tag, err := recipes.GetTag(c.UserContext(), DB, id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, tag)
}

// ListIngredients searches by name prefix; the list is not paginated.
func ListIngredients(c *fiber.Ctx) error {
	list, err := recipes.SearchIngredients(c.UserContext(), DB, c.Query("name"))
	if err != nil {
		return utils.SendError(c, err)
	}
	if list == nil {
		list = []recipes.Ingredient{}
	}
	return utils.SendSuccess(c, list)
}

func GetIngredient(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	ing, err := recipes.GetIngredient(c.UserContext(), DB, id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, ing)
}
