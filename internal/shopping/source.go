package shopping

import "context"

// Line is one ingredient line of a cart recipe.
type Line struct {
	RecipeID uint
	Name     string
	Unit     string
	Amount   int
}

// Source defines the store reads the aggregator depends on
type Source interface {
	// CartRecipeIDs returns the recipes in the user's cart in the order they
	// were added.
	CartRecipeIDs(ctx context.Context, userID uint) ([]uint, error)
	// IngredientLines returns the ingredient lines of recipeIDs ordered by
	// recipe id then line id.
	IngredientLines(ctx context.Context, recipeIDs []uint) ([]Line, error)
}
