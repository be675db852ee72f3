package models

import (
	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	user "github.com/mnuddindev/foodgram/internal/models/user"
)

// RegisterModels lists every table in dependency order for AutoMigrate.
func RegisterModels() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Subscription{},
		&recipes.Tag{},
		&recipes.Ingredient{},
		&recipes.Recipe{},
		&recipes.RecipeTag{},
		&recipes.RecipeIngredient{},
		&recipes.FavoriteEntry{},
		&recipes.CartEntry{},
	}
}

type (
	User             = user.User
	Subscription     = user.Subscription
	Tag              = recipes.Tag
	Ingredient       = recipes.Ingredient
	Recipe           = recipes.Recipe
	RecipeTag        = recipes.RecipeTag
	RecipeIngredient = recipes.RecipeIngredient
	FavoriteEntry    = recipes.FavoriteEntry
	CartEntry        = recipes.CartEntry
)

var (
	NewUser               = user.NewUser
	CreateTag             = recipes.CreateTag
	CreateRecipe          = recipes.CreateRecipe
	GetOrCreateIngredient = recipes.GetOrCreateIngredient
)
