package shopping

import (
	"context"

	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

// GormSource reads carts and ingredient lines from the relational store.
type GormSource struct {
	DB *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{DB: db}
}

func (s *GormSource) CartRecipeIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).
		Model(&recipes.CartEntry{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, utils.Internal(err, "Failed to read shopping cart")
	}
	return ids, nil
}

func (s *GormSource) IngredientLines(ctx context.Context, recipeIDs []uint) ([]Line, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}

	var lines []Line
	err := s.DB.WithContext(ctx).
		Table("recipe_ingredients").
		Select("recipe_ingredients.recipe_id AS recipe_id, ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", recipeIDs).
		Order("recipe_ingredients.recipe_id").
		Order("recipe_ingredients.id").
		Scan(&lines).Error
	if err != nil {
		return nil, utils.Internal(err, "Failed to read recipe ingredients")
	}
	return lines, nil
}
