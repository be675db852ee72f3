package models

import (
	"context"
	"errors"
	"strings"
	"time"

	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 1440
	MinAmount      = 1
	MaxAmount      = 1000
)

var validate = utils.NewValidator()

type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"not null;index:idx_recipe_author" json:"author_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Image       string    `gorm:"size:500;not null" json:"image"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1 AND cooking_time <= 1440" json:"cooking_time"`
	PubDate     time.Time `gorm:"autoCreateTime;index:idx_recipe_pub_date" json:"pub_date"`

	Author      user.User          `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

// RecipeIngredient is one ingredient line of a recipe.
type RecipeIngredient struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RecipeID     uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair" json:"recipe_id"`
	IngredientID uint `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair;index" json:"ingredient_id"`
	Amount       int  `gorm:"not null;check:chk_recipe_ingredient_amount,amount >= 1 AND amount <= 1000" json:"amount"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT" json:"ingredient"`
}

// RecipeTag is a row of the recipe/tag join table.
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// IngredientAmount references an ingredient with the amount a recipe needs.
type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"min=1,max=1000"`
}

// RecipeInput is the full payload of a new recipe. Image is base64 data.
type RecipeInput struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []uint             `json:"tags" validate:"required,min=1,dive,gt=0"`
	Image       string             `json:"image" validate:"required"`
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"min=1,max=1440"`
}

// RecipePatch carries the fields a partial update replaces.
type RecipePatch struct {
	Ingredients *[]IngredientAmount `json:"ingredients"`
	Tags        *[]uint             `json:"tags"`
	Image       *string             `json:"image"`
	Name        *string             `json:"name"`
	Text        *string             `json:"text"`
	CookingTime *int                `json:"cooking_time"`
}

// ValidateRecipeInput applies field rules and rejects repeated ingredients or tags.
func ValidateRecipeInput(in *RecipeInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Text = strings.TrimSpace(in.Text)

	if err := validate.Validate(in); err != nil {
		return err
	}

	ids := make([]uint, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		ids = append(ids, line.ID)
	}
	if utils.HasDuplicates(ids) {
		return utils.Validation("Ingredients must not repeat within a recipe")
	}
	if utils.HasDuplicates(in.Tags) {
		return utils.Validation("Tags must not repeat within a recipe")
	}
	return nil
}

// CreateRecipe stores a recipe with its tags and ingredient lines in one
// transaction. Nothing is persisted when any part fails.
func CreateRecipe(ctx context.Context, db *gorm.DB, media *MediaStore, authorID uint, in RecipeInput) (*Recipe, error) {
	if err := ValidateRecipeInput(&in); err != nil {
		return nil, err
	}

	imageURL, err := media.SaveBase64(in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Image:       imageURL,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, in.Ingredients, in.Tags); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return utils.Internal(err, "Failed to create recipe")
		}
		if err := replaceTags(tx, recipe.ID, in.Tags); err != nil {
			return err
		}
		return replaceIngredients(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		media.Remove(imageURL)
		return nil, err
	}

	return GetRecipe(ctx, db, recipe.ID)
}

// UpdateRecipe applies patch to a recipe owned by callerID.
func UpdateRecipe(ctx context.Context, db *gorm.DB, media *MediaStore, callerID, recipeID uint, patch RecipePatch) (*Recipe, error) {
	current, err := GetRecipe(ctx, db, recipeID)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != callerID {
		return nil, utils.ErrForbidden.WithCause(nil)
	}

	merged := RecipeInput{
		Image:       current.Image,
		Name:        current.Name,
		Text:        current.Text,
		CookingTime: current.CookingTime,
	}
	for _, t := range current.Tags {
		merged.Tags = append(merged.Tags, t.ID)
	}
	for _, line := range current.Ingredients {
		merged.Ingredients = append(merged.Ingredients, IngredientAmount{ID: line.IngredientID, Amount: line.Amount})
	}
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Text != nil {
		merged.Text = *patch.Text
	}
	if patch.CookingTime != nil {
		merged.CookingTime = *patch.CookingTime
	}
	if patch.Tags != nil {
		merged.Tags = *patch.Tags
	}
	if patch.Ingredients != nil {
		merged.Ingredients = *patch.Ingredients
	}
	if err := ValidateRecipeInput(&merged); err != nil {
		return nil, err
	}

	newImage := ""
	if patch.Image != nil {
		if newImage, err = media.SaveBase64(*patch.Image); err != nil {
			return nil, err
		}
		merged.Image = newImage
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, merged.Ingredients, merged.Tags); err != nil {
			return err
		}
		err := tx.Model(&Recipe{}).Where("id = ?", recipeID).Updates(map[string]interface{}{
			"name":         merged.Name,
			"text":         merged.Text,
			"cooking_time": merged.CookingTime,
			"image":        merged.Image,
		}).Error
		if err != nil {
			return utils.Internal(err, "Failed to update recipe")
		}
		if patch.Tags != nil {
			if err := replaceTags(tx, recipeID, merged.Tags); err != nil {
				return err
			}
		}
		if patch.Ingredients != nil {
			return replaceIngredients(tx, recipeID, merged.Ingredients)
		}
		return nil
	})
	if err != nil {
		if newImage != "" {
			media.Remove(newImage)
		}
		return nil, err
	}
	if newImage != "" {
		media.Remove(current.Image)
	}

	return GetRecipe(ctx, db, recipeID)
}

// DeleteRecipe removes a recipe owned by callerID together with its lines,
// tag links, favorite and cart entries.
func DeleteRecipe(ctx context.Context, db *gorm.DB, media *MediaStore, callerID, recipeID uint) error {
	var recipe Recipe
	if err := db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.EntityNotFound("Recipe not found")
		}
		return utils.Internal(err, "Failed to fetch recipe")
	}
	if recipe.AuthorID != callerID {
		return utils.ErrForbidden.WithCause(nil)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&RecipeIngredient{}, &RecipeTag{}, &FavoriteEntry{}, &CartEntry{}} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(model).Error; err != nil {
				return utils.Internal(err, "Failed to delete recipe relations")
			}
		}
		if err := tx.Delete(&Recipe{}, recipeID).Error; err != nil {
			return utils.Internal(err, "Failed to delete recipe")
		}
		return nil
	})
	if err != nil {
		return err
	}

	media.Remove(recipe.Image)
	return nil
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient")
}

// GetRecipe loads a recipe with author, tags and ingredient lines.
func GetRecipe(ctx context.Context, db *gorm.DB, id uint) (*Recipe, error) {
	var recipe Recipe
	if err := db.WithContext(ctx).Scopes(withDetails).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.EntityNotFound("Recipe not found")
		}
		return nil, utils.Internal(err, "Failed to fetch recipe")
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes matching filter, newest first.
func ListRecipes(ctx context.Context, db *gorm.DB, filter RecipeFilter, callerID uint, p utils.Pagination) ([]Recipe, int64, error) {
	var count int64
	base := db.WithContext(ctx).Model(&Recipe{}).Scopes(filter.Scope(callerID))
	if err := base.Count(&count).Error; err != nil {
		return nil, 0, utils.Internal(err, "Failed to count recipes")
	}

	var recipes []Recipe
	err := db.WithContext(ctx).
		Scopes(filter.Scope(callerID), withDetails).
		Order("recipes.pub_date DESC").
		Order("recipes.id DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, utils.Internal(err, "Failed to fetch recipes")
	}
	return recipes, count, nil
}

// AuthorRecipes returns each author's newest recipes; limit <= 0 means all.
func AuthorRecipes(ctx context.Context, db *gorm.DB, authorIDs []uint, limit int) (map[uint][]Recipe, error) {
	out := make(map[uint][]Recipe, len(authorIDs))
	for _, id := range authorIDs {
		query := db.WithContext(ctx).
			Where("author_id = ?", id).
			Order("pub_date DESC").
			Order("id DESC")
		if limit > 0 {
			query = query.Limit(limit)
		}
		var recipes []Recipe
		if err := query.Find(&recipes).Error; err != nil {
			return nil, utils.Internal(err, "Failed to fetch author recipes")
		}
		out[id] = recipes
	}
	return out, nil
}

// CountRecipesByAuthor counts recipes per author.
func CountRecipesByAuthor(ctx context.Context, db *gorm.DB, authorIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	err := db.WithContext(ctx).
		Model(&Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Internal(err, "Failed to count author recipes")
	}
	for _, r := range rows {
		out[r.AuthorID] = r.Total
	}
	return out, nil
}

func checkReferences(tx *gorm.DB, lines []IngredientAmount, tagIDs []uint) error {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ID)
	}

	var count int64
	if err := tx.Model(&Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return utils.Internal(err, "Failed to check ingredients")
	}
	if count != int64(len(ids)) {
		return utils.EntityNotFound("Ingredient not found")
	}

	if err := tx.Model(&Tag{}).Where("id IN ?", tagIDs).Count(&count).Error; err != nil {
		return utils.Internal(err, "Failed to check tags")
	}
	if count != int64(len(tagIDs)) {
		return utils.EntityNotFound("Tag not found")
	}
	return nil
}

func replaceTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeTag{}).Error; err != nil {
		return utils.Internal(err, "Failed to clear recipe tags")
	}
	rows := make([]RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, RecipeTag{RecipeID: recipeID, TagID: id})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return utils.Internal(err, "Failed to link recipe tags")
	}
	return nil
}

func replaceIngredients(tx *gorm.DB, recipeID uint, lines []IngredientAmount) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeIngredient{}).Error; err != nil {
		return utils.Internal(err, "Failed to clear recipe ingredients")
	}
	rows := make([]RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, RecipeIngredient{RecipeID: recipeID, IngredientID: line.ID, Amount: line.Amount})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Validation("Ingredients must not repeat within a recipe")
		}
		return utils.Internal(err, "Failed to store recipe ingredients")
	}
	return nil
}
