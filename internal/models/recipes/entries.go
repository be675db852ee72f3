package models

import (
	"context"
	"errors"
	"time"

	user "github.com/mnuddindev/foodgram/internal/models/user"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

// FavoriteEntry marks a recipe as a favorite of a user.
type FavoriteEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_pair;index" json:"recipe_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// CartEntry puts a recipe in a user's shopping cart.
type CartEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_pair" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_pair;index" json:"recipe_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// EntryKind selects the favorites or the shopping cart relation.
type EntryKind int

const (
	KindFavorite EntryKind = iota
	KindCart
)

func (k EntryKind) String() string {
	if k == KindCart {
		return "shopping_cart"
	}
	return "favorite"
}

func (k EntryKind) model() interface{} {
	if k == KindCart {
		return &CartEntry{}
	}
	return &FavoriteEntry{}
}

func (k EntryKind) entry(userID, recipeID uint) interface{} {
	if k == KindCart {
		return &CartEntry{UserID: userID, RecipeID: recipeID}
	}
	return &FavoriteEntry{UserID: userID, RecipeID: recipeID}
}

func (k EntryKind) alreadyAdded() string {
	if k == KindCart {
		return "Recipe is already in the shopping cart"
	}
	return "Recipe is already in favorites"
}

func (k EntryKind) notAdded() string {
	if k == KindCart {
		return "Recipe is not in the shopping cart"
	}
	return "Recipe is not in favorites"
}

// RecipeSummary is the short recipe form returned by the toggle endpoints
// and nested in subscriptions.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func (r Recipe) Summary() RecipeSummary {
	return RecipeSummary{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// AddEntry records (userID, recipeID) in the relation picked by kind.
// Adding an existing pair fails with AlreadyExists.
func AddEntry(ctx context.Context, db *gorm.DB, kind EntryKind, userID, recipeID uint) (*RecipeSummary, error) {
	var recipe Recipe
	if err := db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.EntityNotFound("Recipe not found")
		}
		return nil, utils.Internal(err, "Failed to fetch recipe")
	}

	exists, err := hasEntry(db.WithContext(ctx), kind, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.AlreadyExists(kind.alreadyAdded())
	}

	if err := db.WithContext(ctx).Create(kind.entry(userID, recipeID)).Error; err != nil {
		// A concurrent add can win between the check and the insert.
		if exists, checkErr := hasEntry(db.WithContext(ctx), kind, userID, recipeID); checkErr == nil && exists {
			return nil, utils.AlreadyExists(kind.alreadyAdded())
		}
		return nil, utils.Internal(err, "Failed to add recipe")
	}

	summary := recipe.Summary()
	return &summary, nil
}

// RemoveEntry deletes (userID, recipeID) from the relation picked by kind.
// Removing an absent pair fails with NotPresent.
func RemoveEntry(ctx context.Context, db *gorm.DB, kind EntryKind, userID, recipeID uint) error {
	var count int64
	if err := db.WithContext(ctx).Model(&Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return utils.Internal(err, "Failed to fetch recipe")
	}
	if count == 0 {
		return utils.EntityNotFound("Recipe not found")
	}

	res := db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(kind.model())
	if res.Error != nil {
		return utils.Internal(res.Error, "Failed to remove recipe")
	}
	if res.RowsAffected == 0 {
		return utils.NotPresent(kind.notAdded())
	}
	return nil
}

// RecipeFlags reports which of recipeIDs userID favorited and has in the
// cart. An anonymous caller (userID 0) gets empty maps.
func RecipeFlags(ctx context.Context, db *gorm.DB, userID uint, recipeIDs []uint) (favorited, inCart map[uint]bool, err error) {
	favorited = make(map[uint]bool, len(recipeIDs))
	inCart = make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	for _, set := range []struct {
		kind EntryKind
		out  map[uint]bool
	}{{KindFavorite, favorited}, {KindCart, inCart}} {
		var ids []uint
		err := db.WithContext(ctx).
			Model(set.kind.model()).
			Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
			Pluck("recipe_id", &ids).Error
		if err != nil {
			return nil, nil, utils.Internal(err, "Failed to resolve recipe flags")
		}
		for _, id := range ids {
			set.out[id] = true
		}
	}
	return favorited, inCart, nil
}

func hasEntry(tx *gorm.DB, kind EntryKind, userID, recipeID uint) (bool, error) {
	var count int64
	if err := tx.Model(kind.model()).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
		return false, utils.Internal(err, "Failed to check recipe entry")
	}
	return count > 0, nil
}
