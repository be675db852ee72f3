package models

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/gorm"
)

// RecipeFilter narrows the recipe list. All set criteria must hold; tags
// match when the recipe carries any of the listed slugs.
type RecipeFilter struct {
	Tags             []string
	AuthorID         *uint
	IsFavorited      bool
	IsInShoppingCart bool
}

// ParseRecipeFilter reads tags, author, is_favorited and is_in_shopping_cart
// from query parameters.
func ParseRecipeFilter(q url.Values) (RecipeFilter, error) {
	var f RecipeFilter

	for _, raw := range q["tags"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Tags = append(f.Tags, s)
			}
		}
	}

	if raw := strings.TrimSpace(q.Get("author")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return f, utils.InvalidFilter("author", raw)
		}
		author := uint(id)
		f.AuthorID = &author
	}

	var err error
	if f.IsFavorited, err = parseFlag(q, "is_favorited"); err != nil {
		return f, err
	}
	if f.IsInShoppingCart, err = parseFlag(q, "is_in_shopping_cart"); err != nil {
		return f, err
	}
	return f, nil
}

func parseFlag(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, utils.InvalidFilter(name, raw)
	}
	return v, nil
}

// Scope applies f to a query over recipes. Favorite and cart criteria are
// ignored for an anonymous caller (callerID 0).
func (f RecipeFilter) Scope(callerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(f.Tags) > 0 {
			sub := db.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.Tags)
			db = db.Where("recipes.id IN (?)", sub)
		}
		if f.AuthorID != nil {
			db = db.Where("recipes.author_id = ?", *f.AuthorID)
		}
		if callerID == 0 {
			return db
		}
		if f.IsFavorited {
			sub := db.Session(&gorm.Session{NewDB: true}).
				Model(&FavoriteEntry{}).
				Select("recipe_id").
				Where("user_id = ?", callerID)
			db = db.Where("recipes.id IN (?)", sub)
		}
		if f.IsInShoppingCart {
			sub := db.Session(&gorm.Session{NewDB: true}).
				Model(&CartEntry{}).
				Select("recipe_id").
				Where("user_id = ?", callerID)
			db = db.Where("recipes.id IN (?)", sub)
		}
		return db
	}
}
