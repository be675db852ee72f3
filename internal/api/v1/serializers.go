package v1

import (
	"context"

	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	user "github.com/mnuddindev/foodgram/internal/models/user"
)

type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type IngredientLineResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                     `json:"id"`
	Tags             []recipes.Tag            `json:"tags"`
	Author           UserResponse             `json:"author"`
	Ingredients      []IngredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []recipes.RecipeSummary `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

func newUserResponse(u user.User, subscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// serializeUsers attaches is_subscribed for callerID to each user.
func serializeUsers(ctx context.Context, callerID uint, users []user.User) ([]UserResponse, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := user.SubscribedTo(ctx, DB, callerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u, subscribed[u.ID]))
	}
	return out, nil
}

// serializeRecipes attaches the caller-dependent flags to each recipe.
func serializeRecipes(ctx context.Context, callerID uint, list []recipes.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]uint, 0, len(list))
	authorIDs := make([]uint, 0, len(list))
	for _, r := range list {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, inCart, err := recipes.RecipeFlags(ctx, DB, callerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := user.SubscribedTo(ctx, DB, callerID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeResponse, 0, len(list))
	for _, r := range list {
		lines := make([]IngredientLineResponse, 0, len(r.Ingredients))
		for _, l := range r.Ingredients {
			lines = append(lines, IngredientLineResponse{
				ID:              l.IngredientID,
				Name:            l.Ingredient.Name,
				MeasurementUnit: l.Ingredient.MeasurementUnit,
				Amount:          l.Amount,
			})
		}
		tags := r.Tags
		if tags == nil {
			tags = []recipes.Tag{}
		}
		out = append(out, RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           newUserResponse(r.Author, subscribed[r.AuthorID]),
			Ingredients:      lines,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}
	return out, nil
}

func serializeRecipe(ctx context.Context, callerID uint, r *recipes.Recipe) (*RecipeResponse, error) {
	out, err := serializeRecipes(ctx, callerID, []recipes.Recipe{*r})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// serializeSubscriptions expands authors with their newest recipes.
// recipesLimit <= 0 keeps every recipe.
func serializeSubscriptions(ctx context.Context, callerID uint, authors []user.User, recipesLimit int) ([]SubscriptionResponse, error) {
	users, err := serializeUsers(ctx, callerID, authors)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	byAuthor, err := recipes.AuthorRecipes(ctx, DB, ids, recipesLimit)
	if err != nil {
		return nil, err
	}
	counts, err := recipes.CountRecipesByAuthor(ctx, DB, ids)
	if err != nil {
		return nil, err
	}

	out := make([]SubscriptionResponse, 0, len(users))
	for _, u := range users {
		summaries := make([]recipes.RecipeSummary, 0, len(byAuthor[u.ID]))
		for _, r := range byAuthor[u.ID] {
			summaries = append(summaries, r.Summary())
		}
		out = append(out, SubscriptionResponse{
			UserResponse: u,
			Recipes:      summaries,
			RecipesCount: counts[u.ID],
		})
	}
	return out, nil
}
