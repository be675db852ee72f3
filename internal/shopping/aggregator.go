package shopping

import (
	"context"
	"fmt"
	"strings"
)

// Item is one consolidated purchase line.
type Item struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Unit   string `json:"measurement_unit"`
	Amount int    `json:"amount"`
}

// Report is the merged shopping list of a cart.
type Report struct {
	Items []Item `json:"items"`
}

func (r Report) Empty() bool {
	return len(r.Items) == 0
}

// String renders the report one item per line, numbered from 1.
func (r Report) String() string {
	var b strings.Builder
	for _, it := range r.Items {
		fmt.Fprintf(&b, "%d) %s - %d (%s)\n", it.Index, it.Name, it.Amount, it.Unit)
	}
	return b.String()
}

type itemKey struct {
	name string
	unit string
}

// Aggregator builds shopping lists from a Source.
type Aggregator struct {
	source Source
}

func NewAggregator(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// BuildShoppingList merges the ingredient lines of every recipe in the
// user's cart, summing amounts per (name, unit). Items keep the order in
// which their key first appears walking the cart then each recipe's lines.
func (a *Aggregator) BuildShoppingList(ctx context.Context, userID uint) (Report, error) {
	recipeIDs, err := a.source.CartRecipeIDs(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	if len(recipeIDs) == 0 {
		return Report{}, nil
	}

	lines, err := a.source.IngredientLines(ctx, recipeIDs)
	if err != nil {
		return Report{}, err
	}

	byRecipe := make(map[uint][]Line, len(recipeIDs))
	for _, l := range lines {
		byRecipe[l.RecipeID] = append(byRecipe[l.RecipeID], l)
	}

	var items []Item
	index := make(map[itemKey]int)
	for _, id := range recipeIDs {
		for _, l := range byRecipe[id] {
			k := itemKey{name: l.Name, unit: l.Unit}
			if i, ok := index[k]; ok {
				items[i].Amount += l.Amount
				continue
			}
			index[k] = len(items)
			items = append(items, Item{Index: len(items) + 1, Name: l.Name, Unit: l.Unit, Amount: l.Amount})
		}
	}
	return Report{Items: items}, nil
}
