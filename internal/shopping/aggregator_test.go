package shopping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	carts map[uint][]uint
	lines []Line
	err   error
	calls int
}

func (f *fakeSource) CartRecipeIDs(_ context.Context, userID uint) ([]uint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.carts[userID], nil
}

func (f *fakeSource) IngredientLines(_ context.Context, recipeIDs []uint) ([]Line, error) {
	f.calls++
	want := make(map[uint]bool, len(recipeIDs))
	for _, id := range recipeIDs {
		want[id] = true
	}
	var out []Line
	for _, l := range f.lines {
		if want[l.RecipeID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func TestBuildShoppingListMergesSameIngredient(t *testing.T) {
	src := &fakeSource{
		carts: map[uint][]uint{1: {10, 20}},
		lines: []Line{
			{RecipeID: 10, Name: "Flour", Unit: "g", Amount: 200},
			{RecipeID: 10, Name: "Egg", Unit: "pcs", Amount: 2},
			{RecipeID: 20, Name: "Flour", Unit: "g", Amount: 300},
		},
	}

	report, err := NewAggregator(src).BuildShoppingList(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, report.Items, 2)
	assert.Equal(t, Item{Index: 1, Name: "Flour", Unit: "g", Amount: 500}, report.Items[0])
	assert.Equal(t, Item{Index: 2, Name: "Egg", Unit: "pcs", Amount: 2}, report.Items[1])
	assert.Equal(t, "1) Flour - 500 (g)\n2) Egg - 2 (pcs)\n", report.String())
}

func TestBuildShoppingListKeepsUnitsApart(t *testing.T) {
	src := &fakeSource{
		carts: map[uint][]uint{1: {10, 20}},
		lines: []Line{
			{RecipeID: 10, Name: "Sugar", Unit: "g", Amount: 50},
			{RecipeID: 20, Name: "Sugar", Unit: "tbsp", Amount: 2},
		},
	}

	report, err := NewAggregator(src).BuildShoppingList(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "1) Sugar - 50 (g)\n2) Sugar - 2 (tbsp)\n", report.String())
}

func TestBuildShoppingListFollowsCartOrder(t *testing.T) {
	src := &fakeSource{
		carts: map[uint][]uint{1: {20, 10}},
		lines: []Line{
			{RecipeID: 10, Name: "Milk", Unit: "ml", Amount: 100},
			{RecipeID: 20, Name: "Salt", Unit: "g", Amount: 5},
			{RecipeID: 20, Name: "Milk", Unit: "ml", Amount: 50},
		},
	}

	report, err := NewAggregator(src).BuildShoppingList(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "1) Salt - 5 (g)\n2) Milk - 150 (ml)\n", report.String())
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	src := &fakeSource{carts: map[uint][]uint{}}

	report, err := NewAggregator(src).BuildShoppingList(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Equal(t, "", report.String())
	assert.Zero(t, src.calls, "lines are not read for an empty cart")
}

func TestBuildShoppingListIsStable(t *testing.T) {
	src := &fakeSource{
		carts: map[uint][]uint{1: {1, 2, 3}},
		lines: []Line{
			{RecipeID: 1, Name: "A", Unit: "g", Amount: 1},
			{RecipeID: 1, Name: "B", Unit: "g", Amount: 1},
			{RecipeID: 2, Name: "C", Unit: "g", Amount: 1},
			{RecipeID: 2, Name: "A", Unit: "g", Amount: 1},
			{RecipeID: 3, Name: "D", Unit: "g", Amount: 1},
			{RecipeID: 3, Name: "B", Unit: "g", Amount: 1},
		},
	}
	agg := NewAggregator(src)

	first, err := agg.BuildShoppingList(context.Background(), 1)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := agg.BuildShoppingList(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, first.String(), again.String())
	}
}

func TestBuildShoppingListPropagatesSourceError(t *testing.T) {
	boom := errors.New("store down")
	_, err := NewAggregator(&fakeSource{err: boom}).BuildShoppingList(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}
