package models_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mnuddindev/foodgram/internal/db/dbtest"
	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	tag := recipes.Tag{Name: "Quick Lunch", Color: "#E26C2D"}
	require.NoError(t, recipes.CreateTag(ctx, nil, db, &tag))
	assert.Equal(t, "quick-lunch", tag.Slug)

	for name, dup := range map[string]recipes.Tag{
		"same name":  {Name: "Quick Lunch", Color: "#000000", Slug: "other"},
		"same color": {Name: "Other", Color: "#E26C2D", Slug: "other"},
		"bad color":  {Name: "Other", Color: "red", Slug: "other"},
		"bad slug":   {Name: "Other", Color: "#111111", Slug: "no spaces"},
	} {
		err := recipes.CreateTag(ctx, nil, db, &dup)
		require.Error(t, err, name)
		assert.True(t, utils.IsKind(err, utils.KindValidation), name)
	}

	tags, err := recipes.ListTags(ctx, nil, db)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	got, err := recipes.GetTag(ctx, db, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag, *got)

	_, err = recipes.GetTag(ctx, db, 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFoundEntity))
}

func TestSearchIngredients(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	for _, ing := range []recipes.Ingredient{
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "brown sugar", MeasurementUnit: "g"},
		{Name: "a_b", MeasurementUnit: "g"},
		{Name: "axb", MeasurementUnit: "g"},
		{Name: "Мука", MeasurementUnit: "г"},
		{Name: "мёд", MeasurementUnit: "г"},
	} {
		ing := ing
		require.NoError(t, db.Create(&ing).Error)
	}

	names := func(prefix string) []string {
		list, err := recipes.SearchIngredients(ctx, db, prefix)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, i := range list {
			out = append(out, i.Name)
		}
		return out
	}

	assert.Equal(t, []string{"sugar"}, names("Su"))
	assert.Equal(t, []string{"Salt"}, names("sa"))
	assert.Equal(t, []string{"a_b"}, names("a_"), "wildcards in the prefix are literal")
	assert.Equal(t, []string{"Мука"}, names("му"))
	assert.Equal(t, []string{"Мука"}, names("МУК"))
	assert.Equal(t, []string{"мёд"}, names("МЁ"))
	assert.Len(t, names(""), 7)
	assert.Empty(t, names("zzz"))
}

func TestLoadIngredients(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	data := "flour,g\neggs,pcs\nflour,g\nbroken row\nmilk,ml,extra\n,g\n"
	created, skipped, err := recipes.LoadIngredients(ctx, db, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 3, skipped)

	created, _, err = recipes.LoadIngredients(ctx, db, strings.NewReader(data))
	require.NoError(t, err)
	assert.Zero(t, created, "loading twice creates nothing new")

	ing, isNew, err := recipes.GetOrCreateIngredient(ctx, db, "flour", "g")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "flour", ing.Name)
}

func TestMediaStore(t *testing.T) {
	media := recipes.NewMediaStore(t.TempDir(), "/media/")

	url, err := media.SaveBase64(pngPixel)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/recipes/images/"))
	assert.Equal(t, 1, storedImages(t, media))

	_, err = media.SaveBase64("%%%")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = media.SaveBase64("")
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	media.Remove("/elsewhere/file.png")
	assert.Equal(t, 1, storedImages(t, media))
	media.Remove(url)
	assert.Zero(t, storedImages(t, media))
}
