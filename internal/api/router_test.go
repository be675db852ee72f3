package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	routes "github.com/mnuddindev/foodgram/internal/api"
	"github.com/mnuddindev/foodgram/internal/config"
	"github.com/mnuddindev/foodgram/internal/db/dbtest"
	recipes "github.com/mnuddindev/foodgram/internal/models/recipes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pngPixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type client struct {
	t   *testing.T
	app *fiber.App
}

func newClient(t *testing.T) (*client, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	cfg := &config.Config{
		SecretKey:   "test-secret",
		TokenTTL:    time.Hour,
		MediaRoot:   t.TempDir(),
		MediaURL:    "/media",
		CORSOrigins: "*",
		PageSize:    6,
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &client{t: t, app: routes.NewApp(ctx, cfg, db, nil, nil)}, db
}

func (c *client) do(method, path, token string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, out
}

func (c *client) json(method, path, token string, body interface{}, wantStatus int) map[string]interface{} {
	c.t.Helper()
	resp, raw := c.do(method, path, token, body)
	require.Equal(c.t, wantStatus, resp.StatusCode, string(raw))
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return out
}

func (c *client) register(username string) string {
	c.t.Helper()
	c.json("POST", "/api/users/", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "s3cret-pass",
	}, fiber.StatusCreated)
	out := c.json("POST", "/api/auth/token/login/", "", map[string]string{
		"email":    username + "@example.com",
		"password": "s3cret-pass",
	}, fiber.StatusOK)
	return out["auth_token"].(string)
}

func seedCatalog(t *testing.T, db *gorm.DB) (recipes.Tag, recipes.Ingredient) {
	t.Helper()
	tag := recipes.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	require.NoError(t, recipes.CreateTag(context.Background(), nil, db, &tag))
	flour := recipes.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&flour).Error)
	return tag, flour
}

func recipeBody(tag recipes.Tag, flour recipes.Ingredient, amount int) map[string]interface{} {
	return map[string]interface{}{
		"ingredients":  []map[string]interface{}{{"id": flour.ID, "amount": amount}},
		"tags":         []uint{tag.ID},
		"image":        pngPixel,
		"name":         "Bread",
		"text":         "Knead and bake.",
		"cooking_time": 60,
	}
}

func TestRegistrationAndProfile(t *testing.T) {
	c, _ := newClient(t)
	token := c.register("alice")

	me := c.json("GET", "/api/users/me/", token, nil, fiber.StatusOK)
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, false, me["is_subscribed"])

	c.json("GET", "/api/users/me/", "", nil, fiber.StatusUnauthorized)
	c.json("GET", "/api/users/me/", "garbage", nil, fiber.StatusUnauthorized)

	c.json("POST", "/api/users/", "", map[string]string{
		"email": "me@example.com", "username": "me", "first_name": "A", "last_name": "B", "password": "s3cret-pass",
	}, fiber.StatusBadRequest)

	c.json("POST", "/api/auth/token/login/", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-pass",
	}, fiber.StatusBadRequest)

	c.json("POST", "/api/users/set_password/", token, map[string]string{
		"current_password": "s3cret-pass", "new_password": "n3w-secret-pass",
	}, fiber.StatusNoContent)
	c.json("POST", "/api/auth/token/login/", "", map[string]string{
		"email": "alice@example.com", "password": "n3w-secret-pass",
	}, fiber.StatusOK)

	users := c.json("GET", "/api/users/", "", nil, fiber.StatusOK)
	assert.EqualValues(t, 1, users["count"])

	c.json("POST", "/api/auth/token/logout/", token, nil, fiber.StatusNoContent)
}

func TestRecipeLifecycle(t *testing.T) {
	c, db := newClient(t)
	tag, flour := seedCatalog(t, db)
	alice := c.register("alice")
	bob := c.register("bob")

	c.json("POST", "/api/recipes/", "", recipeBody(tag, flour, 200), fiber.StatusUnauthorized)
	c.json("POST", "/api/recipes/", alice, recipeBody(tag, flour, 0), fiber.StatusBadRequest)

	created := c.json("POST", "/api/recipes/", alice, recipeBody(tag, flour, 200), fiber.StatusCreated)
	id := uint(created["id"].(float64))
	assert.Equal(t, false, created["is_favorited"])
	path := "/api/recipes/" + itoa(id) + "/"

	list := c.json("GET", "/api/recipes/?tags=lunch", "", nil, fiber.StatusOK)
	assert.EqualValues(t, 1, list["count"])
	c.json("GET", "/api/recipes/?page=2", "", nil, fiber.StatusNotFound)
	c.json("GET", "/api/recipes/?author=abc", "", nil, fiber.StatusBadRequest)

	c.json("PATCH", path, bob, map[string]string{"name": "Mine now"}, fiber.StatusForbidden)
	updated := c.json("PATCH", path, alice, map[string]string{"name": "Rye bread"}, fiber.StatusOK)
	assert.Equal(t, "Rye bread", updated["name"])

	fav := c.json("POST", path+"favorite/", bob, nil, fiber.StatusCreated)
	assert.Equal(t, "Rye bread", fav["name"])
	c.json("POST", path+"favorite/", bob, nil, fiber.StatusBadRequest)

	detail := c.json("GET", path, bob, nil, fiber.StatusOK)
	assert.Equal(t, true, detail["is_favorited"])
	assert.Equal(t, false, detail["is_in_shopping_cart"])

	favs := c.json("GET", "/api/recipes/?is_favorited=1", bob, nil, fiber.StatusOK)
	assert.EqualValues(t, 1, favs["count"])
	favs = c.json("GET", "/api/recipes/?is_favorited=1", alice, nil, fiber.StatusOK)
	assert.EqualValues(t, 0, favs["count"])

	c.json("DELETE", path+"favorite/", bob, nil, fiber.StatusNoContent)
	c.json("DELETE", path+"favorite/", bob, nil, fiber.StatusBadRequest)
	c.json("POST", "/api/recipes/999/favorite/", bob, nil, fiber.StatusNotFound)

	c.json("DELETE", path, bob, nil, fiber.StatusForbidden)
	c.json("DELETE", path, alice, nil, fiber.StatusNoContent)
	c.json("GET", path, "", nil, fiber.StatusNotFound)
}

func TestDownloadShoppingCart(t *testing.T) {
	c, db := newClient(t)
	tag, flour := seedCatalog(t, db)
	alice := c.register("alice")
	bob := c.register("bob")

	resp, body := c.do("GET", "/api/recipes/download_shopping_cart/", bob, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body)

	for _, amount := range []int{200, 300} {
		created := c.json("POST", "/api/recipes/", alice, recipeBody(tag, flour, amount), fiber.StatusCreated)
		c.json("POST", "/api/recipes/"+itoa(uint(created["id"].(float64)))+"/shopping_cart/", bob, nil, fiber.StatusCreated)
	}

	resp, body = c.do("GET", "/api/recipes/download_shopping_cart/", bob, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1) Flour - 500 (g)\n", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="bob_shopping_list.txt"`)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	_, again := c.do("GET", "/api/recipes/1/download_shopping_cart/", bob, nil)
	assert.Equal(t, body, again)

	c.json("GET", "/api/recipes/download_shopping_cart/", "", nil, fiber.StatusUnauthorized)
}

func TestSubscriptions(t *testing.T) {
	c, db := newClient(t)
	tag, flour := seedCatalog(t, db)
	alice := c.register("alice")
	bob := c.register("bob")
	for i := 0; i < 3; i++ {
		c.json("POST", "/api/recipes/", alice, recipeBody(tag, flour, 100), fiber.StatusCreated)
	}

	me := c.json("GET", "/api/users/me/", alice, nil, fiber.StatusOK)
	aliceID := itoa(uint(me["id"].(float64)))

	sub := c.json("POST", "/api/users/"+aliceID+"/subscribe/?recipes_limit=2", bob, nil, fiber.StatusCreated)
	assert.Equal(t, true, sub["is_subscribed"])
	assert.EqualValues(t, 3, sub["recipes_count"])
	assert.Len(t, sub["recipes"], 2)

	c.json("POST", "/api/users/"+aliceID+"/subscribe/", bob, nil, fiber.StatusBadRequest)
	c.json("POST", "/api/users/"+aliceID+"/subscribe/", alice, nil, fiber.StatusBadRequest)
	c.json("POST", "/api/users/999/subscribe/", bob, nil, fiber.StatusNotFound)

	subs := c.json("GET", "/api/users/subscriptions/?recipes_limit=1", bob, nil, fiber.StatusOK)
	assert.EqualValues(t, 1, subs["count"])
	results := subs["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Len(t, results[0].(map[string]interface{})["recipes"], 1)
	c.json("GET", "/api/users/subscriptions/?recipes_limit=x", bob, nil, fiber.StatusBadRequest)

	profile := c.json("GET", "/api/users/"+aliceID+"/", bob, nil, fiber.StatusOK)
	assert.Equal(t, true, profile["is_subscribed"])

	c.json("DELETE", "/api/users/"+aliceID+"/subscribe/", bob, nil, fiber.StatusNoContent)
	c.json("DELETE", "/api/users/"+aliceID+"/subscribe/", bob, nil, fiber.StatusBadRequest)
}

func TestCatalogEndpoints(t *testing.T) {
	c, db := newClient(t)
	tag, flour := seedCatalog(t, db)

	resp, raw := c.do("GET", "/api/tags/", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var tags []recipes.Tag
	require.NoError(t, json.Unmarshal(raw, &tags))
	assert.Equal(t, []recipes.Tag{tag}, tags)

	c.json("GET", "/api/tags/"+itoa(tag.ID)+"/", "", nil, fiber.StatusOK)
	c.json("GET", "/api/tags/999/", "", nil, fiber.StatusNotFound)

	resp, raw = c.do("GET", "/api/ingredients/?name=fl", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ingredients []recipes.Ingredient
	require.NoError(t, json.Unmarshal(raw, &ingredients))
	require.Len(t, ingredients, 1)
	assert.Equal(t, flour.ID, ingredients[0].ID)
	assert.Equal(t, "Flour", ingredients[0].Name)
	assert.Equal(t, "g", ingredients[0].MeasurementUnit)

	got := c.json("GET", "/api/ingredients/"+itoa(flour.ID)+"/", "", nil, fiber.StatusOK)
	assert.Equal(t, "g", got["measurement_unit"])
}
