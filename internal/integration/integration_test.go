package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/server"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
)

type recipeBody struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Ingredients []uint `json:"ingredients"`
	KitchenID   uint   `json:"kitchen_id"`
}

type envelope struct {
	Text   string     `json:"text"`
	Recipe recipeBody `json:"recipe"`
}

func setupStack(t *testing.T, mutationLimit int) (http.Handler, testhelpers.Catalog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupPostgres(t)
	rdb := testhelpers.SetupRedis(t)
	catalog := testhelpers.SeedCatalog(t, db.DB,
		[]string{"Русская", "Итальянская"},
		[]string{"мука", "молоко", "яйца", "гуанчиале", "пармезан", "сахар"},
	)

	cfg := &config.Config{
		Environment:        config.Test,
		ServerHost:         "127.0.0.1",
		ServerPort:         "0",
		RateLimitRequests:  mutationLimit,
		RateLimitWindow:    time.Minute,
		CORSAllowedOrigins: []string{"*"},
	}
	limiter := middleware.NewRedisLimiter(rdb, middleware.RateLimitConfig{
		Window:    cfg.RateLimitWindow,
		Limit:     cfg.RateLimitRequests,
		KeyPrefix: fmt.Sprintf("rate_limit:%s", t.Name()),
	})

	srv := server.New(cfg, db, zaptest.NewLogger(t), server.WithLimiter(limiter))
	return srv.Handler(), catalog
}

func call(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRecipeCatalogEndToEnd(t *testing.T) {
	h, c := setupStack(t, 100)

	create := func(title, instruction, kitchen string, ingredients ...string) recipeBody {
		w := call(t, h, http.MethodPost, "/recipe/create", map[string]interface{}{
			"title":              title,
			"instruction":        instruction,
			"recipe_ingredients": c.IngredientIDs(ingredients...),
			"cooking_time":       30,
			"cooking_difficulty": "EASY",
			"kitchen_id":         c.Kitchens[kitchen],
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "success", env.Text)
		return env.Recipe
	}

	pancakes := create("Блины", "Смешать муку, молоко и яйца. Жарить блины на сковороде.", "Русская", "мука", "молоко", "яйца")
	carbonara := create("Карбонара", "Обжарить гуанчиале, смешать с яйцами и пармезаном.", "Итальянская", "яйца", "гуанчиале", "пармезан")
	create("Сырники", "Подавать с блинами и сметаной.", "Русская", "мука", "яйца", "сахар")

	t.Run("get returns ingredient ids", func(t *testing.T) {
		w := call(t, h, http.MethodGet, fmt.Sprintf("/recipe/%d", carbonara.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got struct {
			Recipe recipeBody `json:"recipe"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.ElementsMatch(t, c.IngredientIDs("яйца", "гуанчиале", "пармезан"), got.Recipe.Ingredients)
	})

	t.Run("filter eggs without milk", func(t *testing.T) {
		q := url.Values{"include": {"яйца"}, "exclude": {"молоко"}}
		w := call(t, h, http.MethodGet, "/recipe/filter-by-ingredients?"+q.Encode(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got []recipeBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		titles := []string{}
		for _, r := range got {
			titles = append(titles, r.Title)
		}
		assert.ElementsMatch(t, []string{"Карбонара", "Сырники"}, titles)
	})

	t.Run("search ranks title matches first", func(t *testing.T) {
		w := call(t, h, http.MethodGet, "/recipe/search?q="+url.QueryEscape("блинами"), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got []recipeBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, pancakes.ID, got[0].ID)
	})

	t.Run("patch reindexes search", func(t *testing.T) {
		w := call(t, h, http.MethodPatch, fmt.Sprintf("/recipe/%d", carbonara.ID), map[string]interface{}{
			"instruction": "Отварить спагетти.",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = call(t, h, http.MethodGet, "/recipe/search?q="+url.QueryEscape("спагетти"), nil)
		var got []recipeBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, carbonara.ID, got[0].ID)
	})

	t.Run("unknown kitchen is a reference error", func(t *testing.T) {
		w := call(t, h, http.MethodPatch, fmt.Sprintf("/recipe/%d", carbonara.ID), map[string]interface{}{
			"kitchen_id": 9999,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("ids beyond int4 range", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
			w := call(t, h, method, "/recipe/5000000000", map[string]interface{}{"title": "Оладьи"})
			assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", method, w.Body.String())
		}

		w := call(t, h, http.MethodPost, "/recipe/create", map[string]interface{}{
			"title":              "Оладьи",
			"instruction":        "Жарить.",
			"recipe_ingredients": []uint64{5000000000},
			"cooking_time":       15,
			"kitchen_id":         c.Kitchens["Русская"],
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"missing":["5000000000"]`)
	})

	t.Run("delete then get is not found", func(t *testing.T) {
		w := call(t, h, http.MethodDelete, fmt.Sprintf("/recipe/%d", pancakes.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"text":"Success delete"}`, w.Body.String())

		w = call(t, h, http.MethodGet, fmt.Sprintf("/recipe/%d", pancakes.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Recipe not found"}`, w.Body.String())

		w = call(t, h, http.MethodGet, "/ingredient", nil)
		assert.Contains(t, w.Body.String(), "молоко")
	})
}

func TestMutationsShareRedisWindow(t *testing.T) {
	h, c := setupStack(t, 2)

	body := map[string]interface{}{
		"title":              "Омлет",
		"instruction":        "Взбить яйца с молоком.",
		"recipe_ingredients": c.IngredientIDs("яйца", "молоко"),
		"cooking_time":       10,
		"kitchen_id":         c.Kitchens["Русская"],
	}

	assert.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/recipe/create", body).Code)
	assert.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/recipe/create", body).Code)

	w := call(t, h, http.MethodPost, "/recipe/create", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/recipe/1", nil).Code)
}
