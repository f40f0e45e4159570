package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

func init() {
	Setup()
}

func validCreate() types.CreateRecipeRequest {
	return types.CreateRecipeRequest{
		Title:             "Carbonara",
		Instruction:       "Boil pasta, mix with eggs and guanciale.",
		RecipeIngredients: []uint{1, 2, 3},
		CookingTime:       30,
		CookingDifficulty: model.DifficultyMedium,
		KitchenID:         1,
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	details, ok := Describe(err)
	require.True(t, ok, "expected an input error, got %v", err)
	out := make(map[string]string, len(details))
	for _, d := range details {
		out[d.Field] = d.Reason
	}
	return out
}

func TestCreateRecipeRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.CreateRecipeRequest)
		field  string
	}{
		{name: "missing title", mutate: func(r *types.CreateRecipeRequest) { r.Title = "" }, field: "title"},
		{name: "blank title", mutate: func(r *types.CreateRecipeRequest) { r.Title = "   " }, field: "title"},
		{name: "long title", mutate: func(r *types.CreateRecipeRequest) { r.Title = strings.Repeat("a", 71) }, field: "title"},
		{name: "missing instruction", mutate: func(r *types.CreateRecipeRequest) { r.Instruction = "" }, field: "instruction"},
		{name: "no ingredients", mutate: func(r *types.CreateRecipeRequest) { r.RecipeIngredients = []uint{} }, field: "recipe_ingredients"},
		{name: "zero ingredient id", mutate: func(r *types.CreateRecipeRequest) { r.RecipeIngredients = []uint{1, 0} }, field: "recipe_ingredients[1]"},
		{name: "zero cooking time", mutate: func(r *types.CreateRecipeRequest) { r.CookingTime = 0 }, field: "cooking_time"},
		{name: "negative cooking time", mutate: func(r *types.CreateRecipeRequest) { r.CookingTime = -5 }, field: "cooking_time"},
		{name: "unknown difficulty", mutate: func(r *types.CreateRecipeRequest) { r.CookingDifficulty = "EXTREME" }, field: "cooking_difficulty"},
		{name: "missing kitchen", mutate: func(r *types.CreateRecipeRequest) { r.KitchenID = 0 }, field: "kitchen_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			err := Struct(&req)
			require.Error(t, err)
			assert.Contains(t, fields(t, err), tt.field)
		})
	}

	t.Run("valid", func(t *testing.T) {
		req := validCreate()
		assert.NoError(t, Struct(&req))
	})

	t.Run("difficulty defaults to medium", func(t *testing.T) {
		req := validCreate()
		req.CookingDifficulty = ""
		require.NoError(t, Struct(&req))
		assert.Equal(t, model.DifficultyMedium, req.Difficulty())
	})
}

func TestUpdateRecipeRequestValidation(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		req := types.UpdateRecipeRequest{}
		assert.NoError(t, Struct(&req))
		assert.True(t, req.IsEmpty())
	})

	t.Run("kitchen id and name are exclusive", func(t *testing.T) {
		var req types.UpdateRecipeRequest
		require.NoError(t, json.Unmarshal([]byte(`{"kitchen_id":1,"kitchen_name":"Italian"}`), &req))
		got := fields(t, Struct(&req))
		assert.Equal(t, "cannot be combined with kitchen_name", got["kitchen_id"])
	})

	t.Run("ingredient ids and names are exclusive", func(t *testing.T) {
		var req types.UpdateRecipeRequest
		require.NoError(t, json.Unmarshal([]byte(`{"recipe_ingredients":[1],"ingredient_names":["eggs"]}`), &req))
		assert.Contains(t, fields(t, Struct(&req)), "recipe_ingredients")
	})

	t.Run("present fields are checked", func(t *testing.T) {
		var req types.UpdateRecipeRequest
		require.NoError(t, json.Unmarshal([]byte(`{"cooking_time":0,"cooking_difficulty":"SOMETIMES","ingredient_names":[]}`), &req))
		got := fields(t, Struct(&req))
		assert.Contains(t, got, "cooking_time")
		assert.Contains(t, got, "cooking_difficulty")
		assert.Contains(t, got, "ingredient_names")
		assert.False(t, req.IsEmpty())
	})
}

func TestFilterQueryNormalize(t *testing.T) {
	q := types.FilterQuery{
		Include: []string{"eggs, milk", " eggs", ""},
		Exclude: []string{"sugar,,salt"},
	}
	q.Normalize()
	assert.Equal(t, []string{"eggs", "milk"}, q.Include)
	assert.Equal(t, []string{"sugar", "salt"}, q.Exclude)
	assert.Empty(t, q.Conflicts())

	q.Exclude = append(q.Exclude, "milk")
	assert.Equal(t, []string{"milk"}, q.Conflicts())

	q.Include = []string{strings.Repeat("x", 31)}
	assert.Contains(t, fields(t, Struct(&q)), "include[0]")
}

func TestSearchQueryValidation(t *testing.T) {
	assert.Contains(t, fields(t, Struct(&types.SearchQuery{})), "q")
	assert.Contains(t, fields(t, Struct(&types.SearchQuery{Q: "  "})), "q")
	assert.Contains(t, fields(t, Struct(&types.SearchQuery{Q: "паста", Limit: 500})), "limit")
	assert.NoError(t, Struct(&types.SearchQuery{Q: "паста"}))
}

func TestDescribeDecodeErrors(t *testing.T) {
	var req types.CreateRecipeRequest
	err := json.Unmarshal([]byte(`{"cooking_time":"soon"}`), &req)
	assert.Equal(t, map[string]string{"cooking_time": "must be an integer"}, fields(t, err))

	err = json.Unmarshal([]byte(`{"title":`), &req)
	_, ok := Describe(err)
	assert.True(t, ok)

	got := fields(t, Field("include", "listed in exclude as well"))
	assert.Equal(t, "listed in exclude as well", got["include"])

	_, ok = Describe(assert.AnError)
	assert.False(t, ok)
}
