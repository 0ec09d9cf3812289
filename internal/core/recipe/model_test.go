package recipe

import (
	"testing"

	"recipe-keeper/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	m.Run()
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "dessert", NormalizeCategory("Dessert"))
	assert.Equal(t, "breakfast", NormalizeCategory("  BREAKFAST "))
	// 未知分類原樣保留
	assert.Equal(t, "Baking", NormalizeCategory("Baking"))
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, KnownCategory("dinner"))
	assert.True(t, KnownCategory("DINNER"))
	assert.False(t, KnownCategory("baking"))
	assert.False(t, KnownCategory(""))
}

func TestSanitizeDropsEmptyInstructions(t *testing.T) {
	r := Recipe{
		Name:         "  Pancakes ",
		Instructions: []string{" Mix batter. ", "", "   ", "Cook on griddle."},
		IngredientGroups: []IngredientGroup{
			{Name: "Ingredients", Ingredients: []string{"flour", "", " milk "}},
		},
	}.Sanitize()

	assert.Equal(t, "Pancakes", r.Name)
	assert.Equal(t, []string{"Mix batter.", "Cook on griddle."}, r.Instructions)
	assert.Equal(t, []string{"flour", "milk"}, r.IngredientGroups[0].Ingredients)
}

func TestSanitizeSynthesizesDefaultGroup(t *testing.T) {
	r := Recipe{Name: "Toast", Instructions: []string{"Toast the bread."}}.Sanitize()

	require.Len(t, r.IngredientGroups, 1)
	assert.Equal(t, DefaultGroupName, r.IngredientGroups[0].Name)
	assert.Empty(t, r.IngredientGroups[0].Ingredients)
}

func TestSanitizeDefaultsGroupName(t *testing.T) {
	r := Recipe{
		Name: "Soup",
		IngredientGroups: []IngredientGroup{
			{Name: "  ", Ingredients: []string{"water"}},
		},
	}.Sanitize()

	assert.Equal(t, DefaultGroupName, r.IngredientGroups[0].Name)
}

func TestSanitizeNormalizesCategories(t *testing.T) {
	r := Recipe{
		Name:       "Cake",
		Categories: []string{"Dessert", "Weeknight", " snacks "},
	}.Sanitize()

	assert.Equal(t, []string{"dessert", "Weeknight", "snacks"}, r.Categories)
}

func TestFromStoredRowStorageNaming(t *testing.T) {
	row := map[string]interface{}{
		"id":           "abc-123",
		"recipe_name":  "Beef Stew",
		"categories":   []interface{}{"Dinner"},
		"instructions": []interface{}{"Brown the beef.", "Simmer."},
		"ingredient_groups": []interface{}{
			map[string]interface{}{
				"name":        "Stew",
				"ingredients": []interface{}{"beef", "carrots"},
			},
		},
	}

	r := FromStoredRow(row)

	assert.Equal(t, "abc-123", r.ID)
	assert.Equal(t, "Beef Stew", r.Name)
	assert.Equal(t, []string{"dinner"}, r.Categories)
	assert.Equal(t, []string{"Brown the beef.", "Simmer."}, r.Instructions)
	require.Len(t, r.IngredientGroups, 1)
	assert.Equal(t, "Stew", r.IngredientGroups[0].Name)
	assert.Equal(t, []string{"beef", "carrots"}, r.IngredientGroups[0].Ingredients)
}

func TestFromStoredRowCanonicalNaming(t *testing.T) {
	row := map[string]interface{}{
		"recipeName":   "Omelette",
		"categories":   []string{"breakfast"},
		"instructions": []string{"Beat eggs.", "Fry."},
		"ingredientGroups": []interface{}{
			map[string]interface{}{
				"name":        "Ingredients",
				"ingredients": []string{"eggs", "butter"},
			},
		},
	}

	r := FromStoredRow(row)

	assert.Equal(t, "Omelette", r.Name)
	assert.Equal(t, []string{"breakfast"}, r.Categories)
	require.Len(t, r.IngredientGroups, 1)
	assert.Equal(t, []string{"eggs", "butter"}, r.IngredientGroups[0].Ingredients)
}

func TestFromStoredRowPrefersStorageNaming(t *testing.T) {
	row := map[string]interface{}{
		"recipe_name": "Stored Name",
		"recipeName":  "Canonical Name",
	}

	r := FromStoredRow(row)

	assert.Equal(t, "Stored Name", r.Name)
}

func TestFromStoredRowMissingFields(t *testing.T) {
	r := FromStoredRow(map[string]interface{}{})

	// 缺失欄位產生空字串或空清單，不產生錯誤
	assert.Equal(t, "", r.Name)
	assert.Empty(t, r.Categories)
	assert.Empty(t, r.Instructions)
	assert.NotNil(t, r.IngredientGroups)
	assert.Empty(t, r.IngredientGroups)
}
