package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipes() []Recipe {
	return []Recipe{
		{
			Name:       "Apple Pie",
			Categories: []string{"dessert"},
			IngredientGroups: []IngredientGroup{
				{Name: "Filling", Ingredients: []string{"apples", "sugar"}},
				{Name: "Crust", Ingredients: []string{"flour", "butter"}},
			},
		},
		{
			Name:       "Avocado Toast",
			Categories: []string{"breakfast", "snacks"},
			IngredientGroups: []IngredientGroup{
				{Name: "Ingredients", Ingredients: []string{"avocado", "bread"}},
			},
		},
		{
			Name:       "Beef Stew",
			Categories: []string{"dinner"},
			IngredientGroups: []IngredientGroup{
				{Name: "Ingredients", Ingredients: []string{"beef", "carrots"}},
			},
		},
	}
}

func TestFilterByCategory(t *testing.T) {
	recipes := sampleRecipes()

	out := FilterByCategory(recipes, "breakfast")
	require.Len(t, out, 1)
	assert.Equal(t, "Avocado Toast", out[0].Name)

	// 不分大小寫
	out = FilterByCategory(recipes, "DESSERT")
	require.Len(t, out, 1)
	assert.Equal(t, "Apple Pie", out[0].Name)
}

func TestFilterByCategoryAll(t *testing.T) {
	recipes := sampleRecipes()

	assert.Equal(t, recipes, FilterByCategory(recipes, CategoryAll))
	assert.Equal(t, recipes, FilterByCategory(recipes, "All"))
	assert.Equal(t, recipes, FilterByCategory(recipes, ""))
}

func TestFilterByLetter(t *testing.T) {
	recipes := sampleRecipes()

	out := FilterByLetter(recipes, "a")
	require.Len(t, out, 2)
	assert.Equal(t, "Apple Pie", out[0].Name)
	assert.Equal(t, "Avocado Toast", out[1].Name)

	out = FilterByLetter(recipes, "B")
	require.Len(t, out, 1)
	assert.Equal(t, "Beef Stew", out[0].Name)

	assert.Equal(t, recipes, FilterByLetter(recipes, ""))
}

func TestFilterByLetterIdempotent(t *testing.T) {
	recipes := sampleRecipes()

	once := FilterByLetter(recipes, "a")
	twice := FilterByLetter(once, "a")
	assert.Equal(t, once, twice)
}

func TestApplyFiltersComposition(t *testing.T) {
	recipes := sampleRecipes()

	// 字母在分類過濾後的集合內收窄
	out := ApplyFilters(recipes, "breakfast", "a")
	require.Len(t, out, 1)
	assert.Equal(t, "Avocado Toast", out[0].Name)

	out = ApplyFilters(recipes, "breakfast", "b")
	assert.Empty(t, out)
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	recipes := sampleRecipes()

	FilterByCategory(recipes, "dessert")
	FilterByLetter(recipes, "b")
	FilterByKeyword(recipes, []string{"beef"})

	assert.Equal(t, sampleRecipes(), recipes)
}

func TestMatchesKeyword(t *testing.T) {
	r := sampleRecipes()[0]

	// 名稱、食材、分類任一符合即可
	assert.True(t, MatchesKeyword(r, "apple"))
	assert.True(t, MatchesKeyword(r, "FLOUR"))
	assert.True(t, MatchesKeyword(r, "dessert"))
	assert.False(t, MatchesKeyword(r, "chicken"))
}

func TestFilterByKeyword(t *testing.T) {
	recipes := sampleRecipes()

	out := FilterByKeyword(recipes, []string{"beef", "avocado"})
	require.Len(t, out, 2)
	assert.Equal(t, "Avocado Toast", out[0].Name)
	assert.Equal(t, "Beef Stew", out[1].Name)

	assert.Empty(t, FilterByKeyword(recipes, []string{"chicken"}))
	assert.Empty(t, FilterByKeyword(recipes, nil))
	assert.Empty(t, FilterByKeyword(recipes, []string{""}))
}
