package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)
	m.Run()
}

// fakeStore 供路由測試使用的記憶體存儲
type fakeStore struct {
	recipes map[string][]recipe.Recipe // ownerID -> recipes
}

func newFakeStore() *fakeStore {
	return &fakeStore{recipes: map[string][]recipe.Recipe{}}
}

func (s *fakeStore) Create(_ context.Context, ownerID string, r recipe.Recipe) (recipe.Recipe, error) {
	if ownerID == "" {
		return recipe.Recipe{}, common.ErrNotAuthenticated
	}
	r.ID = "fake-id"
	s.recipes[ownerID] = append([]recipe.Recipe{r}, s.recipes[ownerID]...)
	return r, nil
}

func (s *fakeStore) List(_ context.Context, ownerID string) ([]recipe.Recipe, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	return s.recipes[ownerID], nil
}

func (s *fakeStore) Update(_ context.Context, ownerID, id string, r recipe.Recipe) (recipe.Recipe, error) {
	if ownerID == "" {
		return recipe.Recipe{}, common.ErrNotAuthenticated
	}
	r.ID = id
	return r, nil
}

func (s *fakeStore) Delete(_ context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrNotAuthenticated
	}
	return nil
}

func (s *fakeStore) Search(_ context.Context, ownerID, term string) ([]recipe.Recipe, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	out := []recipe.Recipe{}
	for _, r := range s.recipes[ownerID] {
		if recipe.MatchesKeyword(r, term) {
			out = append(out, r)
		}
	}
	return out, nil
}

// stubGenerator 固定回應的文字生成器替身
type stubGenerator struct {
	response string
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.response, nil
}

// stubEngine 固定回應的辨識引擎替身
type stubEngine struct {
	text string
}

func (s *stubEngine) Recognize(context.Context, []byte) (string, error) {
	return s.text, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:     "test",
			Debug:   true,
			Version: "test",
		},
		AI: config.AIConfig{
			Model: "test-model",
		},
		OCR: config.OCRConfig{
			MaxImages: 5,
		},
	}
}

func newTestRouter(t *testing.T, store recipe.Store, gen *stubGenerator) *gin.Engine {
	t.Helper()
	router, err := SetupRouter(testConfig(), store, nil, gen, &stubEngine{})
	require.NoError(t, err)
	return router
}

func doJSON(router *gin.Engine, method, path, ownerID string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ownerID != "" {
		req.Header.Set("X-User-ID", ownerID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &stubGenerator{})

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &stubGenerator{})

	w := doJSON(router, http.MethodGet, "/api/v1/recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeUnauthorized)
}

func TestCreateAndListRecipes(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &stubGenerator{})

	w := doJSON(router, http.MethodPost, "/api/v1/recipes", "user-1", gin.H{
		"recipeName":   "Apple Pie",
		"categories":   []string{"Dessert"},
		"instructions": []string{"Bake."},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created recipe.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Apple Pie", created.Name)
	assert.Equal(t, []string{"dessert"}, created.Categories)

	w = doJSON(router, http.MethodGet, "/api/v1/recipes", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Recipes []recipe.Recipe `json:"recipes"`
		Total   int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Total)

	// 擁有者範圍：其他使用者看不到
	w = doJSON(router, http.MethodGet, "/api/v1/recipes", "user-2", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, 0, listed.Total)
}

func TestListRecipesWithFilters(t *testing.T) {
	store := newFakeStore()
	store.recipes["user-1"] = []recipe.Recipe{
		{Name: "Apple Pie", Categories: []string{"dessert"}},
		{Name: "Beef Stew", Categories: []string{"dinner"}},
	}
	router := newTestRouter(t, store, &stubGenerator{})

	w := doJSON(router, http.MethodGet, "/api/v1/recipes?category=dessert&letter=a", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Recipes []recipe.Recipe `json:"recipes"`
		Total   int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Total)
	assert.Equal(t, "Apple Pie", listed.Recipes[0].Name)
}

func TestSearchRejectsBlankTerm(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &stubGenerator{})

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/search?q=%20%20", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeEmptyInput)
}

func TestParseTextEndpoint(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{"recipeName": "Simple Bake", "categories": ["dessert"], "ingredientGroups": [{"name": "Ingredients", "ingredients": ["flour"]}], "instructions": ["Mix.", "Bake."]}` + "\n```"}
	router := newTestRouter(t, newFakeStore(), gen)

	w := doJSON(router, http.MethodPost, "/api/v1/parse/text", "user-1", gin.H{
		"text": "flour. mix. bake.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var parsed recipe.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	assert.Equal(t, "Simple Bake", parsed.Name)
	assert.Equal(t, []string{"Mix.", "Bake."}, parsed.Instructions)
	// 草稿尚未持久化
	assert.Empty(t, parsed.ID)
}

func TestParseTextMalformedUpstream(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &stubGenerator{response: "not json"})

	w := doJSON(router, http.MethodPost, "/api/v1/parse/text", "user-1", gin.H{
		"text": "flour. mix. bake.",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeMalformedResponse)
	// 原始載荷附在回應中供診斷
	assert.Contains(t, w.Body.String(), "not json")
}

func TestAISearchEndpoint(t *testing.T) {
	store := newFakeStore()
	store.recipes["user-1"] = []recipe.Recipe{
		{Name: "Chicken Rice", Categories: []string{"dinner"}},
		{Name: "Apple Pie", Categories: []string{"dessert"}},
	}
	gen := &stubGenerator{response: `{"keywords": ["chicken"]}`}
	router := newTestRouter(t, store, gen)

	w := doJSON(router, http.MethodPost, "/api/v1/search/ai", "user-1", gin.H{
		"query": "dinner with chicken",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Keywords []string        `json:"keywords"`
		Recipes  []recipe.Recipe `json:"recipes"`
		Total    int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []string{"chicken"}, result.Keywords)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Chicken Rice", result.Recipes[0].Name)
}

func TestAISearchFallsBackToRawQuery(t *testing.T) {
	store := newFakeStore()
	store.recipes["user-1"] = []recipe.Recipe{
		{Name: "Chicken Rice", Categories: []string{"dinner"}},
	}
	// 非 JSON 回應導致萃取失敗，整句查詢作為單一關鍵字
	router := newTestRouter(t, store, &stubGenerator{response: "no idea"})

	w := doJSON(router, http.MethodPost, "/api/v1/search/ai", "user-1", gin.H{
		"query": "chicken rice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Keywords []string `json:"keywords"`
		Total    int      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []string{"chicken rice"}, result.Keywords)
	assert.Equal(t, 1, result.Total)
}

func TestCreateRecipeInvalidBody(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &stubGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRecipe(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &stubGenerator{})

	w := doJSON(router, http.MethodDelete, "/api/v1/recipes/fake-id", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}
