package recipe

import (
	"net/http"
	"strings"

	"recipe-keeper/internal/api/handlers"
	"recipe-keeper/internal/api/middleware"
	coreRecipe "recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeRequest 建立與更新共用的請求結構（標準食譜形狀）
type RecipeRequest struct {
	RecipeName       string                       `json:"recipeName" binding:"required"`
	Categories       []string                     `json:"categories"`
	IngredientGroups []coreRecipe.IngredientGroup `json:"ingredientGroups"`
	Instructions     []string                     `json:"instructions"`
}

// toRecipe 轉換為標準食譜並套用不變量
func (r RecipeRequest) toRecipe() coreRecipe.Recipe {
	return coreRecipe.Recipe{
		Name:             r.RecipeName,
		Categories:       r.Categories,
		IngredientGroups: r.IngredientGroups,
		Instructions:     r.Instructions,
	}.Sanitize()
}

// Handler 食譜處理程序
type Handler struct {
	store coreRecipe.Store
}

// NewHandler 創建食譜處理程序
func NewHandler(store coreRecipe.Store) *Handler {
	return &Handler{store: store}
}

// HandleCreate 建立新食譜
func (h *Handler) HandleCreate(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	created, err := h.store.Create(c.Request.Context(), middleware.OwnerID(c), req.toRecipe())
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("食譜已建立",
		zap.String("recipe_id", created.ID),
		zap.String("recipe_name", created.Name),
	)

	c.JSON(http.StatusCreated, created)
}

// HandleList 列出呼叫方的所有食譜，最新建立的在前。
// 可選的 category 與 letter 查詢參數在伺服器端套用組合過濾：
// 先分類、後字母。
func (h *Handler) HandleList(c *gin.Context) {
	recipes, err := h.store.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	category := c.Query("category")
	letter := c.Query("letter")
	filtered := coreRecipe.ApplyFilters(recipes, category, letter)

	c.JSON(http.StatusOK, gin.H{
		"recipes": filtered,
		"total":   len(filtered),
	})
}

// HandleUpdate 以完整替換方式更新食譜，沒有部分欄位修補語義
func (h *Handler) HandleUpdate(c *gin.Context) {
	id := c.Param("id")

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	updated, err := h.store.Update(c.Request.Context(), middleware.OwnerID(c), id, req.toRecipe())
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("食譜已更新",
		zap.String("recipe_id", updated.ID),
		zap.String("recipe_name", updated.Name),
	)

	c.JSON(http.StatusOK, updated)
}

// HandleDelete 刪除食譜與其食材分組
func (h *Handler) HandleDelete(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), middleware.OwnerID(c), id); err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("食譜已刪除", zap.String("recipe_id", id))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleSearch 委託伺服器端全文搜尋；空白搜尋詞在進入存儲前拒絕
func (h *Handler) HandleSearch(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search term is required", "code": common.ErrCodeEmptyInput})
		return
	}

	results, err := h.store.Search(c.Request.Context(), middleware.OwnerID(c), term)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": results,
		"total":   len(results),
	})
}
