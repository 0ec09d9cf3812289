package draft

import (
	"net/http"

	"recipe-keeper/internal/api/middleware"
	coreRecipe "recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/core/scratch"
	"recipe-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PutDraftRequest 草稿存放請求（標準食譜形狀）
type PutDraftRequest struct {
	Recipe coreRecipe.Recipe `json:"recipe" binding:"required"`
}

// Handler 草稿交接處理程序。
// 草稿由一頁寫入、下一頁取走，以工作階段識別碼為範圍；
// 非持久存儲，過期即消失。
type Handler struct {
	scratch *scratch.Store
}

// NewHandler 創建草稿處理程序
func NewHandler(scratchStore *scratch.Store) *Handler {
	return &Handler{scratch: scratchStore}
}

// HandlePut 存放草稿食譜
func (h *Handler) HandlePut(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required", "code": common.ErrCodeInvalidRequest})
		return
	}

	var req PutDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	if err := h.scratch.PutDraft(c.Request.Context(), sessionID, req.Recipe.Sanitize()); err != nil {
		common.LogError("草稿存放失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store draft", "code": common.ErrCodeInternalError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleTake 取走草稿食譜；取走後即移除，沒有草稿時回傳 404
func (h *Handler) HandleTake(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required", "code": common.ErrCodeInvalidRequest})
		return
	}

	draft, err := h.scratch.TakeDraft(c.Request.Context(), sessionID)
	if err != nil {
		common.LogError("草稿取用失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft", "code": common.ErrCodeInternalError})
		return
	}
	if draft == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No draft found", "code": common.ErrCodeNotFound})
		return
	}

	c.JSON(http.StatusOK, draft)
}
