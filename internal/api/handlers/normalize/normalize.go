package normalize

import (
	"io"
	"net/http"

	"recipe-keeper/internal/api/handlers"
	"recipe-keeper/internal/api/middleware"
	coreNormalize "recipe-keeper/internal/core/normalize"
	"recipe-keeper/internal/core/ocr"
	coreRecipe "recipe-keeper/internal/core/recipe"
	"recipe-keeper/internal/core/scratch"
	"recipe-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParseTextRequest 文字解析請求
type ParseTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// AISearchRequest 自然語言搜尋請求
type AISearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Handler 正規化處理程序：文字解析、照片擷取與自然語言搜尋
type Handler struct {
	normalizer *coreNormalize.Normalizer
	extractor  *coreNormalize.KeywordExtractor
	ocrService *ocr.Service
	store      coreRecipe.Store
	scratch    *scratch.Store
	maxImages  int
}

// NewHandler 創建正規化處理程序
func NewHandler(
	normalizer *coreNormalize.Normalizer,
	extractor *coreNormalize.KeywordExtractor,
	ocrService *ocr.Service,
	store coreRecipe.Store,
	scratchStore *scratch.Store,
	maxImages int,
) *Handler {
	return &Handler{
		normalizer: normalizer,
		extractor:  extractor,
		ocrService: ocrService,
		store:      store,
		scratch:    scratchStore,
		maxImages:  maxImages,
	}
}

// HandleParseText 將原始食譜文字正規化為標準食譜。
// 結果以草稿形式回傳（尚未持久化，沒有 id）；
// 有工作階段識別碼時同時存入暫存區供下一頁取用。
func (h *Handler) HandleParseText(c *gin.Context) {
	var req ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided", "code": common.ErrCodeEmptyInput})
		return
	}

	parsed, err := h.normalizer.Normalize(c.Request.Context(), req.Text)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	h.stashDraft(c, parsed)

	c.JSON(http.StatusOK, parsed)
}

// HandleParsePhoto 接收多張照片，逐張獨立辨識後依輸入順序串接文字，
// 再交給正規化器。
func (h *Handler) HandleParsePhoto(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.LogError("多部分表單無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "code": common.ErrCodeInvalidRequest})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No images provided", "code": common.ErrCodeEmptyInput})
		return
	}
	if len(files) > h.maxImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many images", "code": common.ErrCodeInvalidRequest, "max_images": h.maxImages})
		return
	}

	images := make([][]byte, 0, len(files))
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			common.LogError("讀取上傳圖片失敗", zap.Error(err), zap.String("filename", file.Filename))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image", "code": common.ErrCodeInvalidRequest})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			common.LogError("讀取上傳圖片失敗", zap.Error(err), zap.String("filename", file.Filename))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image", "code": common.ErrCodeInvalidRequest})
			return
		}
		images = append(images, data)
	}

	text, err := h.ocrService.Recognize(c.Request.Context(), images)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	parsed, err := h.normalizer.Normalize(c.Request.Context(), text)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	h.stashDraft(c, parsed)

	c.JSON(http.StatusOK, gin.H{
		"recognizedText": text,
		"recipe":         parsed,
	})
}

// HandleAISearch 自然語言搜尋：先萃取關鍵字，再對呼叫方的食譜
// 做本地關鍵字比對。上游失敗時退回以原始查詢作為單一關鍵字。
func (h *Handler) HandleAISearch(c *gin.Context) {
	var req AISearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided", "code": common.ErrCodeEmptyInput})
		return
	}

	keywords, err := h.extractor.Extract(c.Request.Context(), req.Query)
	if err != nil {
		// 關鍵字萃取失敗不中斷搜尋：退回以整句查詢比對
		common.LogWarn("關鍵字萃取失敗，退回原始查詢",
			zap.Error(err),
			zap.String("query", req.Query),
		)
		keywords = []string{req.Query}
	}

	recipes, err := h.store.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		handlers.Error(c, err)
		return
	}

	matched := coreRecipe.FilterByKeyword(recipes, keywords)

	// 有工作階段識別碼時，把結果集交接給下一頁
	if sessionID := middleware.SessionID(c); sessionID != "" && h.scratch != nil {
		if err := h.scratch.PutResults(c.Request.Context(), sessionID, matched); err != nil {
			common.LogWarn("結果集暫存失敗", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"keywords": keywords,
		"recipes":  matched,
		"total":    len(matched),
	})
}

// stashDraft 有工作階段識別碼時將草稿放入暫存區；失敗只記錄不中斷
func (h *Handler) stashDraft(c *gin.Context, draft coreRecipe.Recipe) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" || h.scratch == nil {
		return
	}
	if err := h.scratch.PutDraft(c.Request.Context(), sessionID, draft); err != nil {
		common.LogWarn("草稿暫存失敗", zap.Error(err))
	}
}
