package middleware

import (
	"net/http"
	"strings"

	"recipe-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OwnerIDKey 擁有者識別碼在 gin context 中的鍵
const OwnerIDKey = "owner_id"

// SessionIDKey 工作階段識別碼在 gin context 中的鍵
const SessionIDKey = "session_id"

// Auth 擁有者身份中間件。
// 上游閘道驗證後以 X-User-ID 標頭注入擁有者識別碼；
// 缺失或空白時在任何存儲調用前即拒絕。
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if ownerID == "" {
			common.LogWarn("缺少擁有者身份",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
				"code":  common.ErrCodeUnauthorized,
			})
			return
		}

		c.Set(OwnerIDKey, ownerID)

		// 工作階段識別碼供草稿交接使用，可缺省
		if sessionID := strings.TrimSpace(c.GetHeader("X-Session-ID")); sessionID != "" {
			c.Set(SessionIDKey, sessionID)
		}

		c.Next()
	}
}

// OwnerID 從 gin context 取出擁有者識別碼
func OwnerID(c *gin.Context) string {
	return c.GetString(OwnerIDKey)
}

// SessionID 從 gin context 取出工作階段識別碼
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
