// Package handlers 提供各資源處理程序共用的回應工具
package handlers

import (
	"errors"

	"recipe-keeper/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error 將核心錯誤映射為統一的 API 錯誤響應。
// 錯誤一律具名回報失敗原因，不猜測也不自動修正。
func Error(c *gin.Context, err error) {
	status, code := common.HTTPStatus(err)

	common.LogWarn("請求以錯誤結束",
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)

	resp := gin.H{
		"error": err.Error(),
		"code":  code,
	}

	// 形狀不符時附上原始載荷供診斷
	var me *common.MalformedResponseError
	if errors.As(err, &me) {
		resp["raw_response"] = me.Raw
	}

	c.AbortWithStatusJSON(status, resp)
}
