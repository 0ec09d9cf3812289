package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// 核心錯誤分類（所有服務層統一使用）
var (
	// ErrEmptyInput 呼叫方傳入空白或缺失的必要輸入，在任何外部調用前拒絕
	ErrEmptyInput = errors.New("empty input")

	// ErrNotAuthenticated 沒有可用的擁有者身份，在任何存儲調用前拒絕
	ErrNotAuthenticated = errors.New("not authenticated")
)

// UpstreamError AI 或 OCR 協作方不可達、回傳非成功狀態，或重試耗盡
type UpstreamError struct {
	Status     int   // 上游回傳的 HTTP 狀態碼，0 表示連線層失敗
	Overloaded bool  // 是否為暫時性過載（503/429），呼叫方可延遲後重試
	Err        error // 原始錯誤
}

func (e *UpstreamError) Error() string {
	if e.Overloaded {
		return fmt.Sprintf("upstream overloaded (status %d): %v", e.Status, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("upstream error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("upstream unreachable: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsOverloaded 檢查錯誤是否為上游暫時性過載
func IsOverloaded(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Overloaded
}

// MalformedResponseError 協作方成功回應，但內容無法解析為預期形狀。
// Raw 保留原始文本供診斷，絕不以預設資料掩蓋。
type MalformedResponseError struct {
	Raw    string // 協作方的原始回應，原樣保留
	Fenced bool   // 是否已找到圍欄代碼塊（區分兩階段解析的失敗來源）
	Err    error  // 解析錯誤
}

func (e *MalformedResponseError) Error() string {
	if e.Fenced {
		return fmt.Sprintf("malformed response: fenced payload is not valid JSON: %v", e.Err)
	}
	return fmt.Sprintf("malformed response: payload is not valid JSON: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// PersistenceError 存儲層拒絕讀寫，原因訊息原樣透傳供診斷
type PersistenceError struct {
	Op  string // 失敗的操作（create/list/update/delete/search）
	Err error  // 存儲層原始錯誤
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeUnauthorized     = "UNAUTHORIZED"       // 401
	ErrCodeForbidden        = "FORBIDDEN"          // 403
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"    // 408
	ErrCodeConflict         = "CONFLICT"           // 409
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeNotImplemented     = "NOT_IMPLEMENTED"     // 501
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 業務錯誤
	ErrCodeEmptyInput        = "EMPTY_INPUT"        // 400
	ErrCodeUpstreamError     = "UPSTREAM_ERROR"     // 502
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE" // 502
	ErrCodePersistenceError  = "PERSISTENCE_ERROR"  // 500
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "未授權的訪問", http.StatusUnauthorized, nil)
	ErrForbidden        = NewError(ErrCodeForbidden, "禁止訪問", http.StatusForbidden, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "不支持的請求方法", http.StatusMethodNotAllowed, nil)
	ErrRequestTimeout   = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
)

// HTTPStatus 將核心錯誤映射為 HTTP 狀態碼與錯誤代碼
func HTTPStatus(err error) (int, string) {
	var (
		ue *UpstreamError
		me *MalformedResponseError
		pe *PersistenceError
	)
	switch {
	case errors.Is(err, ErrEmptyInput):
		return http.StatusBadRequest, ErrCodeEmptyInput
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case errors.As(err, &ue):
		if ue.Overloaded {
			return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
		}
		return http.StatusBadGateway, ErrCodeUpstreamError
	case errors.As(err, &me):
		return http.StatusBadGateway, ErrCodeMalformedResponse
	case errors.As(err, &pe):
		return http.StatusInternalServerError, ErrCodePersistenceError
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
