// Package ocr 將照片轉為純文字，供食譜正規化器後續處理。
// 辨識引擎視為黑盒：圖片進、文字出。
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipe-keeper/internal/pkg/common"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// Engine 光學字元辨識引擎的抽象，測試以替身實作注入
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// TesseractEngine 以 Tesseract 為後端的預設引擎
type TesseractEngine struct {
	languages []string
}

// NewTesseractEngine 創建 Tesseract 引擎；不指定語言時使用引擎預設值
func NewTesseractEngine(languages ...string) *TesseractEngine {
	return &TesseractEngine{languages: languages}
}

// Recognize 對單張圖片執行辨識
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("set ocr languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize image: %w", err)
	}
	return text, nil
}

// Service 照片擷取服務
type Service struct {
	engine Engine
}

// NewService 創建照片擷取服務
func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// Recognize 逐張獨立辨識多張圖片，依輸入順序以空行分隔串接輸出。
// 任一張辨識失敗即回報上游錯誤，不回傳部分結果。
func (s *Service) Recognize(ctx context.Context, images [][]byte) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("%w: no images provided", common.ErrEmptyInput)
	}

	start := time.Now()
	texts := make([]string, 0, len(images))
	for i, image := range images {
		if len(image) == 0 {
			return "", fmt.Errorf("%w: image %d is empty", common.ErrEmptyInput, i)
		}
		text, err := s.engine.Recognize(ctx, image)
		if err != nil {
			common.LogError("圖片辨識失敗",
				zap.Error(err),
				zap.Int("image_index", i),
			)
			return "", &common.UpstreamError{Err: err}
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	common.LogInfo("照片辨識完成",
		zap.Int("images", len(images)),
		zap.Duration("耗時", time.Since(start)),
	)

	return strings.Join(texts, "\n\n"), nil
}
