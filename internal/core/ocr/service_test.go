package ocr

import (
	"context"
	"errors"
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

// stubEngine 以圖片內容查表回傳文字
type stubEngine struct {
	texts map[string]string
	err   error
}

func (s *stubEngine) Recognize(_ context.Context, image []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.texts[string(image)], nil
}

func TestRecognizeJoinsInInputOrder(t *testing.T) {
	svc := NewService(&stubEngine{texts: map[string]string{
		"img1": "  Page one text \n",
		"img2": "Page two text",
	}})

	text, err := svc.Recognize(context.Background(), [][]byte{[]byte("img1"), []byte("img2")})
	require.NoError(t, err)
	assert.Equal(t, "Page one text\n\nPage two text", text)
}

func TestRecognizeNoImages(t *testing.T) {
	svc := NewService(&stubEngine{})

	_, err := svc.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrEmptyInput)
}

func TestRecognizeEmptyImage(t *testing.T) {
	svc := NewService(&stubEngine{})

	_, err := svc.Recognize(context.Background(), [][]byte{[]byte("img1"), {}})
	assert.ErrorIs(t, err, common.ErrEmptyInput)
}

func TestRecognizeEngineFailure(t *testing.T) {
	svc := NewService(&stubEngine{err: errors.New("tesseract crashed")})

	_, err := svc.Recognize(context.Background(), [][]byte{[]byte("img1")})
	var upstream *common.UpstreamError
	require.ErrorAs(t, err, &upstream)
}
