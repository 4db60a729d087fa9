package media

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"github.com/disintegration/imaging"
)

const (
	// 輸出一律是 2000x1333 的 JPEG，品質 90
	OutputWidth  = 2000
	OutputHeight = 1333
	JPEGQuality  = 90
)

// ImageCodec 解碼 → 縮放 → 重新編碼 → 寫檔。
// 輸入 buffer 的 MIME 型別由上游過濾，這裡只管能不能解碼。
// 每次呼叫各自寫一個檔案，彼此獨立，可以並行。
type ImageCodec interface {
	Encode(ctx context.Context, buf []byte, filename string) error
}

type ImageCodecImpl struct {
	root string
}

// NewImageCodec root 是對外公開的媒體目錄
func NewImageCodec(root string) ImageCodec {
	return &ImageCodecImpl{root: root}
}

func (c *ImageCodecImpl) Encode(ctx context.Context, buf []byte, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDecodeImage, err)
	}

	resized := imaging.Resize(img, OutputWidth, OutputHeight, imaging.Lanczos)

	path := filepath.Join(c.root, filename)
	if err := imaging.Save(resized, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}
