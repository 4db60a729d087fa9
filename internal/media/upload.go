package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"golang.org/x/sync/errgroup"
)

const (
	FieldImageCover = "imageCover"
	FieldImages     = "images"

	MaxCoverFiles   = 1
	MaxGalleryFiles = 3
)

// Result 編碼完成後要併入待寫入 payload 的檔名
type Result struct {
	ImageCover string
	Images     []string
}

// UploadPipeline 處理 imageCover / images 兩個附件欄位：
// 先以宣告的 Content-Type 過濾非圖片，再逐檔交給 codec 編碼，
// gallery 最多三張並行，全部成功才回傳檔名
type UploadPipeline interface {
	Process(ctx context.Context, form *multipart.Form, subjectID string) (*Result, error)
}

type UploadPipelineImpl struct {
	codec ImageCodec
}

func NewUploadPipeline(codec ImageCodec) UploadPipeline {
	return &UploadPipelineImpl{codec: codec}
}

func (p *UploadPipelineImpl) Process(ctx context.Context, form *multipart.Form, subjectID string) (*Result, error) {
	if form == nil {
		return nil, nil
	}

	covers := form.File[FieldImageCover]
	gallery := form.File[FieldImages]
	if len(covers) == 0 && len(gallery) == 0 {
		return nil, nil
	}

	if len(covers) > MaxCoverFiles || len(gallery) > MaxGalleryFiles {
		return nil, apperrors.ErrInvalidInput
	}

	// 先擋掉所有非圖片，一張都還沒解碼之前就拒絕
	for _, fh := range append(append([]*multipart.FileHeader{}, covers...), gallery...) {
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			return nil, apperrors.ErrInvalidMediaType
		}
	}

	// 時間戳整個 pipeline 取一次；gallery 檔名靠序號區分
	now := time.Now().UnixMilli()
	result := &Result{}

	if len(covers) > 0 {
		buf, err := readFile(covers[0])
		if err != nil {
			return nil, err
		}

		filename := fmt.Sprintf("event-%s-%d-cover.jpeg", subjectID, now)
		if err := p.codec.Encode(ctx, buf, filename); err != nil {
			return nil, err
		}
		result.ImageCover = filename
	}

	if len(gallery) > 0 {
		// 檔名依上傳順序對應序號，不管哪張先編完
		filenames := make([]string, len(gallery))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(MaxGalleryFiles)

		for i, fh := range gallery {
			filename := fmt.Sprintf("event-%s-%d-%d.jpeg", subjectID, now, i+1)
			filenames[i] = filename

			g.Go(func() error {
				buf, err := readFile(fh)
				if err != nil {
					return err
				}
				return p.codec.Encode(gctx, buf, filename)
			})
		}

		// 任何一張失敗整個 pipeline 失敗，不回傳不完整的清單
		if err := g.Wait(); err != nil {
			return nil, err
		}
		result.Images = filenames
	}

	return result, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
