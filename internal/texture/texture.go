package texture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync"

	"autovideo/internal/fileutil"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("texture: empty image")

// Encoder compresses RGBA images into BC1 DDS textures.
type Encoder struct {
	Quality Quality
	// Workers bounds concurrent block-row encoding. Zero uses GOMAXPROCS.
	Workers int
}

// NewEncoder returns an encoder using the slow, high quality search.
func NewEncoder() *Encoder {
	return &Encoder{Quality: QualitySlow}
}

// EncodeBC1 returns the BC1 block data for img without a container header.
// Partial edge blocks are padded by clamping to the last row/column.
func (e *Encoder) EncodeBC1(ctx context.Context, img *image.RGBA) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ErrEmptyImage
	}
	bw := (bounds.Dx() + 3) / 4
	bh := (bounds.Dy() + 3) / 4
	out := make([]byte, bw*bh*BlockSize)

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var blk block
			for by := range rows {
				for bx := 0; bx < bw; bx++ {
					loadBlock(img, bx, by, &blk)
					off := (by*bw + bx) * BlockSize
					encodeBlock(&blk, e.Quality, out[off:off+BlockSize])
				}
			}
		}()
	}

	var err error
feed:
	for by := 0; by < bh; by++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case rows <- by:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(rows)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Encode writes a complete DDS file for img to w.
func (e *Encoder) Encode(ctx context.Context, w io.Writer, img *image.RGBA) error {
	data, err := e.EncodeBC1(ctx, img)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, img.Bounds().Dx(), img.Bounds().Dy()); err != nil {
		return fmt.Errorf("write dds header: %w", err)
	}
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("write dds blocks: %w", err)
	}
	return bw.Flush()
}

// WriteFile encodes img and atomically replaces path with the result.
func (e *Encoder) WriteFile(ctx context.Context, path string, img *image.RGBA) error {
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return e.Encode(ctx, w, img)
	})
}

func loadBlock(img *image.RGBA, bx, by int, blk *block) {
	b := img.Bounds()
	for y := 0; y < 4; y++ {
		py := min(b.Min.Y+by*4+y, b.Max.Y-1)
		for x := 0; x < 4; x++ {
			px := min(b.Min.X+bx*4+x, b.Max.X-1)
			off := img.PixOffset(px, py)
			i := y*4 + x
			blk.px[i] = rgb{float64(img.Pix[off]), float64(img.Pix[off+1]), float64(img.Pix[off+2])}
			blk.opaque[i] = img.Pix[off+3] >= alphaThreshold
		}
	}
}
