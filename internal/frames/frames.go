// Package frames loads extracted PNG frames in decode order.
package frames

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/draw"
)

// Loader decodes a directory of frames.
type Loader struct {
	// FrameSize is the required edge length; other sizes are rescaled.
	FrameSize int
	// Workers bounds concurrent decodes. Zero uses GOMAXPROCS.
	Workers int
}

// List returns the PNG files in dir sorted by file name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load decodes every frame in dir. The result is ordered by file name; each
// worker writes only its own slot.
func (l Loader) Load(ctx context.Context, dir string) ([]image.Image, error) {
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	out := make([]image.Image, len(paths))
	if len(paths) == 0 {
		return out, nil
	}

	workers := l.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(paths))

	jobs := make(chan int)
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i], errs[i] = l.loadOne(paths[i])
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l Loader) loadOne(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return Fit(img, l.FrameSize), nil
}

// Fit returns img unchanged when it is already size×size, otherwise a
// rescaled copy.
func Fit(img image.Image, size int) image.Image {
	b := img.Bounds()
	if size <= 0 || (b.Dx() == size && b.Dy() == size) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
