package atlas

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"

	"golang.org/x/image/draw"
)

// Atlas is one composed grid. Index is 1-based in decode order.
type Atlas struct {
	Index  int
	Frames int
	Image  *image.RGBA
}

// Consumer receives each atlas on the goroutine that built it. The atlas is not
// retained after the consumer returns.
type Consumer func(ctx context.Context, a Atlas) error

// Compositor builds atlases of a fixed frame size.
type Compositor struct {
	FrameSize int
	FPS       int
	// Workers bounds how many atlases are alive at once. Zero means GOMAXPROCS.
	Workers int
}

// Side returns the edge length of an atlas in pixels.
func (c Compositor) Side() int {
	return c.FrameSize * CellsPerSide
}

// Run splits frames into chunks of Capacity, builds one atlas per chunk
// concurrently, and hands each to consume. Each worker owns its atlas from
// allocation until consume returns. The first error stops work that has
// not started yet and is returned once all running workers finish.
func (c Compositor) Run(ctx context.Context, frames []image.Image, consume Consumer) (Layout, error) {
	if c.FrameSize <= 0 {
		return Layout{}, fmt.Errorf("atlas: invalid frame size %d", c.FrameSize)
	}
	layout, err := Plan(len(frames), c.FPS)
	if err != nil {
		return Layout{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < layout.Atlases; i++ {
		start := i * Capacity
		end := min(start+Capacity, len(frames))
		chunk := frames[start:end]
		index := i + 1
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-runCtx.Done():
				return
			}
			defer func() { <-sem }()
			if runCtx.Err() != nil {
				return
			}
			img := c.Compose(chunk)
			if err := consume(runCtx, Atlas{Index: index, Frames: len(chunk), Image: img}); err != nil {
				fail(fmt.Errorf("atlas %d: %w", index, err))
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return Layout{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Compose draws up to Capacity frames onto an opaque black atlas. Frame i goes
// to cell (i mod 16, i div 16); frames beyond Capacity are ignored.
func (c Compositor) Compose(frames []image.Image) *image.RGBA {
	side := c.Side()
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)

	if len(frames) > Capacity {
		frames = frames[:Capacity]
	}
	var wg sync.WaitGroup
	for i, frame := range frames {
		if frame == nil {
			continue
		}
		cell := c.Cell(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			draw.Draw(dst, cell, frame, frame.Bounds().Min, draw.Src)
		}()
	}
	wg.Wait()
	return dst
}

// Cell returns the pixel rectangle of the cell holding frame i.
func (c Compositor) Cell(i int) image.Rectangle {
	x := (i % CellsPerSide) * c.FrameSize
	y := (i / CellsPerSide) * c.FrameSize
	return image.Rect(x, y, x+c.FrameSize, y+c.FrameSize)
}
