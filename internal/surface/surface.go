// Package surface owns the in-memory pixel buffer that is presented to the
// window each frame.
//
// Pixels are 32-bit 0x00RRGGBB values stored row-major with the origin at the
// top-left. On little-endian machines the bytes of a pixel are B, G, R, X,
// which is the native layout of a 32-bit top-down DIB.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// MaxDimension bounds the width and height accepted by New.
const MaxDimension = 1 << 14

var ErrAllocation = errors.New("pixel buffer allocation failed")

// Blitter copies a top-down 32-bit buffer into a visible surface.
type Blitter interface {
	Blit(pixels []uint32, width, height int)
}

type Surface struct {
	width  int
	height int
	pixels []uint32
}

// New allocates a zero-filled width x height buffer.
func New(width, height int) (s *Surface, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrAllocation, width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: size %dx%d exceeds %d", ErrAllocation, width, height, MaxDimension)
	}

	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()

	return &Surface{
		width:  width,
		height: height,
		pixels: make([]uint32, width*height),
	}, nil
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Pixels returns the buffer for drawing. It is nil after Destroy. Writes must
// not overlap a Present.
func (s *Surface) Pixels() []uint32 {
	return s.pixels
}

// Present copies the whole buffer to dst, top row first.
func (s *Surface) Present(dst Blitter) {
	if s == nil || s.pixels == nil || dst == nil {
		return
	}
	dst.Blit(s.pixels, s.width, s.height)
}

// Destroy releases the buffer. It is safe to call more than once, and on a
// nil Surface.
func (s *Surface) Destroy() {
	if s == nil {
		return
	}
	s.pixels = nil
}

func (s *Surface) Clear(c uint32) {
	for i := range s.pixels {
		s.pixels[i] = c
	}
}

// Set writes a single pixel. Coordinates outside the buffer are ignored.
func (s *Surface) Set(x, y int, c uint32) {
	if s.pixels == nil || x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	s.pixels[y*s.width+x] = c
}

// Snapshot converts the buffer into an opaque RGBA image.
func (s *Surface) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if s.pixels == nil {
		return img
	}
	for y := 0; y < s.height; y++ {
		row := s.pixels[y*s.width : (y+1)*s.width]
		for x, p := range row {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(p >> 16),
				G: uint8(p >> 8),
				B: uint8(p),
				A: 0xff,
			})
		}
	}
	return img
}

// RGB packs a color into the native pixel format.
func RGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
