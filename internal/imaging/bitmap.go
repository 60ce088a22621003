package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrInvalidBitmap = errors.New("invalid bitmap")

// Bitmap is an RGBA pixel buffer, four bytes per pixel, row-major.
type Bitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

// FromPixels wraps a processed buffer. The buffer is copied.
func FromPixels(width, height int, pix []uint8) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidBitmap, width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: buffer length %d does not match %dx%d", ErrInvalidBitmap, len(pix), width, height)
	}

	b := New(width, height)
	copy(b.Pix, pix)
	return b, nil
}

// New allocates a transparent black bitmap.
func New(width, height int) *Bitmap {
	return &Bitmap{Width: width, Height: height, Pix: make([]uint8, width*height*4)}
}

// FromImage converts a decoded image or a camera frame into a Bitmap.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	return &Bitmap{Width: bounds.Dx(), Height: bounds.Dy(), Pix: dst.Pix}
}

// Decode reads an encoded image (JPEG, PNG, GIF or WebP).
func Decode(r io.Reader) (*Bitmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := FromImage(img)
	if b.Width == 0 || b.Height == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidBitmap)
	}
	return b, nil
}

// Load decodes the image file at path.
func Load(path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Image returns an image.Image view over the bitmap's buffer. The view shares
// memory with b.
func (b *Bitmap) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	c := New(b.Width, b.Height)
	copy(c.Pix, b.Pix)
	return c
}

// Fit returns b scaled down so that neither side exceeds maxDim, keeping the
// aspect ratio. b itself is returned when it already fits or maxDim <= 0.
func (b *Bitmap) Fit(maxDim int) *Bitmap {
	if maxDim <= 0 || (b.Width <= maxDim && b.Height <= maxDim) {
		return b
	}

	w, h := b.Width, b.Height
	if w >= h {
		h = max(1, h*maxDim/w)
		w = maxDim
	} else {
		w = max(1, w*maxDim/h)
		h = maxDim
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), b.Image(), b.Image().Bounds(), draw.Src, nil)

	return &Bitmap{Width: w, Height: h, Pix: dst.Pix}
}

func (b *Bitmap) offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// clampedOffset samples with edge clamping.
func (b *Bitmap) clampedOffset(x, y int) int {
	x = min(max(x, 0), b.Width-1)
	y = min(max(y, 0), b.Height-1)
	return b.offset(x, y)
}
