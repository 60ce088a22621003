package imaging

import (
	"math"
	"slices"
)

// Grayscale replaces each pixel's RGB channels with its luma
// round(0.299R + 0.587G + 0.114B).
func Grayscale(src *Bitmap) *Bitmap {
	dst := src.Clone()
	for i := 0; i < len(dst.Pix); i += 4 {
		r, g, b := float64(dst.Pix[i]), float64(dst.Pix[i+1]), float64(dst.Pix[i+2])
		v := clamp(roundHalfUp(0.299*r + 0.587*g + 0.114*b))
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = v, v, v
	}
	return dst
}

// Contrast maps every channel through (in-128)*factor+128.
func Contrast(src *Bitmap, factor float64) *Bitmap {
	dst := src.Clone()
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			in := float64(dst.Pix[i+c])
			dst.Pix[i+c] = clamp(roundHalfUp((in-128)*factor + 128))
		}
	}
	return dst
}

// Brightness shifts every channel by (percent/100-1)*255, so 100 is a no-op.
func Brightness(src *Bitmap, percent float64) *Bitmap {
	delta := (percent/100 - 1) * 255
	dst := src.Clone()
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			dst.Pix[i+c] = clamp(math.RoundToEven(float64(dst.Pix[i+c]) + delta))
		}
	}
	return dst
}

var sharpenKernel = [3][3]int{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sharpen convolves the RGB channels with a 3x3 sharpen kernel.
func Sharpen(src *Bitmap) *Bitmap {
	dst := src.Clone()
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			o := src.offset(x, y)
			for c := 0; c < 3; c++ {
				sum := 0
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						w := sharpenKernel[ky+1][kx+1]
						if w == 0 {
							continue
						}
						sum += w * int(src.Pix[src.clampedOffset(x+kx, y+ky)+c])
					}
				}
				dst.Pix[o+c] = clamp(float64(sum))
			}
		}
	}
	return dst
}

// Denoise applies a 3x3 median filter to each RGB channel.
func Denoise(src *Bitmap) *Bitmap {
	dst := src.Clone()
	var window [9]uint8
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			o := src.offset(x, y)
			for c := 0; c < 3; c++ {
				n := 0
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						window[n] = src.Pix[src.clampedOffset(x+kx, y+ky)+c]
						n++
					}
				}
				slices.Sort(window[:])
				dst.Pix[o+c] = window[4]
			}
		}
	}
	return dst
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
