// Package decoder adapts barcode readers to the capture pipeline.
//
// A Decoder turns a bitmap into the text of the first barcode it can find.
// Absence of a barcode (ErrNotFound) and an unusable reader (ErrUnavailable)
// are both "no result" to the capture flows; Try folds them together.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/dmitrijs2005/vinscanner/internal/imaging"
)

var (
	ErrNotFound    = errors.New("no barcode found")
	ErrUnavailable = errors.New("decoder unavailable")
)

// Decoder extracts barcode text from a bitmap.
type Decoder interface {
	Decode(ctx context.Context, b *imaging.Bitmap) (string, error)
}

// Try runs d and reports whether it produced any text. Every error counts as
// no result.
func Try(ctx context.Context, d Decoder, b *imaging.Bitmap) (string, bool) {
	if d == nil || b == nil {
		return "", false
	}
	text, err := d.Decode(ctx, b)
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

// Format is a barcode symbology understood by ZXing.
type Format string

const (
	Code39     Format = "code39"
	Code128    Format = "code128"
	QRCode     Format = "qr"
	DataMatrix Format = "datamatrix"
)

// DefaultFormats covers the symbologies found on VIN labels and documents.
var DefaultFormats = []Format{Code39, Code128, DataMatrix, QRCode}

// ZXing is a Decoder backed by a single set of gozxing readers created once
// and reused for every call. Calls are serialized because the readers keep
// internal state.
type ZXing struct {
	mu      sync.Mutex
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
	closed  bool
}

// NewZXing builds readers for the given formats, DefaultFormats when none
// are given.
func NewZXing(formats ...Format) (*ZXing, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}

	z := &ZXing{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}

	for _, f := range formats {
		r, err := newReader(f)
		if err != nil {
			return nil, err
		}
		z.readers = append(z.readers, r)
	}

	return z, nil
}

func newReader(f Format) (gozxing.Reader, error) {
	switch Format(strings.ToLower(string(f))) {
	case Code39:
		return oned.NewCode39Reader(), nil
	case Code128:
		return oned.NewCode128Reader(), nil
	case QRCode:
		return qrcode.NewQRCodeReader(), nil
	case DataMatrix:
		return datamatrix.NewDataMatrixReader(), nil
	default:
		return nil, fmt.Errorf("unsupported barcode format %q", f)
	}
}

// ParseFormats converts a comma separated list such as "code39,qr".
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, err := newReader(Format(part)); err != nil {
			return nil, err
		}
		out = append(out, Format(strings.ToLower(part)))
	}
	return out, nil
}

// Decode tries every reader in order and returns the first text found.
func (z *ZXing) Decode(ctx context.Context, b *imaging.Bitmap) (text string, err error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.closed {
		return "", ErrUnavailable
	}

	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%w: reader panic: %v", ErrUnavailable, p)
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(b.Image())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, r := range z.readers {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		res, err := r.Decode(bmp, z.hints)
		r.Reset()
		if err != nil || res == nil {
			continue
		}
		if t := strings.TrimSpace(res.GetText()); t != "" {
			return t, nil
		}
	}

	return "", ErrNotFound
}

// Close releases the readers. Later calls return ErrUnavailable.
func (z *ZXing) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()

	z.closed = true
	z.readers = nil
	return nil
}
