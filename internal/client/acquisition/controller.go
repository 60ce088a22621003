// Package acquisition drives the three ways a VIN is captured: a live camera
// stream, an uploaded photo and manual entry. Whatever the mode, a VIN leaves
// the controller only after it passed validation, and each successful
// capture is submitted exactly once.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vinscanner/internal/client/camera"
	"github.com/dmitrijs2005/vinscanner/internal/client/services"
	"github.com/dmitrijs2005/vinscanner/internal/decoder"
	"github.com/dmitrijs2005/vinscanner/internal/imaging"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
	"github.com/dmitrijs2005/vinscanner/internal/vin"
)

var (
	ErrNoDetection      = errors.New("camera stream ended without a valid VIN")
	ErrUnreadable       = errors.New("could not read a barcode from the photo")
	ErrWrongMode        = errors.New("operation not available in the current mode")
	ErrManualIncomplete = errors.New("manual VIN must be 17 characters")
	ErrPhotoTooLarge    = errors.New("photo is too large")
	ErrStopped          = errors.New("camera stream stopped")
)

type Mode int

const (
	ModeCamera Mode = iota
	ModeUpload
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeCamera:
		return "camera"
	case ModeUpload:
		return "upload"
	case ModeManual:
		return "manual"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Status is the transient state shown to the operator.
type Status struct {
	Mode        Mode
	Scanning    bool
	ManualInput string
	LastVIN     string
	LastResult  *services.SubmitResult
	LastError   error
}

type Options struct {
	// MaxPhotoBytes rejects larger photo files before decoding. Zero means
	// no limit.
	MaxPhotoBytes int64
	// MaxImageDimension scales photos down before the enhancement passes;
	// the first decode always sees the photo as loaded. Zero keeps the
	// original size.
	MaxImageDimension int
}

type Controller struct {
	dec       decoder.Decoder
	submitter services.Submitter
	logger    logging.Logger
	opts      Options

	mu         sync.Mutex
	mode       Mode
	manual     string
	lastVIN    string
	lastResult *services.SubmitResult
	lastErr    error
	stopStream context.CancelFunc
	streamID   uint64
}

func NewController(dec decoder.Decoder, submitter services.Submitter, logger logging.Logger, opts Options) *Controller {
	return &Controller{
		dec:       dec,
		submitter: submitter,
		logger:    logger.With("module", "acquisition"),
		opts:      opts,
		mode:      ModeCamera,
	}
}

// SetMode switches mode. Any running camera stream is stopped and the
// transient state is cleared, even when the mode does not change.
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopStream != nil {
		c.stopStream()
		c.stopStream = nil
		c.streamID++
	}
	c.mode = m
	c.manual = ""
	c.lastVIN = ""
	c.lastResult = nil
	c.lastErr = nil
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Mode:        c.mode,
		Scanning:    c.stopStream != nil,
		ManualInput: c.manual,
		LastVIN:     c.lastVIN,
		LastResult:  c.lastResult,
		LastError:   c.lastErr,
	}
}

func (c *Controller) requireMode(m Mode) error {
	if c.mode != m {
		return fmt.Errorf("%w: %s requires %s mode", ErrWrongMode, c.mode, m)
	}
	return nil
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

func (c *Controller) submit(ctx context.Context, v string) (services.SubmitResult, error) {
	res, err := c.submitter.Submit(ctx, v)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastVIN = v
	if err != nil {
		c.lastErr = err
		c.lastResult = nil
		return res, err
	}
	c.lastErr = nil
	c.lastResult = &res
	return res, nil
}

// ScanCamera consumes src until a decode passes validation, then stops the
// stream and submits that VIN. Decodes that fail validation are skipped.
func (c *Controller) ScanCamera(ctx context.Context, src camera.FrameSource) (services.SubmitResult, error) {
	c.mu.Lock()
	if err := c.requireMode(ModeCamera); err != nil {
		c.mu.Unlock()
		_ = src.Close()
		return services.SubmitResult{}, err
	}
	if c.stopStream != nil {
		c.stopStream()
	}
	sctx, stop := context.WithCancel(ctx)
	c.stopStream = stop
	c.streamID++
	id := c.streamID
	c.lastErr = nil
	c.mu.Unlock()

	events := camera.Stream(sctx, src, c.dec)
	found := ""
	var streamErr error

	for ev := range events {
		if ev.Err != nil {
			streamErr = ev.Err
			break
		}
		v, err := vin.Validate(ev.Text)
		if err != nil {
			c.logger.Debug(ctx, "decoded text is not a VIN, scanning on", "text", ev.Text, "reason", err)
			continue
		}
		found = v
		break
	}

	stopped := sctx.Err() != nil && found == "" && streamErr == nil
	stop()
	for range events {
	}

	c.mu.Lock()
	// SetMode, Stop or a newer scan take the stream away; a detection that
	// raced with them is dropped.
	owned := c.streamID == id && c.mode == ModeCamera
	if c.streamID == id {
		c.stopStream = nil
	}
	c.mu.Unlock()

	switch {
	case !owned:
		if found != "" {
			c.logger.Debug(ctx, "detection dropped, stream was stopped", "vin", found)
		}
		return services.SubmitResult{}, ErrStopped
	case found != "":
		c.logger.Info(ctx, "VIN detected by camera", "vin", found)
		return c.submit(ctx, found)
	case streamErr != nil:
		return services.SubmitResult{}, c.fail(fmt.Errorf("camera stream failed: %w", streamErr))
	case ctx.Err() != nil:
		return services.SubmitResult{}, ctx.Err()
	case stopped:
		return services.SubmitResult{}, ErrStopped
	default:
		return services.SubmitResult{}, c.fail(ErrNoDetection)
	}
}

// Stop ends a running camera scan; ScanCamera then returns ErrStopped.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopStream != nil {
		c.stopStream()
		c.stopStream = nil
		c.streamID++
	}
}

// ScanPhotoFile loads a photo from disk, enforcing the size limit, and runs
// ScanPhoto on it.
func (c *Controller) ScanPhotoFile(ctx context.Context, path string) (services.SubmitResult, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return services.SubmitResult{}, c.fail(fmt.Errorf("failed to open photo: %w", err))
	}
	if c.opts.MaxPhotoBytes > 0 && fi.Size() > c.opts.MaxPhotoBytes {
		return services.SubmitResult{}, c.fail(fmt.Errorf("%w: %d bytes, limit %d", ErrPhotoTooLarge, fi.Size(), c.opts.MaxPhotoBytes))
	}

	b, err := imaging.Load(path)
	if err != nil {
		return services.SubmitResult{}, c.fail(err)
	}
	return c.ScanPhoto(ctx, b)
}

// ScanPhoto decodes the photo as is, at full size, and then each
// enhancement candidate in order. The first decode that validates is submitted. Without one, the
// last validation failure is returned, or ErrUnreadable when nothing
// decoded at all.
func (c *Controller) ScanPhoto(ctx context.Context, photo *imaging.Bitmap) (services.SubmitResult, error) {
	c.mu.Lock()
	err := c.requireMode(ModeUpload)
	c.lastErr = nil
	c.mu.Unlock()
	if err != nil {
		return services.SubmitResult{}, err
	}

	var lastInvalid error

	attempt := func(b *imaging.Bitmap, stage string) (string, bool) {
		text, ok := decoder.Try(ctx, c.dec, b)
		if !ok {
			return "", false
		}
		v, err := vin.Validate(text)
		if err != nil {
			c.logger.Debug(ctx, "decoded text rejected", "stage", stage, "reason", err)
			lastInvalid = err
			return "", false
		}
		return v, true
	}

	if v, ok := attempt(photo, "raw"); ok {
		return c.submit(ctx, v)
	}

	// Only the enhancement passes run on a downscaled copy.
	scaled := photo
	if c.opts.MaxImageDimension > 0 {
		scaled = photo.Fit(c.opts.MaxImageDimension)
	}

	candidates, err := imaging.Enhance(ctx, scaled)
	if err != nil {
		return services.SubmitResult{}, c.fail(err)
	}

	for i, cand := range candidates {
		if v, ok := attempt(cand, imaging.Recipes[i].Name); ok {
			c.logger.Info(ctx, "VIN read from enhanced photo", "recipe", imaging.Recipes[i].Name)
			return c.submit(ctx, v)
		}
	}

	if lastInvalid != nil {
		return services.SubmitResult{}, c.fail(lastInvalid)
	}
	return services.SubmitResult{}, c.fail(ErrUnreadable)
}

// SetManualInput stores the operator's text, uppercased and cut to 17
// characters, and returns what was kept.
func (c *Controller) SetManualInput(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if r := []rune(s); len(r) > vin.Length {
		s = string(r[:vin.Length])
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.manual = s
	return s
}

func (c *Controller) CanSubmitManual() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode == ModeManual && len([]rune(c.manual)) == vin.Length
}

// SubmitManual validates the manual input and submits it. A validation
// failure is returned without any outward call.
func (c *Controller) SubmitManual(ctx context.Context) (services.SubmitResult, error) {
	c.mu.Lock()
	if err := c.requireMode(ModeManual); err != nil {
		c.mu.Unlock()
		return services.SubmitResult{}, err
	}
	input := c.manual
	c.mu.Unlock()

	if len([]rune(input)) != vin.Length {
		return services.SubmitResult{}, c.fail(ErrManualIncomplete)
	}

	v, err := vin.Validate(input)
	if err != nil {
		return services.SubmitResult{}, c.fail(err)
	}
	return c.submit(ctx, v)
}
