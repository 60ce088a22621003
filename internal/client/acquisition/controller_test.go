package acquisition

import (
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goqrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vinscanner/internal/client/services"
	"github.com/dmitrijs2005/vinscanner/internal/decoder"
	"github.com/dmitrijs2005/vinscanner/internal/imaging"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
	"github.com/dmitrijs2005/vinscanner/internal/vin"
)

const (
	validVIN   = "1HGCM82633A004352"
	badSumVIN  = "1HGCM82633A004353"
	anotherVIN = "11111111111111111"
)

// scriptDecoder answers calls in order; "" means no barcode.
type scriptDecoder struct {
	mu      sync.Mutex
	answers []string
	calls   int
}

func (d *scriptDecoder) Decode(context.Context, *imaging.Bitmap) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.calls
	d.calls++
	if i >= len(d.answers) || d.answers[i] == "" {
		return "", decoder.ErrNotFound
	}
	return d.answers[i], nil
}

func (d *scriptDecoder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type fakeSubmitter struct {
	mu   sync.Mutex
	vins []string
	err  error
}

func (f *fakeSubmitter) Submit(_ context.Context, v string) (services.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vins = append(f.vins, v)
	if f.err != nil {
		return services.SubmitResult{}, f.err
	}
	return services.SubmitResult{VIN: v, Path: services.PathQueued, LocalID: int64(len(f.vins))}, nil
}

func (f *fakeSubmitter) submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.vins...)
}

// endless yields blank frames until cancelled.
type endless struct {
	closed atomic.Bool
	limit  int
	n      int
}

func (e *endless) Next(ctx context.Context) (*imaging.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.limit > 0 && e.n >= e.limit {
		return nil, io.EOF
	}
	e.n++
	return imaging.New(4, 4), nil
}

func (e *endless) Close() error {
	e.closed.Store(true)
	return nil
}

func newController(dec decoder.Decoder, sub services.Submitter, opts Options) *Controller {
	return NewController(dec, sub, logging.NewNop(), opts)
}

func TestScanCamera_SkipsInvalidAndSubmitsOnce(t *testing.T) {
	dec := &scriptDecoder{answers: []string{"", "HELLO", badSumVIN, validVIN, anotherVIN}}
	sub := &fakeSubmitter{}
	c := newController(dec, sub, Options{})
	src := &endless{}

	res, err := c.ScanCamera(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, validVIN, res.VIN)
	assert.Equal(t, []string{validVIN}, sub.submitted())
	assert.True(t, src.closed.Load(), "source released")

	st := c.Status()
	assert.False(t, st.Scanning)
	assert.Equal(t, validVIN, st.LastVIN)
	assert.NoError(t, st.LastError)
}

func TestScanCamera_NoDetection(t *testing.T) {
	dec := &scriptDecoder{answers: []string{badSumVIN, ""}}
	sub := &fakeSubmitter{}
	c := newController(dec, sub, Options{})
	src := &endless{limit: 3}

	_, err := c.ScanCamera(context.Background(), src)
	assert.ErrorIs(t, err, ErrNoDetection)
	assert.Empty(t, sub.submitted())
	assert.True(t, src.closed.Load())
	assert.ErrorIs(t, c.Status().LastError, ErrNoDetection)
}

func TestScanCamera_ModeSwitchStopsStream(t *testing.T) {
	dec := &scriptDecoder{}
	sub := &fakeSubmitter{}
	c := newController(dec, sub, Options{})
	src := &endless{}

	done := make(chan error, 1)
	go func() {
		_, err := c.ScanCamera(context.Background(), src)
		done <- err
	}()

	require.Eventually(t, func() bool { return dec.count() > 3 }, time.Second, time.Millisecond)
	assert.True(t, c.Status().Scanning)

	c.SetMode(ModeManual)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("scan did not stop")
	}
	assert.True(t, src.closed.Load())
	assert.Empty(t, sub.submitted())
	assert.Equal(t, ModeManual, c.Status().Mode)
}

// gateDecoder blocks inside Decode until released, then returns text.
type gateDecoder struct {
	text    string
	entered chan struct{}
	release chan struct{}
}

func (d *gateDecoder) Decode(context.Context, *imaging.Bitmap) (string, error) {
	select {
	case d.entered <- struct{}{}:
	default:
	}
	<-d.release
	return d.text, nil
}

func TestScanCamera_DetectionRacingModeSwitchIsDropped(t *testing.T) {
	for i := 0; i < 100; i++ {
		dec := &gateDecoder{text: validVIN, entered: make(chan struct{}, 1), release: make(chan struct{})}
		sub := &fakeSubmitter{}
		c := newController(dec, sub, Options{})

		done := make(chan error, 1)
		go func() {
			_, err := c.ScanCamera(context.Background(), &endless{})
			done <- err
		}()

		<-dec.entered
		c.SetMode(ModeManual)
		close(dec.release)

		select {
		case err := <-done:
			require.ErrorIs(t, err, ErrStopped, "run %d", i)
		case <-time.After(time.Second):
			t.Fatal("scan did not stop")
		}
		require.Empty(t, sub.submitted(), "run %d: VIN submitted after mode switch", i)

		st := c.Status()
		assert.Equal(t, ModeManual, st.Mode)
		assert.Empty(t, st.LastVIN)
	}
}

func TestScanCamera_StopDropsPendingDetection(t *testing.T) {
	dec := &gateDecoder{text: validVIN, entered: make(chan struct{}, 1), release: make(chan struct{})}
	sub := &fakeSubmitter{}
	c := newController(dec, sub, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := c.ScanCamera(context.Background(), &endless{})
		done <- err
	}()

	<-dec.entered
	c.Stop()
	close(dec.release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(time.Second):
		t.Fatal("scan did not stop")
	}
	assert.Empty(t, sub.submitted())
	assert.False(t, c.Status().Scanning)
	assert.Equal(t, ModeCamera, c.Status().Mode)
}

func TestScanCamera_WrongMode(t *testing.T) {
	c := newController(&scriptDecoder{}, &fakeSubmitter{}, Options{})
	c.SetMode(ModeUpload)
	src := &endless{}

	_, err := c.ScanCamera(context.Background(), src)
	assert.ErrorIs(t, err, ErrWrongMode)
	assert.True(t, src.closed.Load())
}

func TestScanPhoto(t *testing.T) {
	tests := []struct {
		name      string
		answers   []string
		wantVIN   string
		wantErr   error
		wantCalls int
	}{
		{name: "raw decode wins", answers: []string{validVIN}, wantVIN: validVIN, wantCalls: 1},
		{name: "second candidate wins", answers: []string{"", "", anotherVIN, validVIN}, wantVIN: anotherVIN, wantCalls: 3},
		{name: "invalid raw then valid candidate", answers: []string{badSumVIN, validVIN}, wantVIN: validVIN, wantCalls: 2},
		{name: "last validation failure surfaces", answers: []string{"", badSumVIN, "", ""}, wantErr: vin.ErrChecksum, wantCalls: 4},
		{name: "nothing decodes", answers: nil, wantErr: ErrUnreadable, wantCalls: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := &scriptDecoder{answers: tt.answers}
			sub := &fakeSubmitter{}
			c := newController(dec, sub, Options{})
			c.SetMode(ModeUpload)

			res, err := c.ScanPhoto(context.Background(), imaging.New(8, 8))
			assert.Equal(t, tt.wantCalls, dec.count())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, sub.submitted())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVIN, res.VIN)
			assert.Equal(t, []string{tt.wantVIN}, sub.submitted())
		})
	}
}

// sizeDecoder records the width of every bitmap it sees.
type sizeDecoder struct {
	mu     sync.Mutex
	widths []int
}

func (d *sizeDecoder) Decode(_ context.Context, b *imaging.Bitmap) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.widths = append(d.widths, b.Width)
	return "", decoder.ErrNotFound
}

func TestScanPhoto_RawAttemptUsesFullSize(t *testing.T) {
	dec := &sizeDecoder{}
	c := newController(dec, &fakeSubmitter{}, Options{MaxImageDimension: 100})
	c.SetMode(ModeUpload)

	_, err := c.ScanPhoto(context.Background(), imaging.New(400, 200))
	require.ErrorIs(t, err, ErrUnreadable)

	require.Len(t, dec.widths, len(imaging.Recipes)+1)
	assert.Equal(t, 400, dec.widths[0], "raw attempt sees the photo as loaded")
	for _, w := range dec.widths[1:] {
		assert.LessOrEqual(t, w, 100, "candidates are built from the downscaled copy")
	}
}

func TestScanPhoto_SubmitErrorSurfaces(t *testing.T) {
	boom := errors.New("disk full")
	sub := &fakeSubmitter{err: boom}
	c := newController(&scriptDecoder{answers: []string{validVIN}}, sub, Options{})
	c.SetMode(ModeUpload)

	_, err := c.ScanPhoto(context.Background(), imaging.New(8, 8))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sub.submitted(), 1, "no retry")
	assert.ErrorIs(t, c.Status().LastError, boom)
}

func writeQR(t *testing.T, dir, text string) string {
	t.Helper()
	q, err := goqrcode.New(text, goqrcode.Medium)
	require.NoError(t, err)

	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, q.Image(256)))
	return path
}

func TestScanPhotoFile_WithZXing(t *testing.T) {
	dec, err := decoder.NewZXing()
	require.NoError(t, err)
	sub := &fakeSubmitter{}
	c := newController(dec, sub, Options{MaxPhotoBytes: 5 << 20})
	c.SetMode(ModeUpload)

	path := writeQR(t, t.TempDir(), validVIN)

	res, err := c.ScanPhotoFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, validVIN, res.VIN)
	assert.Equal(t, []string{validVIN}, sub.submitted())
}

func TestScanPhotoFile_TooLarge(t *testing.T) {
	dec := &scriptDecoder{answers: []string{validVIN}}
	sub := &fakeSubmitter{}
	c := newController(dec, sub, Options{MaxPhotoBytes: 10})
	c.SetMode(ModeUpload)

	path := writeQR(t, t.TempDir(), validVIN)

	_, err := c.ScanPhotoFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
	assert.Zero(t, dec.count())
	assert.Empty(t, sub.submitted())
}

func TestManual(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newController(&scriptDecoder{}, sub, Options{})
	c.SetMode(ModeManual)

	assert.Equal(t, "1HGCM", c.SetManualInput("1hgcm"))
	assert.False(t, c.CanSubmitManual())

	_, err := c.SubmitManual(context.Background())
	assert.ErrorIs(t, err, ErrManualIncomplete)

	assert.Equal(t, validVIN, c.SetManualInput("1hgcm82633a004352EXTRA"))
	assert.True(t, c.CanSubmitManual())

	res, err := c.SubmitManual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, validVIN, res.VIN)
	assert.Equal(t, []string{validVIN}, sub.submitted())
}

func TestManual_InvalidNeverSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	c := newController(&scriptDecoder{}, sub, Options{})
	c.SetMode(ModeManual)

	c.SetManualInput(badSumVIN)
	_, err := c.SubmitManual(context.Background())
	assert.ErrorIs(t, err, vin.ErrChecksum)

	c.SetManualInput("1HGCM82633O004352")
	_, err = c.SubmitManual(context.Background())
	assert.ErrorIs(t, err, vin.ErrFormat)

	assert.Empty(t, sub.submitted())
}

func TestSetMode_ClearsState(t *testing.T) {
	c := newController(&scriptDecoder{}, &fakeSubmitter{}, Options{})
	c.SetMode(ModeManual)
	c.SetManualInput("ABC")
	_, _ = c.SubmitManual(context.Background())
	require.Error(t, c.Status().LastError)

	c.SetMode(ModeManual)
	st := c.Status()
	assert.Empty(t, st.ManualInput)
	assert.NoError(t, st.LastError)

	_, err := c.SubmitManual(context.Background())
	assert.ErrorIs(t, err, ErrManualIncomplete)
	assert.False(t, c.CanSubmitManual())

	c.SetMode(ModeCamera)
	_, err = c.SubmitManual(context.Background())
	assert.ErrorIs(t, err, ErrWrongMode)
}
