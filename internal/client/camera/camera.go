// Package camera produces decode events from a stream of frames.
//
// Stream runs a producer goroutine that pulls frames from a FrameSource,
// decodes each one and emits an Event for every frame that carries barcode
// text. Cancelling the context stops the producer at its next yield point,
// and the source is closed on every exit path.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vinscanner/internal/decoder"
	"github.com/dmitrijs2005/vinscanner/internal/imaging"
)

// FrameSource yields frames until it returns io.EOF.
type FrameSource interface {
	Next(ctx context.Context) (*imaging.Bitmap, error)
	Close() error
}

// Event is either decoded barcode text or a terminal source error.
type Event struct {
	Text string
	Err  error
}

// Stream starts the producer. The channel is closed once the source is
// exhausted, fails or ctx is cancelled; by then the source has been closed.
func Stream(ctx context.Context, src FrameSource, dec decoder.Decoder) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)
		defer src.Close()

		for {
			if ctx.Err() != nil {
				return
			}

			frame, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case out <- Event{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			text, ok := decoder.Try(ctx, dec, frame)
			if !ok {
				continue
			}
			// A stop that landed during the decode wins over its result.
			if ctx.Err() != nil {
				return
			}

			select {
			case out <- Event{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// DirSource replays the image files of a directory in name order. It stands
// in for a live camera on machines without one.
type DirSource struct {
	mu     sync.Mutex
	paths  []string
	next   int
	maxDim int
	closed bool
}

// OpenDir lists the images in dir. Frames larger than maxDim on either side
// are scaled down; maxDim <= 0 keeps them as they are.
func OpenDir(dir string, maxDim int) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return &DirSource{paths: paths, maxDim: maxDim}, nil
}

// Len is the number of frames the source replays.
func (s *DirSource) Len() int {
	return len(s.paths)
}

func (s *DirSource) Next(ctx context.Context) (*imaging.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed || s.next >= len(s.paths) {
		s.mu.Unlock()
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	s.mu.Unlock()

	b, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}
	if s.maxDim > 0 {
		b = b.Fit(s.maxDim)
	}
	return b, nil
}

func (s *DirSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
