// Package scrub captures preview thumbnails for hover positions on the progress bar by briefly
// probing the playing resource: silent seek, frame capture, restore.
package scrub

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"sync"
	"time"

	"github.com/marquee-player/marquee/constant"
	"github.com/marquee-player/marquee/key"
	"github.com/marquee-player/marquee/log"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/image/draw"
)

var (
	errTimeout = errors.New("seek did not complete in time")
	errMoved   = errors.New("playback moved during capture")
)

// Prober is the part of the resource adapter a capture needs.
type Prober interface {
	// Probe hides resource position changes from the state machine until release is called.
	Probe() (release func())
	CurrentTime() (float64, error)
	// SilentSeek moves the resource without a visible transition; the channel yields once when done.
	SilentSeek(t float64) <-chan error
	CaptureFrame(ctx context.Context) (image.Image, error)
	// SeekGeneration changes whenever playback is moved by a regular seek.
	SeekGeneration() uint64
}

// Thumbnail is an encoded preview frame.
type Thumbnail struct {
	Time     float64
	Width    int
	Height   int
	MimeType string
	Data     []byte
}

// Options tune captures.
type Options struct {
	// Timeout bounds the wait for each seek to complete.
	Timeout time.Duration
	// Width of the thumbnail in pixels. The height follows the frame's aspect ratio.
	Width   int
	Quality int
}

// OptionsFromConfig reads the scrub.* configuration keys.
func OptionsFromConfig() Options {
	return Options{
		Timeout: time.Duration(viper.GetInt(key.ScrubTimeout)) * time.Millisecond,
		Width:   viper.GetInt(key.ScrubWidth),
		Quality: viper.GetInt(key.ScrubQuality),
	}
}

// Scrubber serializes captures over one resource. A new request supersedes the one in flight.
type Scrubber struct {
	prober  Prober
	options Options
	log     *log.Entry

	mu         sync.Mutex // guards cancel and generation
	cancel     context.CancelFunc
	generation uint64

	// busy is held for the whole probe, restore included.
	busy sync.Mutex
}

// New creates a scrubber.
func New(prober Prober, options Options) *Scrubber {
	if options.Timeout <= 0 {
		options.Timeout = 2 * time.Second
	}
	if options.Quality <= 0 || options.Quality > 100 {
		options.Quality = jpeg.DefaultQuality
	}

	return &Scrubber{
		prober:  prober,
		options: options,
		log:     log.WithFields(log.Fields{"component": "scrub"}),
	}
}

// Capture returns a thumbnail of the frame at t, or nothing if the resource could not produce one in time.
// The resource's position is restored before Capture returns, unless playback was moved by a regular
// seek in the meantime. That seek wins and the capture yields nothing.
func (s *Scrubber) Capture(ctx context.Context, t float64) mo.Option[Thumbnail] {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return mo.None[Thumbnail]()
	}
	t = math.Max(t, 0)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	generation := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.busy.Lock()
	defer s.busy.Unlock()

	if s.superseded(generation) || ctx.Err() != nil {
		return mo.None[Thumbnail]()
	}

	release := s.prober.Probe()
	defer release()

	seeks := s.prober.SeekGeneration()
	moved := func() bool { return s.prober.SeekGeneration() != seeks }

	origin, err := s.prober.CurrentTime()
	if err != nil {
		s.log.Debugf("thumbnail at %.3f: read position: %v", t, err)
		return mo.None[Thumbnail]()
	}
	defer func() {
		if moved() {
			s.log.Debugf("thumbnail at %.3f: playback moved, not restoring %.3f", t, origin)
			return
		}
		s.restore(origin)
	}()

	thumbnail, err := s.capture(ctx, t)
	if err == nil && moved() {
		err = errMoved
	}
	if err != nil {
		s.log.Debugf("thumbnail at %.3f: %v", t, err)
		return mo.None[Thumbnail]()
	}

	return mo.Some(thumbnail)
}

func (s *Scrubber) superseded(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != generation
}

func (s *Scrubber) await(ctx context.Context, done <-chan error) error {
	timer := time.NewTimer(s.options.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scrubber) capture(ctx context.Context, t float64) (Thumbnail, error) {
	if err := s.await(ctx, s.prober.SilentSeek(t)); err != nil {
		return Thumbnail{}, fmt.Errorf("seek: %w", err)
	}

	frame, err := s.prober.CaptureFrame(ctx)
	if err != nil {
		return Thumbnail{}, fmt.Errorf("capture: %w", err)
	}

	scaled := scale(frame, s.options.Width)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: s.options.Quality}); err != nil {
		return Thumbnail{}, fmt.Errorf("encode: %w", err)
	}

	return Thumbnail{
		Time:     t,
		Width:    scaled.Bounds().Dx(),
		Height:   scaled.Bounds().Dy(),
		MimeType: constant.MimeJPEG,
		Data:     buf.Bytes(),
	}, nil
}

// restore seeks back to where the resource was before the probe. It ignores cancellation.
func (s *Scrubber) restore(origin float64) {
	if err := s.await(context.Background(), s.prober.SilentSeek(origin)); err != nil {
		s.log.Debugf("restore to %.3f: %v", origin, err)
	}
}

// scale resizes src to width, keeping its aspect ratio. Frames narrower than width are kept as they are.
func scale(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if width <= 0 || bounds.Dx() <= width {
		return src
	}

	height := int(math.Round(float64(bounds.Dy()) * float64(width) / float64(bounds.Dx())))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
