// Package effect carries transient visual feedback (seek flashes, volume and zoom hints, errors)
// from the player to whatever draws it. Emission is fire-and-forget.
package effect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marquee-player/marquee/flip"
)

// Kind names a feedback effect.
type Kind string

const (
	SeekFeedback   Kind = "seek-feedback"
	VolumeFeedback Kind = "volume-feedback"
	ZoomFeedback   Kind = "zoom-feedback"
	ErrorFeedback  Kind = "error"
)

// Fit is how the video is sized in its box.
type Fit string

const (
	FitContain Fit = "contain"
	FitCover   Fit = "cover"
)

// Payload describes one effect. Only the fields relevant to Kind are set.
type Payload struct {
	Kind          Kind
	AmountSeconds float64
	Volume        float64
	Fit           Fit
	Message       string
}

func (p Payload) String() string {
	switch p.Kind {
	case SeekFeedback:
		return fmt.Sprintf("%+gs", p.AmountSeconds)
	case VolumeFeedback:
		return fmt.Sprintf("volume %d%%", int(p.Volume*100+0.5))
	case ZoomFeedback:
		return fmt.Sprintf("fit %s", p.Fit)
	case ErrorFeedback:
		return p.Message
	default:
		return string(p.Kind)
	}
}

// Emitter receives effects.
type Emitter interface {
	Emit(p Payload)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(p Payload)

func (f EmitterFunc) Emit(p Payload) { f(p) }

// Nop discards every effect.
var Nop Emitter = EmitterFunc(func(Payload) {})

// Recorder keeps every emitted effect.
type Recorder struct {
	mu       sync.Mutex
	payloads []Payload
}

func (r *Recorder) Emit(p Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
}

// Payloads returns a copy of what was recorded so far.
func (r *Recorder) Payloads() []Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Payload(nil), r.payloads...)
}

// Last returns the most recent payload.
func (r *Recorder) Last() (Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.payloads) == 0 {
		return Payload{}, false
	}
	return r.payloads[len(r.payloads)-1], true
}

// Overlay is a short-lived visual bound to the geometry of the player at the time it was created.
// It disposes of itself once its lifetime is over.
type Overlay struct {
	Payload Payload
	Bounds  flip.Rect

	expires time.Time
	done    chan struct{}
	once    sync.Once
}

// Show creates an overlay that lives for lifetime, or until ctx is cancelled or Dispose is called.
func Show(ctx context.Context, p Payload, bounds flip.Rect, lifetime time.Duration) *Overlay {
	o := &Overlay{
		Payload: p,
		Bounds:  bounds,
		expires: time.Now().Add(lifetime),
		done:    make(chan struct{}),
	}

	go func() {
		timer := time.NewTimer(lifetime)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
		case <-o.done:
		}
		o.Dispose()
	}()

	return o
}

// Dispose removes the overlay. It is safe to call more than once.
func (o *Overlay) Dispose() {
	o.once.Do(func() { close(o.done) })
}

// Done is closed once the overlay is gone.
func (o *Overlay) Done() <-chan struct{} {
	return o.done
}

// Visible reports whether the overlay is still showing.
func (o *Overlay) Visible() bool {
	select {
	case <-o.done:
		return false
	default:
		return true
	}
}

// Remaining is the time left before the overlay disposes of itself.
func (o *Overlay) Remaining() time.Duration {
	if !o.Visible() {
		return 0
	}
	return max(time.Until(o.expires), 0)
}
