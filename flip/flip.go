// Package flip animates an element between two layouts (First, Last, Invert, Play).
//
// The element is laid out at its final rectangle immediately, an inverse transform makes it
// appear at its previous rectangle, and the transform is then animated back to identity.
package flip

import (
	"context"
	"math"
	"sync"
	"time"
)

// fallbackSlack is added to the duration before cleanup is forced when no end event arrives.
const fallbackSlack = 100 * time.Millisecond

// Rect is a bounding rectangle in host units (pixels, terminal cells).
type Rect struct {
	Left, Top, Width, Height float64
}

// Transform is a translation followed by a scale, relative to the element's laid-out rectangle.
type Transform struct {
	TranslateX, TranslateY float64
	ScaleX, ScaleY         float64
}

// Identity leaves the element where layout put it.
var Identity = Transform{ScaleX: 1, ScaleY: 1}

// Invert computes the transform that makes an element laid out at after appear at before.
// A zero-sized after rectangle keeps a scale of 1 on that axis.
func Invert(before, after Rect) Transform {
	t := Transform{
		TranslateX: before.Left - after.Left,
		TranslateY: before.Top - after.Top,
		ScaleX:     1,
		ScaleY:     1,
	}

	if after.Width != 0 {
		t.ScaleX = before.Width / after.Width
	}
	if after.Height != 0 {
		t.ScaleY = before.Height / after.Height
	}

	return t
}

// IsIdentity reports whether the transform moves nothing.
func (t Transform) IsIdentity() bool {
	const eps = 1e-9
	return math.Abs(t.TranslateX) < eps && math.Abs(t.TranslateY) < eps &&
		math.Abs(t.ScaleX-1) < eps && math.Abs(t.ScaleY-1) < eps
}

// Lerp interpolates from t to to by progress p.
func (t Transform) Lerp(to Transform, p float64) Transform {
	lerp := func(a, b float64) float64 { return a + (b-a)*p }

	return Transform{
		TranslateX: lerp(t.TranslateX, to.TranslateX),
		TranslateY: lerp(t.TranslateY, to.TranslateY),
		ScaleX:     lerp(t.ScaleX, to.ScaleX),
		ScaleY:     lerp(t.ScaleY, to.ScaleY),
	}
}

// Apply returns where a rectangle laid out at r appears under the transform.
func (t Transform) Apply(r Rect) Rect {
	return Rect{
		Left:   r.Left + t.TranslateX,
		Top:    r.Top + t.TranslateY,
		Width:  r.Width * t.ScaleX,
		Height: r.Height * t.ScaleY,
	}
}

// Element is the styling surface the animator drives.
type Element interface {
	// SetTransform applies a transform immediately, without transition.
	SetTransform(t Transform)

	// FlushLayout forces the host to commit pending layout before the transition starts.
	FlushLayout()

	// Transition animates the current transform to the given one.
	Transition(to Transform, duration time.Duration, curve Curve)

	// OnTransitionEnd registers the callback fired when the running transition finishes.
	OnTransitionEnd(fn func())

	// ClearTransform removes every transform and transition, leaving the element purely laid out.
	ClearTransform()
}

// Animator plays FLIP transitions.
type Animator struct {
	Duration time.Duration
	Curve    Curve
	// ReducedMotion is read on every Play. When it reports true the element jumps to its final layout.
	ReducedMotion func() bool
}

// Play animates el from before to after. The returned channel is closed once the element has been
// cleaned up, which happens exactly once: on the transition end event, after duration+100ms, or when
// ctx is cancelled, whichever comes first.
func (a Animator) Play(ctx context.Context, el Element, before, after Rect) <-chan struct{} {
	done := make(chan struct{})

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			el.ClearTransform()
			close(done)
		})
	}

	inverse := Invert(before, after)
	if inverse.IsIdentity() || (a.ReducedMotion != nil && a.ReducedMotion()) {
		cleanup()
		return done
	}

	curve := a.Curve
	if curve == nil {
		curve = EaseInOut
	}

	ended := make(chan struct{}, 1)
	el.OnTransitionEnd(func() {
		select {
		case ended <- struct{}{}:
		default:
		}
	})

	el.SetTransform(inverse)
	el.FlushLayout()
	el.Transition(Identity, a.Duration, curve)

	go func() {
		timer := time.NewTimer(a.Duration + fallbackSlack)
		defer timer.Stop()

		select {
		case <-ended:
		case <-timer.C:
		case <-ctx.Done():
		}

		cleanup()
	}()

	return done
}
