package rendertest

import (
	"slices"
	"sync"

	"github.com/go-drift/rendertree/pkg/arity"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// Log collects events in call order. The zero value is ready to use.
type Log struct {
	mu     sync.Mutex
	events []string
}

func (l *Log) add(event string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events.
func (l *Log) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

// Count returns how often event was recorded.
func (l *Log) Count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e == event {
			n++
		}
	}
	return n
}

// Reset forgets all events.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// Recorder is a box that records "layout <Name>" and "paint <Name>" into
// Log. With a child it passes its constraints through and adopts the
// child's size; without one it takes Size, constrained.
type Recorder struct {
	arity.OptionalKind
	Name string
	Log  *Log
	Size graphics.Size
	// Color, when not transparent, fills the recorder's bounds before its
	// child paints.
	Color graphics.Color

	RelayoutBoundary bool
	RepaintBoundary  bool
}

func (r *Recorder) Protocol() layout.Protocol { return layout.Box }

func (r *Recorder) IsRelayoutBoundary() bool { return r.RelayoutBoundary }

func (r *Recorder) IsRepaintBoundary() bool { return r.RepaintBoundary }

func (r *Recorder) DebugName() string { return r.Name }

func (r *Recorder) PerformLayout(ctx *render.LayoutContext) error {
	r.Log.add("layout " + r.Name)
	c := ctx.BoxConstraints()
	if ctx.ChildCount() == 0 {
		ctx.SetSize(c.Constrain(r.Size))
		return nil
	}
	size, err := ctx.LayoutBox(ctx.Child(0), c, true)
	if err != nil {
		return err
	}
	ctx.SetSize(size)
	return nil
}

func (r *Recorder) Paint(ctx *render.PaintContext, offset graphics.Offset) {
	r.Log.add("paint " + r.Name)
	if r.Color.Alpha() > 0 {
		ctx.Canvas().DrawRect(graphics.RectFromOffsetSize(offset, ctx.Size()), graphics.FillPaint(r.Color))
	}
	if ctx.ChildCount() == 0 {
		return
	}
	child := ctx.Child(0)
	var childOffset graphics.Offset
	if pd := ctx.ParentData(child); pd != nil {
		childOffset = pd.PaintOffset()
	}
	ctx.PaintChild(child, offset.Add(childOffset))
}
