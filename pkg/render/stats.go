package render

import "log/slog"

// Stats counts the work done by the most recent flush of each phase.
type Stats struct {
	LayoutPasses       int
	NodesLaidOut       int
	LayoutFailures     int
	CompositingUpdates int
	BoundariesPainted  int
	NodesPainted       int
	LayersReused       int
	PaintFailures      int
}

func (s Stats) layoutAttrs() []any {
	return []any{
		slog.Int("passes", s.LayoutPasses),
		slog.Int("laid_out", s.NodesLaidOut),
		slog.Int("failures", s.LayoutFailures),
	}
}

func (s Stats) paintAttrs() []any {
	return []any{
		slog.Int("boundaries", s.BoundariesPainted),
		slog.Int("painted", s.NodesPainted),
		slog.Int("reused", s.LayersReused),
		slog.Int("failures", s.PaintFailures),
	}
}
