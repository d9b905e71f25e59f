// Package rendertest provides helpers for testing render trees.
//
// # Quick Start
//
// Create a tester, mount a tree, pump a frame and make assertions:
//
//	func TestPadding(t *testing.T) {
//	    tester := rendertest.New(t)
//	    leaf := tester.Create(objects.NewColoredBox(graphics.Size{Width: 10, Height: 10}, graphics.ColorRed))
//	    tester.Mount(&objects.Padding{Insets: layout.EdgeInsetsAll(4)}, leaf)
//	    tester.MustPump()
//
//	    if got := tester.Owner().ParentData(leaf).PaintOffset(); got != (graphics.Offset{X: 4, Y: 4}) {
//	        t.Errorf("offset = %v", got)
//	    }
//	}
//
// # Visit Order
//
// Recorder is a pass-through node that logs its layout and paint calls into
// a shared Log, for assertions about which nodes a flush visited.
//
// # Snapshot Testing
//
// Capture the render tree and the composited layers and compare them with a
// golden file:
//
//	tester.Snapshot().MatchesFile(t, "testdata/padding.snapshot.json")
//
// Update snapshots with:
//
//	RENDERTREE_UPDATE_SNAPSHOTS=1 go test ./...
package rendertest
