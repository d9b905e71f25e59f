package cmd

import (
	"fmt"

	"github.com/go-drift/rendertree/pkg/rendertest"
)

func init() {
	RegisterCommand(&Command{
		Name:  "dump",
		Short: "Print the layer tree of a scene",
		Long: `Run one frame of a scene file and print the composited layer tree.

Each line is a layer; the display operations of picture layers follow
their layer, indented one level deeper.

Flags:
  --width W     Root width
  --height H    Root height
  --stats       Also print pipeline statistics`,
		Usage: "rtree dump <scene.yaml> [--width W] [--height H] [--stats]",
		Run:   runDump,
	})

	RegisterCommand(&Command{
		Name:  "tree",
		Short: "Print the render tree of a scene as JSON",
		Long: `Run one frame of a scene file and print the render tree as JSON,
in the same format rendertest snapshots use.

Flags:
  --width W     Root width
  --height H    Root height`,
		Usage: "rtree tree <scene.yaml> [--width W] [--height H]",
		Run:   runTree,
	})
}

func runDump(args []string) error {
	fs := newFlagSet("dump")
	var flags frameFlags
	flags.register(fs)
	stats := fs.Bool("stats", false, "print pipeline statistics")
	path, _, err := sceneArg(fs, args, 0)
	if err != nil {
		return err
	}

	res, err := renderScene(path, flags)
	if res != nil && res.scene != nil {
		fmt.Fprintf(stdout, "frame %gx%g, %d layers\n", res.size.Width, res.size.Height, res.scene.Len())
		for _, line := range rendertest.DescribeScene(res.scene) {
			fmt.Fprintln(stdout, line)
		}
	}
	if res != nil && *stats {
		s := res.tree.Owner.Stats()
		fmt.Fprintf(stdout, "layout: %d passes, %d nodes, %d failures\n", s.LayoutPasses, s.NodesLaidOut, s.LayoutFailures)
		fmt.Fprintf(stdout, "paint: %d boundaries, %d nodes, %d layers reused, %d failures\n",
			s.BoundariesPainted, s.NodesPainted, s.LayersReused, s.PaintFailures)
	}
	return err
}

func runTree(args []string) error {
	fs := newFlagSet("tree")
	var flags frameFlags
	flags.register(fs)
	path, _, err := sceneArg(fs, args, 0)
	if err != nil {
		return err
	}

	res, err := renderScene(path, flags)
	if res == nil {
		return err
	}
	snap := rendertest.Capture(res.tree.Owner, nil)
	data, jerr := snap.JSON()
	if jerr != nil {
		return jerr
	}
	if _, werr := stdout.Write(data); werr != nil {
		return werr
	}
	return err
}
