package cmd

import (
	"fmt"
	"strconv"

	"github.com/go-drift/rendertree/pkg/graphics"
)

func init() {
	RegisterCommand(&Command{
		Name:  "hit",
		Short: "List the nodes under a point",
		Long: `Run one frame of a scene file and hit test a point in root
coordinates. Targets are printed topmost first with the point in each
target's local coordinates.

Flags:
  --width W     Root width
  --height H    Root height`,
		Usage: "rtree hit <scene.yaml> <x> <y> [--width W] [--height H]",
		Run:   runHit,
	})
}

func runHit(args []string) error {
	fs := newFlagSet("hit")
	var flags frameFlags
	flags.register(fs)
	path, coords, err := sceneArg(fs, args, 2)
	if err != nil {
		return err
	}
	x, err := strconv.ParseFloat(coords[0], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q: %w", coords[0], err)
	}
	y, err := strconv.ParseFloat(coords[1], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q: %w", coords[1], err)
	}

	res, err := renderScene(path, flags)
	if err != nil {
		return err
	}
	hits := res.tree.Owner.HitTest(graphics.Offset{X: x, Y: y})
	if len(hits) == 0 {
		fmt.Fprintln(stdout, "no targets")
		return nil
	}
	for _, h := range hits {
		fmt.Fprintf(stdout, "%s at (%g, %g)\n", res.tree.Name(h.ID), h.LocalPosition.X, h.LocalPosition.Y)
	}
	return nil
}
