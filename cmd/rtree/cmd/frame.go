package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/go-drift/rendertree/cmd/rtree/internal/scene"
	"github.com/go-drift/rendertree/pkg/graphics"
	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/layout"
	"github.com/go-drift/rendertree/pkg/render"
)

// frameFlags are the flags shared by commands that render a scene.
type frameFlags struct {
	width  float64
	height float64
}

func (f *frameFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.width, "width", 0, "root width (overrides scene and config)")
	fs.Float64Var(&f.height, "height", 0, "root height (overrides scene and config)")
}

// frameResult is one rendered scene file.
type frameResult struct {
	tree  *scene.Tree
	scene *layer.Scene
	size  graphics.Size
}

// renderScene loads the scene at path and runs one frame. The root size is
// taken from the flags, then the scene file, then the configuration. A
// failed flush still returns the result so callers can show partial output.
func renderScene(path string, flags frameFlags) (*frameResult, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	file, err := scene.Load(path)
	if err != nil {
		return nil, err
	}

	size := file.FrameSize(cfg.Frame.Size())
	if flags.width > 0 {
		size.Width = flags.width
	}
	if flags.height > 0 {
		size.Height = flags.height
	}

	owner := render.NewOwner(render.WithConfig(cfg.Pipeline))
	tree, err := file.Build(owner)
	if err != nil {
		return nil, err
	}
	res := &frameResult{tree: tree, size: size}
	res.scene, err = owner.FlushPipeline(layout.Tight(size))
	if err != nil {
		return res, fmt.Errorf("frame failed: %w", err)
	}
	return res, nil
}

// sceneArg parses fs and returns the scene path followed by any remaining
// positional arguments.
func sceneArg(fs *pflag.FlagSet, args []string, extra int) (string, []string, error) {
	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}
	rest := fs.Args()
	if len(rest) != 1+extra {
		return "", nil, fmt.Errorf("expected %d argument(s), got %d", 1+extra, len(rest))
	}
	return rest[0], rest[1:], nil
}
