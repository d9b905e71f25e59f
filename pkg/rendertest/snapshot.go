package rendertest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/go-drift/rendertree/pkg/layer"
	"github.com/go-drift/rendertree/pkg/render"
)

// UpdateEnv is the environment variable that makes MatchesFile rewrite
// golden files instead of comparing against them.
const UpdateEnv = "RENDERTREE_UPDATE_SNAPSHOTS"

// Snapshot captures the render tree and the layers of the last frame.
type Snapshot struct {
	Tree   *Node    `json:"tree,omitempty"`
	Layers []string `json:"layers,omitempty"`
}

// Node is a serialized render node.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Protocol   string         `json:"protocol"`
	Size       [2]any         `json:"size"`
	Offset     [2]any         `json:"offset"`
	Boundaries []string       `json:"boundaries,omitempty"`
	Dirty      []string       `json:"dirty,omitempty"`
	Properties map[string]any `json:"props,omitempty"`
	Children   []*Node        `json:"children,omitempty"`
}

// propertyWhitelist names the fields serialized per object type. Types not
// listed here are serialized without props.
var propertyWhitelist = map[string][]string{
	"ColoredBox":            {"Size", "Color", "Behavior"},
	"ConstrainedBox":        {"Extra"},
	"SizedByParentBox":      {"Color"},
	"PositionedBox":         {"Offset"},
	"Padding":               {"Insets"},
	"Opacity":               {"Alpha"},
	"Transform":             {"Matrix"},
	"Stack":                 {"Fit", "RelayoutBoundary"},
	"Viewport":              {"AxisDirection", "ScrollOffset", "CacheExtent"},
	"SliverFixedExtentList": {"ItemExtent"},
	"Recorder":              {"Name", "Size"},
}

// Snapshot captures the mounted tree and the scene of the last Pump.
func (t *Tester) Snapshot() *Snapshot {
	return Capture(t.owner, t.scene)
}

// Capture snapshots the tree mounted in o and, when scene is not nil, its
// layers.
func Capture(o *render.Owner, scene *layer.Scene) *Snapshot {
	snap := &Snapshot{}
	if root := o.Root(); !root.IsZero() {
		snap.Tree = captureNode(o, root, &typeCounter{})
	}
	if scene != nil {
		snap.Layers = DescribeScene(scene)
	}
	return snap
}

// JSON returns the indented JSON form of the snapshot.
func (s *Snapshot) JSON() ([]byte, error) {
	return marshalSnapshot(s)
}

// DumpTree returns the indented JSON form of the tester's snapshot.
func (t *Tester) DumpTree() string {
	data, err := marshalSnapshot(t.Snapshot())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// DescribeScene renders a scene as one line per layer and display op.
// Layer IDs are left out so the output is stable across runs.
func DescribeScene(s *layer.Scene) []string {
	var lines []string
	s.Walk(func(n *layer.SceneNode, depth int) bool {
		indent := strings.Repeat("  ", depth)
		lines = append(lines, indent+describeLayer(n))
		if n.Picture != nil {
			for _, op := range n.Picture.Describe() {
				lines = append(lines, indent+"  "+op)
			}
		}
		return true
	})
	return lines
}

func describeLayer(n *layer.SceneNode) string {
	switch n.Kind {
	case layer.KindOffset:
		return fmt.Sprintf("Offset(%g, %g)", round2(n.Offset.X), round2(n.Offset.Y))
	case layer.KindClipRect:
		return fmt.Sprintf("ClipRect(%g, %g, %g, %g)",
			round2(n.Clip.Left), round2(n.Clip.Top), round2(n.Clip.Right), round2(n.Clip.Bottom))
	case layer.KindOpacity:
		return fmt.Sprintf("Opacity(%g) at (%g, %g)", round2(n.Alpha), round2(n.Offset.X), round2(n.Offset.Y))
	case layer.KindTransform:
		m := n.Transform
		return fmt.Sprintf("Transform[%g %g %g; %g %g %g]",
			round2(m[0]), round2(m[1]), round2(m[2]), round2(m[3]), round2(m[4]), round2(m[5]))
	case layer.KindPicture:
		ops := 0
		if n.Picture != nil {
			ops = n.Picture.Len()
		}
		return fmt.Sprintf("Picture(%d ops)", ops)
	default:
		return n.Kind.String()
	}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When UpdateEnv is set to 1,
// the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a unified diff from other to this snapshot, or the empty
// string if they serialize identically.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// typeCounter assigns stable IDs like "Padding#0", "Padding#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func captureNode(o *render.Owner, id render.NodeID, counter *typeCounter) *Node {
	obj := o.Object(id)
	typeName := objectTypeName(obj)
	size := o.Size(id)
	var x, y float64
	if pd := o.ParentData(id); pd != nil {
		off := pd.PaintOffset()
		x, y = off.X, off.Y
	}

	node := &Node{
		ID:       counter.next(typeName),
		Type:     typeName,
		Protocol: o.Protocol(id).String(),
		Size:     [2]any{jsonFloat(size.Width), jsonFloat(size.Height)},
		Offset:   [2]any{jsonFloat(x), jsonFloat(y)},
	}
	if o.IsRelayoutBoundary(id) {
		node.Boundaries = append(node.Boundaries, "relayout")
	}
	if o.IsRepaintBoundary(id) {
		node.Boundaries = append(node.Boundaries, "repaint")
	}
	if o.NeedsLayout(id) {
		node.Dirty = append(node.Dirty, "layout")
	}
	if o.NeedsPaint(id) {
		node.Dirty = append(node.Dirty, "paint")
	}
	if props := captureProperties(obj, typeName); len(props) > 0 {
		node.Properties = props
	}
	for _, child := range o.Children(id) {
		node.Children = append(node.Children, captureNode(o, child, counter))
	}
	return node
}

func objectTypeName(obj render.Object) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func captureProperties(obj render.Object, typeName string) map[string]any {
	whitelist, ok := propertyWhitelist[typeName]
	if !ok {
		return nil
	}

	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	props := make(map[string]any)
	for _, name := range whitelist {
		field := v.FieldByName(name)
		if !field.IsValid() {
			continue
		}
		if val := serializeFieldValue(field); val != nil {
			props[name] = val
		}
	}
	if len(props) == 0 {
		return nil
	}
	return props
}

func serializeFieldValue(v reflect.Value) any {
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return jsonFloat(v.Float())
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Array, reflect.Slice:
		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			out = append(out, serializeFieldValue(v.Index(i)))
		}
		return out
	case reflect.Struct:
		return serializeStruct(v)
	default:
		return nil
	}
}

// serializeStruct collects the exported fields of v into a map.
func serializeStruct(v reflect.Value) any {
	t := v.Type()
	m := make(map[string]any)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if val := serializeFieldValue(v.Field(i)); val != nil {
			m[f.Name] = val
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// jsonFloat rounds f to hundredths. Infinities, which JSON cannot carry,
// become "inf" and "-inf".
func jsonFloat(f float64) any {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return round2(f)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unifiedDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}
