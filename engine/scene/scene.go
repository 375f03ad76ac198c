// Package scene loads entity layouts from YAML files into an engine Context.
package scene

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/plus3/framecore/engine"
	"github.com/plus3/framecore/engine/script"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the on-disk description of a scene.
type File struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`
}

// Entity describes one entity and the components attached on load.
type Entity struct {
	Tag      string    `yaml:"tag"`
	Position Vec3      `yaml:"position"`
	Rotation Vec3      `yaml:"rotation"`
	Scale    *Vec3     `yaml:"scale,omitempty"`
	Renderer *Renderer `yaml:"renderer,omitempty"`
	Light    *Light    `yaml:"light,omitempty"`
	Network  *Network  `yaml:"network,omitempty"`
	Scripts  []Script  `yaml:"scripts,omitempty"`
}

type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) engine() engine.Vec3 {
	return engine.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

type Renderer struct {
	Mesh     string    `yaml:"mesh"`
	Material string    `yaml:"material"`
	Color    [4]uint8  `yaml:"color"`
	Size     []float64 `yaml:"size,omitempty"`
	Hidden   bool      `yaml:"hidden,omitempty"`
}

type Light struct {
	Color     [4]uint8 `yaml:"color"`
	Intensity float64  `yaml:"intensity"`
	Radius    float64  `yaml:"radius"`
}

type Network struct {
	Channel string `yaml:"channel"`
}

// Script is either a file path, resolved against the scene file's directory,
// or inline Lua source.
type Script struct {
	File   string `yaml:"file,omitempty"`
	Source string `yaml:"source,omitempty"`
}

// Decode reads a scene description from r.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &f, nil
}

// Scene is an engine.Scene backed by a File.
type Scene struct {
	file *File
	dir  string
}

// New wraps an already decoded File. Relative script paths resolve against dir.
func New(f *File, dir string) *Scene {
	return &Scene{file: f, dir: dir}
}

// Open reads and decodes the YAML scene at path.
func Open(path string) (*Scene, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Name == "" {
		f.Name = filepath.Base(path)
	}
	return New(f, filepath.Dir(path)), nil
}

func (s *Scene) Name() string {
	return s.file.Name
}

// Load creates every described entity with its components.
func (s *Scene) Load(ctx *engine.Context) error {
	for i, desc := range s.file.Entities {
		if err := s.spawn(ctx, desc); err != nil {
			return fmt.Errorf("entity %d (%s): %w", i, desc.Tag, err)
		}
	}
	ctx.Logger().Debug("scene populated",
		zap.String("scene", s.Name()),
		zap.Int("entities", len(s.file.Entities)),
	)
	return nil
}

// Unload has nothing to release; entities are cleared by the Context.
func (s *Scene) Unload(*engine.Context) error {
	return nil
}

func (s *Scene) spawn(ctx *engine.Context, desc Entity) error {
	scale := engine.One
	if desc.Scale != nil {
		scale = desc.Scale.engine()
	}
	h, err := ctx.CreateEntity(desc.Position.engine(), desc.Rotation.engine(), scale, desc.Tag)
	if err != nil {
		return err
	}

	if r := desc.Renderer; r != nil {
		comp := engine.Renderer{
			Mesh:     r.Mesh,
			Material: r.Material,
			Color:    rgba(r.Color),
			Size:     engine.Vec2{X: 1, Y: 1},
			Hidden:   r.Hidden,
		}
		if len(r.Size) == 2 {
			comp.Size = engine.Vec2{X: r.Size[0], Y: r.Size[1]}
		}
		if _, err := engine.AddEngineComponent(ctx, h, comp); err != nil {
			return err
		}
	}
	if l := desc.Light; l != nil {
		comp := engine.PointLight{Color: rgba(l.Color), Intensity: l.Intensity, Radius: l.Radius}
		if _, err := engine.AddEngineComponent(ctx, h, comp); err != nil {
			return err
		}
	}
	if n := desc.Network; n != nil {
		if _, err := engine.AddEngineComponent(ctx, h, engine.NetworkDispatcher{Channel: n.Channel}); err != nil {
			return err
		}
	}

	for _, sc := range desc.Scripts {
		b, err := s.loadScript(ctx, desc.Tag, sc)
		if err != nil {
			return err
		}
		if _, err := engine.AddUserComponent(ctx, h, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) loadScript(ctx *engine.Context, tag string, sc Script) (*script.Behavior, error) {
	switch {
	case sc.File != "":
		path := sc.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		return script.Load(ctx, path)
	case sc.Source != "":
		return script.New(ctx, tag+" (inline)", sc.Source)
	}
	return nil, fmt.Errorf("script needs a file or source")
}

func rgba(c [4]uint8) engine.RGBA {
	return engine.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}
