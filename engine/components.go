package engine

import "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// One is the identity scale.
var One = Vec3{1, 1, 1}

// RGBA is a color with 8-bit channels.
type RGBA struct {
	R, G, B, A uint8
}

// Transform places an entity in the world. Every entity gets one on creation.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

// Translate moves the transform by delta.
func (t *Transform) Translate(delta Vec3) {
	t.Position = t.Position.Add(delta)
}

// Renderer describes how an entity is drawn. Entities with a Transform and a
// Renderer are submitted to the RenderBackend each frame unless Hidden.
type Renderer struct {
	Mesh     string
	Material string
	Color    RGBA
	Size     Vec2
	Hidden   bool
}

// PointLight is an omnidirectional light bound before submissions each frame.
type PointLight struct {
	Color     RGBA
	Intensity float64
	Radius    float64
}

// NetworkDispatcher queues outbound messages for an entity. Transport is the
// caller's concern; the dispatcher only buffers.
type NetworkDispatcher struct {
	Channel string
	outbox  [][]byte
}

// Queue appends a message to the outbox.
func (n *NetworkDispatcher) Queue(msg []byte) {
	n.outbox = append(n.outbox, msg)
}

// Pending returns how many messages are waiting.
func (n *NetworkDispatcher) Pending() int {
	return len(n.outbox)
}

// Drain returns and clears the queued messages.
func (n *NetworkDispatcher) Drain() [][]byte {
	out := n.outbox
	n.outbox = nil
	return out
}
