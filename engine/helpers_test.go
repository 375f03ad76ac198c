package engine_test

import (
	"time"

	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
)

// fakeClock advances by step on every Now call.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Unix(0, 0), step: step}
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// recorder is a user component that logs every callback it receives into a
// shared journal.
type recorder struct {
	ecs.Behavior
	name    string
	journal *[]string

	updates      []float64
	fixedUpdates []float64
	collisions   []ecs.EntityHandle
	destroyed    int
	onUpdate     func()
}

func (r *recorder) Update(dt float64) {
	r.updates = append(r.updates, dt)
	r.log("update")
	if r.onUpdate != nil {
		r.onUpdate()
	}
}

func (r *recorder) FixedUpdate(dt float64) {
	r.fixedUpdates = append(r.fixedUpdates, dt)
	r.log("fixed")
}

func (r *recorder) OnDestroy() {
	r.destroyed++
	r.log("destroy")
}

func (r *recorder) OnCollision(other ecs.EntityHandle) {
	r.collisions = append(r.collisions, other)
}

func (r *recorder) log(event string) {
	if r.journal != nil {
		*r.journal = append(*r.journal, r.name+":"+event)
	}
}

// journalBackend records render calls into the same journal.
type journalBackend struct {
	journal     *[]string
	submissions []engine.RenderSubmission
	lights      []engine.LightSubmission
	endErr      error
}

func (b *journalBackend) BeginFrame() { *b.journal = append(*b.journal, "render:begin") }

func (b *journalBackend) BindLights(lights []engine.LightSubmission) {
	b.lights = append(b.lights[:0], lights...)
	*b.journal = append(*b.journal, "render:lights")
}

func (b *journalBackend) Submit(s engine.RenderSubmission) {
	b.submissions = append(b.submissions, s)
	*b.journal = append(*b.journal, "render:submit")
}

func (b *journalBackend) EndFrame() error {
	*b.journal = append(*b.journal, "render:end")
	return b.endErr
}

// journalPlatform records pump/flush calls.
type journalPlatform struct {
	journal *[]string
	quit    bool
}

func (p *journalPlatform) PumpMessages() bool {
	*p.journal = append(*p.journal, "pump")
	return !p.quit
}

func (p *journalPlatform) FlushInput() {
	*p.journal = append(*p.journal, "flush")
}

// recordingScene counts loads and unloads and spawns one tagged entity.
type recordingScene struct {
	name    string
	loads   int
	unloads int
}

func (s *recordingScene) Name() string { return s.name }

func (s *recordingScene) Load(ctx *engine.Context) error {
	s.loads++
	_, err := ctx.CreateEntity(engine.Vec3{}, engine.Vec3{}, engine.One, s.name+"-root")
	return err
}

func (s *recordingScene) Unload(*engine.Context) error {
	s.unloads++
	return nil
}
