package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
)

// Inspector shows the engine and user components of the entity selected in
// an EntityBrowser.
type Inspector struct {
	ctx     *engine.Context
	browser *EntityBrowser
}

func NewInspector(ctx *engine.Context, browser *EntityBrowser) *Inspector {
	return &Inspector{ctx: ctx, browser: browser}
}

func (in *Inspector) Render() {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	selected := in.browser.Selected()
	if selected.IsNull() {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	e, err := in.ctx.GetEntity(selected)
	if err != nil {
		imgui.Text(fmt.Sprintf("Entity %d not found", selected))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %d", e.Handle()))
	imgui.Text(fmt.Sprintf("Tag: %s", e.Tag()))
	imgui.Separator()

	for _, line := range describeEngine(in.ctx, e) {
		if imgui.TreeNodeStr(line.kind) {
			imgui.Text(fmt.Sprintf("handle %d", line.handle))
			imgui.Text(line.value)
			imgui.TreePop()
		}
	}
	for i, uc := range e.UserComponents() {
		if imgui.TreeNodeStr(fmt.Sprintf("%s##%d", typeName(uc), i)) {
			imgui.Text(fmt.Sprintf("%+v", uc))
			imgui.TreePop()
		}
	}

	imgui.End()
}

type engineLine struct {
	kind   string
	handle ecs.ComponentHandle
	value  string
}

func describeEngine(ctx *engine.Context, e *ecs.Entity) []engineLine {
	var lines []engineLine
	for kind := range ecs.EngineKindCount {
		ch := e.EngineHandle(kind)
		if ch.IsNull() {
			continue
		}
		var value any
		var err error
		switch kind {
		case ecs.KindTransform:
			value, err = ctx.Transforms().Get(ch)
		case ecs.KindRenderer:
			value, err = ctx.Renderers().Get(ch)
		case ecs.KindLight:
			value, err = ctx.Lights().Get(ch)
		case ecs.KindNetwork:
			value, err = ctx.Dispatchers().Get(ch)
		}
		text := fmt.Sprintf("%+v", value)
		if err != nil {
			text = err.Error()
		}
		lines = append(lines, engineLine{kind: kind.String(), handle: ch, value: text})
	}
	return lines
}
