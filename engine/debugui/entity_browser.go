package debugui

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
)

type EntityInfo struct {
	Handle         ecs.EntityHandle
	Tag            string
	EngineKinds    []string
	UserTypes      []string
	ComponentCount int
}

type entityBrowserCache struct {
	entities      []EntityInfo
	lastStats     ecs.RegistryStats
	sortColumn    int
	sortAscending bool
}

// EntityBrowser lists active entities with their attached components.
type EntityBrowser struct {
	ctx                *engine.Context
	cache              *entityBrowserCache
	selected           ecs.EntityHandle
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

func NewEntityBrowser(ctx *engine.Context, maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		ctx: ctx,
		cache: &entityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: maxEntitiesPerPage,
	}
}

func (eb *EntityBrowser) Render() {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded()

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Handle")
		imgui.TableSetupColumn("Tag")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntities(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		filtered := filterEntities(eb.cache.entities, eb.filterText)
		startIdx := min(eb.currentPage*eb.maxEntitiesPerPage, len(filtered))
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(filtered))

		for _, entity := range filtered[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selected == entity.Handle
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.Handle), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = entity.Handle
			}

			imgui.TableNextColumn()
			imgui.Text(entity.Tag)

			imgui.TableNextColumn()
			imgui.Text(strings.Join(append(append([]string{}, entity.EngineKinds...), entity.UserTypes...), ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ComponentCount))
		}

		imgui.EndTable()
	}

	filtered := filterEntities(eb.cache.entities, eb.filterText)
	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

// Selected returns the handle picked in the table, or ecs.NullEntity.
func (eb *EntityBrowser) Selected() ecs.EntityHandle {
	return eb.selected
}

func (eb *EntityBrowser) rebuildCacheIfNeeded() {
	stats := eb.ctx.Registry().Stats()
	if eb.cache.entities == nil || stats != eb.cache.lastStats {
		eb.cache.entities = collectEntities(eb.ctx.Registry())
		eb.cache.lastStats = stats
		sortEntities(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)
	}
}

func collectEntities(registry *ecs.EntityRegistry) []EntityInfo {
	entities := make([]EntityInfo, 0, registry.ActiveCount())
	_ = registry.ForEachActive(func(e *ecs.Entity) error {
		info := EntityInfo{Handle: e.Handle(), Tag: e.Tag()}
		for kind := range ecs.EngineKindCount {
			if e.HasEngine(kind) {
				info.EngineKinds = append(info.EngineKinds, kind.String())
			}
		}
		for _, uc := range e.UserComponents() {
			info.UserTypes = append(info.UserTypes, typeName(uc))
		}
		info.ComponentCount = len(info.EngineKinds) + len(info.UserTypes)
		entities = append(entities, info)
		return nil
	})
	return entities
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

func sortEntities(entities []EntityInfo, column int, ascending bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		var less bool

		switch column {
		case 1:
			less = a.Tag < b.Tag
		case 2:
			less = strings.Join(a.EngineKinds, ",") < strings.Join(b.EngineKinds, ",")
		case 3:
			less = a.ComponentCount < b.ComponentCount
		default:
			less = a.Handle < b.Handle
		}

		if !ascending {
			return !less
		}
		return less
	})
}

func filterEntities(entities []EntityInfo, filterText string) []EntityInfo {
	if filterText == "" {
		return entities
	}

	filtered := make([]EntityInfo, 0, len(entities))
	filterLower := strings.ToLower(filterText)

	for _, entity := range entities {
		idStr := fmt.Sprintf("%d", entity.Handle)
		tagStr := strings.ToLower(entity.Tag)
		componentsStr := strings.ToLower(strings.Join(entity.EngineKinds, " ") + " " + strings.Join(entity.UserTypes, " "))

		if !strings.Contains(idStr, filterLower) &&
			!strings.Contains(tagStr, filterLower) &&
			!strings.Contains(componentsStr, filterLower) {
			continue
		}
		filtered = append(filtered, entity)
	}

	return filtered
}
