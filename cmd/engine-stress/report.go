package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
)

type Report struct {
	// Configuration
	Duration     time.Duration
	Entities     int
	Churn        int
	Workers      int
	PoolCapacity int

	// Results
	TotalFrames    int64
	TotalTime      time.Duration
	Worlds         []WorldResult
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// WorldResult holds one worker's outcome.
type WorldResult struct {
	FrameTime Stats
	Loop      engine.LoopStats
	Context   engine.ContextStats
	Created   int64
	Destroyed int64
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// Finalize totals frames across worlds.
func (r *Report) Finalize() {
	r.TotalFrames = 0
	for _, w := range r.Worlds {
		r.TotalFrames += w.Loop.Frames
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Engine Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities per World:** {{.Entities}}
- **Churn per Frame:** {{.Churn}}
- **Worlds:** {{.Workers}}
- **Pool Capacity:** {{.PoolCapacity}}

## Performance Results
- **Total Frames:** {{.TotalFrames}}
- **Total Test Time:** {{.TotalTime}}
{{range $i, $w := .Worlds}}
### World {{$i}}
- **Frames:** {{$w.Loop.Frames}} ({{$w.Loop.FixedSteps}} fixed steps)
- **Frame Time:** avg {{$w.FrameTime.Avg}}, min {{$w.FrameTime.Min}}, max {{$w.FrameTime.Max}}
- **Entities:** {{$w.Context.Entities.Active}} active, {{$w.Created}} created, {{$w.Destroyed}} destroyed
{{range $w.Loop.Stages}}  - {{.Name}}: avg {{.AvgDuration}}, max {{.MaxDuration}} over {{.ExecutionCount}} runs
{{end}}{{range $kind, $t := $w.Context.Tables}}  - table {{kind $kind}}: {{$t.Live}} live in {{$t.Pools}} pools, {{$t.FreeSlots}} free slots
{{end}}{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
		"kind": func(i int) string {
			return ecs.EngineKind(i).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	return tmpl.Execute(w, r)
}
