package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vireo-dev/vireo/internal/config"
	"github.com/vireo-dev/vireo/pkg/vireo"
)

type benchProfile struct {
	Name    string
	Refs    int
	Effects int
	Writes  int
}

var benchProfiles = map[string]benchProfile{
	"fast": {
		Name:    "fast",
		Refs:    100,
		Effects: 100,
		Writes:  1000,
	},
	"standard": {
		Name:    "standard",
		Refs:    1000,
		Effects: 1000,
		Writes:  10000,
	},
	"stress": {
		Name:    "stress",
		Refs:    10000,
		Effects: 10000,
		Writes:  100000,
	},
}

type benchResult struct {
	Profile      string  `json:"profile"`
	Refs         int     `json:"refs"`
	Effects      int     `json:"effects"`
	Writes       int     `json:"writes"`
	EffectRuns   int     `json:"effect_runs"`
	Flushes      int     `json:"flushes"`
	DurationMS   float64 `json:"duration_ms"`
	WritesPerSec float64 `json:"writes_per_sec"`
	GoVersion    string  `json:"go_version"`
}

func benchCmd() *cobra.Command {
	var (
		profileName string
		jsonOutput  string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run engine benchmark profiles",
		Long: `Run a write/notify workload against the reactivity engine.

Each iteration writes to a ref watched by one effect, then flushes the
scheduler. Profiles: fast, standard, stress. A vireo.json in the current
directory overrides the standard profile's sizes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := benchProfiles[profileName]
			if !ok {
				return fmt.Errorf("unknown profile %q (have fast, standard, stress)", profileName)
			}

			// vireo.json overrides the standard profile when present.
			if cfg, err := config.Load("."); err == nil && profileName == "standard" {
				p.Refs = cfg.Bench.Refs
				p.Effects = cfg.Bench.Effects
				p.Writes = cfg.Bench.Writes
			} else if err != nil && !errors.Is(err, config.ErrNotFound) {
				return err
			}

			result := runBench(p)

			info("profile:  %s", result.Profile)
			info("refs:     %d  effects: %d  writes: %d", result.Refs, result.Effects, result.Writes)
			info("runs:     %d effect runs in %d flushes", result.EffectRuns, result.Flushes)
			success("%.0f writes/sec (%.1fms total)", result.WritesPerSec, result.DurationMS)

			if jsonOutput != "" {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				data = append(data, '\n')
				if err := os.WriteFile(jsonOutput, data, 0644); err != nil {
					return err
				}
				info("wrote %s", jsonOutput)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "standard", "Benchmark profile (fast, standard, stress)")
	cmd.Flags().StringVarP(&jsonOutput, "json", "j", "", "Write results to a JSON file")

	return cmd
}

// benchObserver counts flushes and effect runs during the workload.
type benchObserver struct {
	flushes    int
	effectRuns int
}

func (o *benchObserver) FlushStarted(queued int)                 {}
func (o *benchObserver) FlushEnded(ran int, took time.Duration)  { o.flushes++ }
func (o *benchObserver) EffectRan(id uint64, took time.Duration) { o.effectRuns++ }

func (o *benchObserver) Triggered(target uint64, key any, notified int) {}

func runBench(p benchProfile) benchResult {
	scope := vireo.NewScope()
	obs := &benchObserver{}
	remove := vireo.Observe(obs)
	defer remove()

	refs := make([]*vireo.Ref[int], p.Refs)
	scope.Run(func() {
		for i := range refs {
			refs[i] = vireo.NewRef(0)
		}
		// Effects spread round-robin over the refs.
		for i := 0; i < p.Effects; i++ {
			ref := refs[i%len(refs)]
			vireo.Watch(func() {
				_ = ref.Get()
			})
		}
	})
	defer scope.Stop()

	// Keep write order deterministic across runs.
	order := make([]int, p.Writes)
	for i := range order {
		order[i] = i % len(refs)
	}
	sort.Ints(order)

	start := time.Now()
	for i, idx := range order {
		refs[idx].Set(i + 1)
		if i%len(refs) == len(refs)-1 {
			vireo.Flush()
		}
	}
	vireo.Drain()
	took := time.Since(start)

	return benchResult{
		Profile:      p.Name,
		Refs:         p.Refs,
		Effects:      p.Effects,
		Writes:       p.Writes,
		EffectRuns:   obs.effectRuns,
		Flushes:      obs.flushes,
		DurationMS:   float64(took.Microseconds()) / 1000,
		WritesPerSec: float64(p.Writes) / took.Seconds(),
		GoVersion:    runtime.Version(),
	}
}
