// Package headless plays the self-driving escort game without a terminal,
// for batch measurements of how well the NPC keeps up.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/core"
	"github.com/christian-post/NPC-Escort-Mission/internal/escort"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
	"github.com/christian-post/NPC-Escort-Mission/internal/storage"
)

// Defaults for zero Options fields.
const (
	DefaultTicks    = 60 * 60 * 3
	DefaultTickRate = 60
	DefaultSeedStep = 1
)

// ErrNoLevel is returned when Options names no level.
var ErrNoLevel = errors.New("headless: no level")

// RunSaver persists finished runs.
type RunSaver interface {
	SaveRun(r storage.RunRecord) (uuid.UUID, error)
}

// Options configures a batch of runs.
type Options struct {
	Level    level.Level
	Config   *config.EscortConfig // nil loads the config file like interactive play
	Ticks    int                  // upper bound per run
	TickRate int
	Runs     int
	SeedBase int64
	SeedStep int64
	Logger   *log.Logger
	Store    RunSaver // optional
}

func (o *Options) normalize() {
	if o.Ticks <= 0 {
		o.Ticks = DefaultTicks
	}
	if o.TickRate <= 0 {
		o.TickRate = DefaultTickRate
	}
	if o.Runs <= 0 {
		o.Runs = 1
	}
	if o.SeedStep == 0 {
		o.SeedStep = DefaultSeedStep
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Report is the outcome of one run.
type Report struct {
	RunID        uuid.UUID // set once saved
	Seed         int64
	Level        string
	Ticks        int
	SightTicks   int
	PathRequests int
	LostEvents   int
	MaxPath      int
	Escorted     bool
	Score        int
	Hash         uint64 // final snapshot hash
}

// SightRatio is the share of ticks the NPC could see the player.
func (r Report) SightRatio() float64 {
	if r.Ticks == 0 {
		return 0
	}
	return float64(r.SightTicks) / float64(r.Ticks)
}

// Record converts the report for storage.
func (r Report) Record() storage.RunRecord {
	return storage.RunRecord{
		ID:           r.RunID,
		LevelID:      r.Level,
		Mode:         storage.ModeBatch,
		Ticks:        r.Ticks,
		SightTicks:   r.SightTicks,
		PathRequests: r.PathRequests,
		LostEvents:   r.LostEvents,
		Escorted:     r.Escorted,
		Score:        r.Score,
	}
}

// RunOnce plays a single attract game with the given seed until it ends
// or the tick limit is reached.
func RunOnce(ctx context.Context, opts Options, seed int64) (Report, error) {
	opts.normalize()
	if opts.Level.ID == "" {
		return Report{}, ErrNoLevel
	}
	logger := opts.Logger.With("level", opts.Level.ID, "seed", seed)

	g := escort.NewAttract()
	g.SetLevel(opts.Level)
	if opts.Config != nil {
		g.SetConfig(*opts.Config)
	}
	g.Reset(core.RuntimeConfig{
		ScreenW:  core.DefaultConfig().ScreenW,
		ScreenH:  core.DefaultConfig().ScreenH,
		TickRate: opts.TickRate,
		Seed:     seed,
	})
	if err := g.Err(); err != nil {
		return Report{}, fmt.Errorf("headless: level %s: %w", opts.Level.ID, err)
	}

	logger.Debug("run started", "ticks", opts.Ticks)
	in := core.NewInputFrame()
	for tick := 1; tick <= opts.Ticks; tick++ {
		if tick%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Report{}, err
			}
		}

		res := g.Step(in)
		for _, ev := range res.Events {
			logger.Info(ev, "tick", tick)
		}
		if res.State.GameOver {
			break
		}
	}

	stats := g.Stats()
	snap := g.Snapshot()
	rep := Report{
		Seed:         seed,
		Level:        opts.Level.ID,
		Ticks:        stats.Ticks,
		SightTicks:   stats.SightTicks,
		PathRequests: stats.PathRequests,
		LostEvents:   stats.LostEvents,
		MaxPath:      stats.MaxPath,
		Escorted:     stats.Escorted,
		Score:        g.State().Score,
		Hash:         snap.Hash(),
	}
	logger.Debug("run finished",
		"ticks", rep.Ticks, "escorted", rep.Escorted, "score", rep.Score,
		"replans", rep.PathRequests, "lost", rep.LostEvents)
	return rep, nil
}

// Run plays opts.Runs games with seeds SeedBase, SeedBase+SeedStep, ...
// and saves each report when a store is given. A failed save is logged
// and does not stop the batch.
func Run(ctx context.Context, opts Options) ([]Report, error) {
	opts.normalize()

	reports := make([]Report, 0, opts.Runs)
	for i := 0; i < opts.Runs; i++ {
		seed := opts.SeedBase + int64(i)*opts.SeedStep
		rep, err := RunOnce(ctx, opts, seed)
		if err != nil {
			return reports, err
		}

		if opts.Store != nil {
			id, saveErr := opts.Store.SaveRun(rep.Record())
			if saveErr != nil {
				opts.Logger.Warn("could not save run", "seed", seed, "error", saveErr)
			} else {
				rep.RunID = id
			}
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Summary aggregates a batch of reports.
type Summary struct {
	Runs         int
	Escorts      int
	AvgTicks     float64
	AvgScore     float64
	AvgSight     float64
	AvgRequests  float64
	TotalLost    int
	LongestPath  int
	BestScore    int
	DistinctRuns int // runs with a unique final snapshot
}

// Summarize aggregates reports.
func Summarize(reports []Report) Summary {
	var s Summary
	s.Runs = len(reports)
	if s.Runs == 0 {
		return s
	}

	hashes := make(map[uint64]struct{}, len(reports))
	for _, r := range reports {
		if r.Escorted {
			s.Escorts++
		}
		s.AvgTicks += float64(r.Ticks)
		s.AvgScore += float64(r.Score)
		s.AvgSight += r.SightRatio()
		s.AvgRequests += float64(r.PathRequests)
		s.TotalLost += r.LostEvents
		s.LongestPath = max(s.LongestPath, r.MaxPath)
		s.BestScore = max(s.BestScore, r.Score)
		hashes[r.Hash] = struct{}{}
	}

	n := float64(s.Runs)
	s.AvgTicks /= n
	s.AvgScore /= n
	s.AvgSight /= n
	s.AvgRequests /= n
	s.DistinctRuns = len(hashes)
	return s
}
