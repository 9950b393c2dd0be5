package headless

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
	"github.com/christian-post/NPC-Escort-Mission/internal/storage"
)

// The player starts on the exit next to the NPC.
const exitLevel = `
id: exit
layout:
  - "#######"
  - "#P.N..#"
  - "#######"
objects:
  - name: Exit
    x: 16
    y: 16
    w: 16
    h: 16
`

// No exit: the game only ends at the tick limit.
const openLevel = `
id: open
layout:
  - "##########"
  - "#P......N#"
  - "##########"
patrol:
  - [4, 1]
`

func mustLevel(t *testing.T, src string) level.Level {
	t.Helper()
	lvl, err := level.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	return lvl
}

func testConfig() *config.EscortConfig {
	cfg := config.DefaultEscortConfig()
	cfg.Difficulty.Enabled = false
	return &cfg
}

type memStore struct {
	saved []storage.RunRecord
	err   error
}

func (m *memStore) SaveRun(r storage.RunRecord) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	r.ID = uuid.New()
	m.saved = append(m.saved, r)
	return r.ID, nil
}

func TestRunOnceEndsOnEscort(t *testing.T) {
	rep, err := RunOnce(context.Background(), Options{
		Level:  mustLevel(t, exitLevel),
		Config: testConfig(),
		Ticks:  500,
	}, 1)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if !rep.Escorted {
		t.Errorf("expected an escort, got %+v", rep)
	}
	if rep.Ticks != 1 {
		t.Errorf("Ticks = %d, expected the run to stop at the win", rep.Ticks)
	}
	if rep.Score < testConfig().Escort.ExitBonus {
		t.Errorf("Score = %d, expected the exit bonus", rep.Score)
	}
	if rep.Level != "exit" || rep.Seed != 1 {
		t.Errorf("Level/Seed = %q/%d", rep.Level, rep.Seed)
	}
}

func TestRunOnceTickLimit(t *testing.T) {
	rep, err := RunOnce(context.Background(), Options{
		Level:  mustLevel(t, openLevel),
		Config: testConfig(),
		Ticks:  120,
	}, 0)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if rep.Escorted {
		t.Error("a level without an exit cannot be escorted")
	}
	if rep.Ticks != 120 {
		t.Errorf("Ticks = %d, expected 120", rep.Ticks)
	}
	if rep.SightTicks != 120 || rep.SightRatio() != 1 {
		t.Errorf("an empty corridor should keep the player in sight, got %d ticks", rep.SightTicks)
	}
}

func TestRunOnceDeterministic(t *testing.T) {
	opts := Options{
		Level:  level.Default(),
		Config: testConfig(),
		Ticks:  600,
	}

	a, err := RunOnce(context.Background(), opts, 7)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	b, err := RunOnce(context.Background(), opts, 7)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if a != b {
		t.Errorf("same seed gave different reports:\n%+v\n%+v", a, b)
	}
}

func TestRunSeedsAndSaves(t *testing.T) {
	store := &memStore{}
	reports, err := Run(context.Background(), Options{
		Level:    mustLevel(t, exitLevel),
		Config:   testConfig(),
		Ticks:    50,
		Runs:     3,
		SeedBase: 10,
		SeedStep: 5,
		Store:    store,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(reports) != 3 {
		t.Fatalf("got %d reports, expected 3", len(reports))
	}
	for i, want := range []int64{10, 15, 20} {
		if reports[i].Seed != want {
			t.Errorf("reports[%d].Seed = %d, expected %d", i, reports[i].Seed, want)
		}
		if reports[i].RunID == uuid.Nil {
			t.Errorf("reports[%d] was not given a run ID", i)
		}
	}

	if len(store.saved) != 3 {
		t.Fatalf("saved %d runs, expected 3", len(store.saved))
	}
	for _, r := range store.saved {
		if r.Mode != storage.ModeBatch || r.LevelID != "exit" || !r.Escorted {
			t.Errorf("unexpected record %+v", r)
		}
	}
}

func TestRunSaveFailureContinues(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	reports, err := Run(context.Background(), Options{
		Level:  mustLevel(t, exitLevel),
		Config: testConfig(),
		Runs:   2,
		Store:  store,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, expected 2", len(reports))
	}
	for _, r := range reports {
		if r.RunID != uuid.Nil {
			t.Errorf("unsaved report has ID %s", r.RunID)
		}
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); !errors.Is(err, ErrNoLevel) {
		t.Errorf("expected ErrNoLevel, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunOnce(ctx, Options{
		Level:  mustLevel(t, openLevel),
		Config: testConfig(),
		Ticks:  1000,
	}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s.Runs != 0 || s.AvgScore != 0 {
		t.Errorf("Summarize(nil) = %+v", s)
	}

	s := Summarize([]Report{
		{Ticks: 100, SightTicks: 50, PathRequests: 4, LostEvents: 1, MaxPath: 12, Escorted: true, Score: 600, Hash: 1},
		{Ticks: 300, SightTicks: 300, PathRequests: 0, LostEvents: 2, MaxPath: 3, Score: 50, Hash: 1},
	})

	if s.Runs != 2 || s.Escorts != 1 {
		t.Errorf("Runs/Escorts = %d/%d", s.Runs, s.Escorts)
	}
	if s.AvgTicks != 200 || s.AvgScore != 325 || s.AvgRequests != 2 {
		t.Errorf("averages = %v %v %v", s.AvgTicks, s.AvgScore, s.AvgRequests)
	}
	if s.AvgSight != 0.75 {
		t.Errorf("AvgSight = %v, expected 0.75", s.AvgSight)
	}
	if s.TotalLost != 3 || s.LongestPath != 12 || s.BestScore != 600 {
		t.Errorf("totals = %+v", s)
	}
	if s.DistinctRuns != 1 {
		t.Errorf("DistinctRuns = %d, expected 1", s.DistinctRuns)
	}
}
