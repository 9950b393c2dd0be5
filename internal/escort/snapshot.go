package escort

import "math"

// Snapshot is the observable game state, in integers for stable comparison.
// Positions and velocities are stored in thousandths of a pixel.
type Snapshot struct {
	Tick  uint64
	Level string
	State string
	Score int

	PlayerX, PlayerY   int
	PlayerVX, PlayerVY int
	LastCellX          int
	LastCellY          int

	NPCX, NPCY   int
	NPCVX, NPCVY int
	NPCFacing    int

	Mode         int
	Lost         bool
	PathLen      int
	PathRequests int
	SightTicks   int
	LostEvents   int

	// Remaining waypoints, two ints each
	WaypointData []int
}

func milli(v float64) int {
	return int(math.Round(v * 1000))
}

// Snapshot returns the current game state as a Snapshot.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:  uint64(g.stats.Ticks), //#nosec G115 -- tick count is always positive
		Level: g.LevelID(),
		State: g.state,
		Score: g.score,

		Mode:         int(g.decision.Mode),
		Lost:         g.decision.Lost,
		PathLen:      len(g.decision.Path),
		PathRequests: g.stats.PathRequests,
		SightTicks:   g.stats.SightTicks,
		LostEvents:   g.stats.LostEvents,
	}
	if g.world == nil {
		return snap
	}

	p, n := g.world.Player, g.world.NPC
	snap.PlayerX, snap.PlayerY = milli(p.Pos.X), milli(p.Pos.Y)
	snap.PlayerVX, snap.PlayerVY = milli(p.Vel.X), milli(p.Vel.Y)
	snap.LastCellX, snap.LastCellY = p.LastCell.X, p.LastCell.Y
	snap.NPCX, snap.NPCY = milli(n.Pos.X), milli(n.Pos.Y)
	snap.NPCVX, snap.NPCVY = milli(n.Vel.X), milli(n.Vel.Y)
	snap.NPCFacing = int(n.Facing())

	snap.WaypointData = make([]int, 0, len(g.decision.Waypoints)*2)
	for _, wp := range g.decision.Waypoints {
		snap.WaypointData = append(snap.WaypointData, milli(wp.X), milli(wp.Y))
	}
	return snap
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	for _, r := range snap.Level + "/" + snap.State {
		h = h*31 + uint64(r) //#nosec G115 -- hash computation
	}
	h = h*31 + uint64(snap.Score)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerX)   //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerY)   //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerVX)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerVY)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.LastCellX) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.LastCellY) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.NPCX)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.NPCY)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.NPCVX)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.NPCVY)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.NPCFacing) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Mode)      //#nosec G115 -- hash computation
	if snap.Lost {
		h = h*31 + 1
	}
	h = h*31 + uint64(snap.PathLen)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PathRequests) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.SightTicks)   //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.LostEvents)   //#nosec G115 -- hash computation

	for _, v := range snap.WaypointData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}

	return h
}
