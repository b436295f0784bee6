package game

import "time"

const (
	// GraceSeconds is how long a mid-game slot is held after the last
	// connected player drops, waiting for a reconnect.
	GraceSeconds = 30

	// MinPlayersToStart gates the lobby auto-start.
	MinPlayersToStart = 2

	// TickRate is the fixed server simulation rate.
	TickRate     = 20
	TickInterval = time.Second / TickRate
)

// Map dimensions in world units. Y grows downward; the floor runs along
// GroundY.
const (
	MapWidth  = 1280.0
	MapHeight = 720.0
	GroundY   = 650.0
)

// Player movement tuning.
const (
	moveSpeed = 280.0
	jumpSpeed = 560.0
	gravity   = 1400.0
)

// spawnPositions are assigned round-robin at game start and on late joins.
var spawnPositions = [4][2]float64{
	{160, GroundY},
	{1120, GroundY},
	{480, GroundY},
	{800, GroundY},
}
