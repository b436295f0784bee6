package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessInput_MovesHorizontally(t *testing.T) {
	p := NewPlayer("alice", "alice", "Alice")
	p.Spawn(spawnPositions[0][0], spawnPositions[0][1])

	p.PendingActions = []string{"right"}
	p.ProcessInput(0.1)

	assert.InDelta(t, spawnPositions[0][0]+moveSpeed*0.1, p.X, 0.001)
	assert.Equal(t, 1, p.Facing)

	p.PendingActions = []string{"left"}
	p.ProcessInput(0.1)

	assert.InDelta(t, spawnPositions[0][0], p.X, 0.001)
	assert.Equal(t, -1, p.Facing)
}

func TestProcessInput_ConsumesPendingActions(t *testing.T) {
	p := NewPlayer("alice", "alice", "Alice")
	p.Spawn(100, GroundY)

	p.PendingActions = []string{"right"}
	p.ProcessInput(0.1)
	movedTo := p.X

	// Actions are consumed on the tick that processed them.
	assert.Nil(t, p.PendingActions)
	p.ProcessInput(0.1)
	assert.Equal(t, movedTo, p.X)
}

func TestProcessInput_JumpAndLand(t *testing.T) {
	p := NewPlayer("alice", "alice", "Alice")
	p.Spawn(100, GroundY)

	p.PendingActions = []string{"jump"}
	p.ProcessInput(0.05)

	assert.False(t, p.Ground)
	assert.Less(t, p.Y, GroundY)

	// No double jump while airborne.
	peak := p.VelY
	p.PendingActions = []string{"jump"}
	p.ProcessInput(0.05)
	assert.Greater(t, p.VelY, peak)

	// Gravity brings the player back down eventually.
	for i := 0; i < 200 && !p.Ground; i++ {
		p.ProcessInput(0.05)
	}
	assert.True(t, p.Ground)
	assert.Equal(t, GroundY, p.Y)
	assert.Equal(t, 0.0, p.VelY)
}

func TestProcessInput_ClampsToMapBounds(t *testing.T) {
	p := NewPlayer("alice", "alice", "Alice")
	p.Spawn(0, GroundY)

	p.PendingActions = []string{"left"}
	p.ProcessInput(1.0)
	assert.Equal(t, 0.0, p.X)

	p.Spawn(MapWidth, GroundY)
	p.PendingActions = []string{"right"}
	p.ProcessInput(1.0)
	assert.Equal(t, MapWidth, p.X)
}

func TestSpawn_ResetsMotion(t *testing.T) {
	p := NewPlayer("alice", "alice", "Alice")
	p.VelX = 100
	p.VelY = -200
	p.Ground = false

	p.Spawn(320, GroundY)

	assert.Equal(t, 320.0, p.X)
	assert.Equal(t, GroundY, p.Y)
	assert.Equal(t, 0.0, p.VelX)
	assert.Equal(t, 0.0, p.VelY)
	assert.True(t, p.Ground)
}
