package game

// Player is the authoritative server-side state of one participant. The Room
// mutates it on joins, readiness changes and ticks; the transport layer never
// touches it directly.
type Player struct {
	Id          string
	Name        string
	DisplayName string

	X, Y   float64
	VelX   float64
	VelY   float64
	Facing int // 1 right, -1 left
	Ground bool

	Ready          bool
	PendingActions []string
	LastInputTick  int
}

func NewPlayer(id, name, displayName string) *Player {
	return &Player{
		Id:          id,
		Name:        name,
		DisplayName: displayName,
		Facing:      1,
		Ground:      true,
	}
}

// Spawn resets the player onto a spawn point, discarding any motion.
func (p *Player) Spawn(x, y float64) {
	p.X = x
	p.Y = y
	p.VelX = 0
	p.VelY = 0
	p.Ground = true
}

// ProcessInput advances the player by dt seconds, applying the pending
// actions queued since the last tick and then consuming them. The intent
// interpretation is server-authoritative: clients only send action names.
func (p *Player) ProcessInput(dt float64) {
	p.VelX = 0
	for _, action := range p.PendingActions {
		switch action {
		case "left":
			p.VelX = -moveSpeed
			p.Facing = -1
		case "right":
			p.VelX = moveSpeed
			p.Facing = 1
		case "jump":
			if p.Ground {
				p.VelY = -jumpSpeed
				p.Ground = false
			}
		}
	}
	p.PendingActions = nil

	if !p.Ground {
		p.VelY += gravity * dt
	}

	p.X += p.VelX * dt
	p.Y += p.VelY * dt

	if p.X < 0 {
		p.X = 0
	}
	if p.X > MapWidth {
		p.X = MapWidth
	}
	if p.Y >= GroundY {
		p.Y = GroundY
		p.VelY = 0
		p.Ground = true
	}
	if p.Y < 0 {
		p.Y = 0
		p.VelY = 0
	}
}

// LobbyView is what lobby screens need: identity and readiness, no position.
func (p *Player) LobbyView() LobbyPlayerView {
	return LobbyPlayerView{
		PlayerId:    p.Id,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Ready:       p.Ready,
	}
}

// GameView is the per-tick snapshot sent to clients while playing.
func (p *Player) GameView() GamePlayerView {
	return GamePlayerView{
		PlayerId:      p.Id,
		Name:          p.Name,
		X:             p.X,
		Y:             p.Y,
		VelX:          p.VelX,
		VelY:          p.VelY,
		Facing:        p.Facing,
		LastInputTick: p.LastInputTick,
	}
}
