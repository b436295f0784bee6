package game

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/IllTzeko/wombokombo-gameserver/logger"
)

type RoomState int

const (
	RoomWaiting RoomState = iota
	RoomPlaying
	RoomFinished
)

func (s RoomState) String() string {
	switch s {
	case RoomWaiting:
		return "waiting"
	case RoomPlaying:
		return "playing"
	case RoomFinished:
		return "finished"
	}
	return "unknown"
}

// BroadcastSink delivers a serialized payload to one player. The transport
// layer injects it after construction; until then every broadcast is a
// silent no-op.
type BroadcastSink interface {
	Deliver(playerId string, payload []byte)
}

// Room is the authoritative container for one match session. It is not
// internally synchronized: the owning service serializes every call into a
// given Room, including the periodic Update.
type Room struct {
	id         string
	maxPlayers int
	state      RoomState

	players      map[string]*Player
	disconnected map[string]*Player

	// emptySince is set while the room has zero connections but recoverable
	// mid-game state; nil means no grace window is running.
	emptySince *time.Time

	tick      int
	nextSpawn int

	sink BroadcastSink
	now  func() time.Time
}

func NewRoom(id string, maxPlayers int) *Room {
	return &Room{
		id:           id,
		maxPlayers:   maxPlayers,
		state:        RoomWaiting,
		players:      make(map[string]*Player),
		disconnected: make(map[string]*Player),
		now:          time.Now,
	}
}

func (r *Room) Id() string { return r.id }

func (r *Room) State() RoomState { return r.state }

func (r *Room) MaxPlayers() int { return r.maxPlayers }

func (r *Room) Tick() int { return r.tick }

// AddPlayer admits a candidate. Returns false for a duplicate id, a full
// room, or a finished room. A player found in the disconnected set is a
// reconnection: their saved mid-game state is restored (with the incoming
// name fields honored) and the capacity/finished checks are skipped, since
// their slot was never released.
func (r *Room) AddPlayer(p *Player) bool {
	if r.HasPlayer(p.Id) {
		return false
	}

	if saved, ok := r.disconnected[p.Id]; ok {
		saved.Name = p.Name
		saved.DisplayName = p.DisplayName
		delete(r.disconnected, p.Id)
		p = saved
		logger.Infof("player %s (%s) reconnected to room %s at (%d,%d)",
			p.Id, p.Name, r.id, int(p.X), int(p.Y))
	} else {
		if r.IsFull() {
			return false
		}
		if r.state == RoomFinished {
			return false
		}

		if r.state == RoomPlaying {
			idx := r.nextSpawn % len(spawnPositions)
			p.Spawn(spawnPositions[idx][0], spawnPositions[idx][1])
			r.nextSpawn++
		}

		logger.Infof("player %s (%s) joined room %s", p.Id, p.Name, r.id)
	}

	r.players[p.Id] = p

	// Room is no longer empty
	r.emptySince = nil

	return true
}

// RemovePlayer drops a connected player. While PLAYING the record is parked
// for reconnection instead of discarded.
func (r *Room) RemovePlayer(playerId string) {
	p, ok := r.players[playerId]
	if !ok {
		return
	}

	if r.state == RoomPlaying {
		r.disconnected[playerId] = p
		logger.Infof("player %s disconnected from room %s (saved for reconnect, grace=%ds)",
			playerId, r.id, GraceSeconds)
	} else {
		logger.Infof("player %s left room %s", playerId, r.id)
	}

	delete(r.players, playerId)

	if len(r.players) == 0 {
		if r.state == RoomPlaying && len(r.disconnected) > 0 {
			// Start grace period, keep room alive for reconnection
			now := r.now()
			r.emptySince = &now
			logger.Infof("room %s has no connected players, grace period started", r.id)
		} else if r.state == RoomWaiting {
			r.state = RoomFinished
			logger.Infof("room %s is now empty, marked finished", r.id)
		}
	}
}

func (r *Room) HasPlayer(playerId string) bool {
	_, ok := r.players[playerId]
	return ok
}

func (r *Room) GetPlayer(playerId string) (*Player, bool) {
	p, ok := r.players[playerId]
	return p, ok
}

func (r *Room) IsFull() bool {
	return len(r.players) >= r.maxPlayers
}

func (r *Room) IsEmpty() bool {
	return len(r.players) == 0
}

func (r *Room) PlayerCount() int {
	return len(r.players)
}

// ShouldCleanup reports whether the owner may discard this room. A running
// grace window that has expired is finalized here, so whichever of
// ShouldCleanup or Update observes the expiry first performs the transition.
func (r *Room) ShouldCleanup() bool {
	if r.state == RoomFinished && len(r.players) == 0 {
		return true
	}

	if r.graceExpired() {
		r.finishAfterGrace()
		return true
	}

	return false
}

func (r *Room) graceExpired() bool {
	if r.emptySince == nil {
		return false
	}
	elapsed := int(r.now().Sub(*r.emptySince).Seconds())
	return elapsed >= GraceSeconds
}

func (r *Room) finishAfterGrace() {
	if r.state == RoomFinished {
		return
	}
	logger.Infof("room %s grace period expired, marking finished", r.id)
	r.state = RoomFinished
	r.disconnected = make(map[string]*Player)
}

func (r *Room) SetPlayerReady(playerId string, ready bool) {
	p, ok := r.players[playerId]
	if !ok {
		return
	}

	p.Ready = ready

	r.Broadcast(ReadyStateMessage{
		Type:     "player_ready_state",
		PlayerId: playerId,
		Ready:    ready,
	})

	logger.Debugf("player %s ready=%t in room %s", playerId, ready, r.id)

	// Auto-start when all players are ready (min 2)
	if r.AllReady() && r.state == RoomWaiting {
		logger.Infof("all players ready in room %s, starting game", r.id)
		r.StartGame()
	}
}

func (r *Room) AllReady() bool {
	if len(r.players) < MinPlayersToStart {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Room) HandleChat(senderId, message string) {
	p, ok := r.players[senderId]
	if !ok {
		return
	}

	r.Broadcast(ChatMessage{
		Type:       "chat_message",
		PlayerId:   senderId,
		PlayerName: p.Name,
		Message:    message,
	})
}

func (r *Room) StartGame() {
	if r.state != RoomWaiting {
		return
	}

	r.state = RoomPlaying
	r.tick = 0
	r.nextSpawn = 0

	// Spawn all players at different positions
	spawnPoints := make([]SpawnPoint, 0, len(r.players))
	for _, p := range r.sortedPlayers() {
		idx := r.nextSpawn % len(spawnPositions)
		p.Spawn(spawnPositions[idx][0], spawnPositions[idx][1])
		r.nextSpawn++

		spawnPoints = append(spawnPoints, SpawnPoint{
			PlayerId: p.Id,
			X:        p.X,
			Y:        p.Y,
		})
	}

	r.Broadcast(GameStartMessage{
		Type:  "game_start",
		Round: 1,
		MapData: MapData{
			Width:   MapWidth,
			Height:  MapHeight,
			GroundY: GroundY,
		},
		SpawnPoints: spawnPoints,
	})

	logger.Infof("game started in room %s with %d players", r.id, r.PlayerCount())
}

// Update advances the match by dt seconds. It is a no-op unless PLAYING; an
// expired grace window finishes the room instead of producing a tick, and a
// connection-empty room idles without ticking.
func (r *Room) Update(dt float64) {
	if r.state != RoomPlaying {
		return
	}

	if r.graceExpired() {
		r.finishAfterGrace()
		return
	}

	if len(r.players) == 0 {
		return
	}

	r.tick++

	for _, p := range r.players {
		p.ProcessInput(dt)
	}

	r.Broadcast(r.GameState())
}

// QueueInput overwrites the player's pending actions; last write wins until
// the next tick consumes them.
func (r *Room) QueueInput(playerId string, tick int, actions []string) {
	p, ok := r.players[playerId]
	if !ok {
		return
	}

	p.PendingActions = actions
	p.LastInputTick = tick
}

func (r *Room) SetBroadcastSink(sink BroadcastSink) {
	r.sink = sink
}

func (r *Room) Broadcast(msg ServerMessage) {
	if r.sink == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Criticalf("room %s failed to marshal %T: %v", r.id, msg, err)
		return
	}
	for pid := range r.players {
		r.sink.Deliver(pid, payload)
	}
}

func (r *Room) BroadcastExcept(excludeId string, msg ServerMessage) {
	if r.sink == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Criticalf("room %s failed to marshal %T: %v", r.id, msg, err)
		return
	}
	for pid := range r.players {
		if pid != excludeId {
			r.sink.Deliver(pid, payload)
		}
	}
}

// SendTo delivers to one id without checking connection bookkeeping; the
// caller is responsible for targeting a valid connected player.
func (r *Room) SendTo(playerId string, msg ServerMessage) {
	if r.sink == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Criticalf("room %s failed to marshal %T: %v", r.id, msg, err)
		return
	}
	r.sink.Deliver(playerId, payload)
}

func (r *Room) LobbyState() LobbyStateMessage {
	players := make([]LobbyPlayerView, 0, len(r.players))
	for _, p := range r.sortedPlayers() {
		players = append(players, p.LobbyView())
	}
	return LobbyStateMessage{
		Type:       "lobby_state",
		RoomId:     r.id,
		State:      r.state.String(),
		MaxPlayers: r.maxPlayers,
		Players:    players,
	}
}

func (r *Room) GameState() GameStateMessage {
	players := make([]GamePlayerView, 0, len(r.players))
	for _, p := range r.sortedPlayers() {
		players = append(players, p.GameView())
	}

	return GameStateMessage{
		Type:     "game_state",
		Tick:     r.tick,
		TimeLeft: 60.0, // round timer not implemented yet
		Round:    1,    // round tracking not implemented yet
		Players:  players,
		Enemies:  []struct{}{},
		Items:    []struct{}{},
	}
}

// sortedPlayers gives a stable iteration order for spawn assignment and
// snapshot arrays.
func (r *Room) sortedPlayers() []*Player {
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	players := make([]*Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, r.players[id])
	}
	return players
}
