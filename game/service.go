package game

import (
	"context"
	"errors"
	"sync"

	"github.com/IllTzeko/wombokombo-gameserver/domain"
	"github.com/IllTzeko/wombokombo-gameserver/logger"
	"github.com/IllTzeko/wombokombo-gameserver/metrics"
)

var (
	ErrRoomNotFound    = errors.New("room-not-found")
	ErrRoomJoinRefused = errors.New("room-join-refused")
)

type UserGetter interface {
	GetUserById(ctx context.Context, id string) (domain.User, error)
}

// MatchRecorder persists a summary row when a played-out room is reaped.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, roomId string, playerIds []string, ticks int) error
}

// outbound is the send half of a player connection. The concrete session
// enqueues onto its write pump; tests substitute a capture double.
type outbound interface {
	Enqueue(payload []byte)
	CloseSession()
}

// roomSlot pairs a Room with the mutex that serializes every call into it.
// The Room itself is not internally concurrent.
type roomSlot struct {
	mu     sync.Mutex
	room   *Room
	roster map[string]bool // every id that ever joined, for match records
}

type connEntry struct {
	out    outbound
	roomId string
}

type Service struct {
	locker sync.RWMutex
	rooms  map[string]*roomSlot
	conns  map[string]*connEntry

	idGen      UniqueIdGenerator
	userGetter UserGetter
	recorder   MatchRecorder
}

func NewService(idGen UniqueIdGenerator, userGetter UserGetter, recorder MatchRecorder) *Service {
	return &Service{
		rooms:      make(map[string]*roomSlot),
		conns:      make(map[string]*connEntry),
		idGen:      idGen,
		userGetter: userGetter,
		recorder:   recorder,
	}
}

// Deliver implements BroadcastSink: it routes a serialized room payload to
// the live connection of one player. Unknown ids are stale broadcasts and
// are dropped.
func (s *Service) Deliver(playerId string, payload []byte) {
	s.locker.RLock()
	entry := s.conns[playerId]
	s.locker.RUnlock()

	if entry != nil {
		entry.out.Enqueue(payload)
	}
}

// CreateRoom registers a fresh waiting room and returns its id. Capacity is
// clamped to the number of spawn positions.
func (s *Service) CreateRoom(maxPlayers int) string {
	if maxPlayers < MinPlayersToStart {
		maxPlayers = MinPlayersToStart
	}
	if maxPlayers > len(spawnPositions) {
		maxPlayers = len(spawnPositions)
	}

	id := s.idGen.Generate()
	room := NewRoom(id, maxPlayers)
	room.SetBroadcastSink(s)

	s.locker.Lock()
	s.rooms[id] = &roomSlot{room: room, roster: make(map[string]bool)}
	s.locker.Unlock()

	metrics.ActiveRooms.Inc()
	logger.Infof("room %s created (max_players=%d)", id, maxPlayers)
	return id
}

// JoinRoom resolves the player's account, admits them into the room and
// registers their connection for broadcast routing.
func (s *Service) JoinRoom(ctx context.Context, roomId, playerId string, out outbound) error {
	slot := s.slot(roomId)
	if slot == nil {
		return ErrRoomNotFound
	}

	user, err := s.userGetter.GetUserById(ctx, playerId)
	if err != nil {
		return err
	}

	player := NewPlayer(playerId, user.Username, user.Username)

	slot.mu.Lock()
	ok := slot.room.AddPlayer(player)
	if ok {
		slot.roster[playerId] = true
	}
	slot.mu.Unlock()

	if !ok {
		return ErrRoomJoinRefused
	}

	s.locker.Lock()
	prev := s.conns[playerId]
	if prev != nil {
		// Same account connecting twice: the old socket is a zombie.
		prev.out.CloseSession()
	} else {
		metrics.ConnectedPlayers.Inc()
	}
	s.conns[playerId] = &connEntry{out: out, roomId: roomId}
	s.locker.Unlock()

	if prev != nil && prev.roomId != roomId {
		// The zombie's own teardown will be ignored as stale, so the old
		// room must release the player here.
		s.leaveRoom(prev.roomId, playerId)
	}

	slot.mu.Lock()
	slot.room.Broadcast(slot.room.LobbyState())
	slot.mu.Unlock()

	return nil
}

// Disconnect tears down a player's connection and removes them from their
// room. The out argument identifies the calling session, so a replaced
// zombie socket cannot evict its successor. Safe against stale or repeated
// calls.
func (s *Service) Disconnect(playerId string, out outbound) {
	s.locker.Lock()
	entry := s.conns[playerId]
	if entry == nil || entry.out != out {
		s.locker.Unlock()
		return
	}
	delete(s.conns, playerId)
	s.locker.Unlock()
	metrics.ConnectedPlayers.Dec()

	s.leaveRoom(entry.roomId, playerId)
}

// leaveRoom removes the player from the room and refreshes the lobby view for
// whoever is still waiting in it.
func (s *Service) leaveRoom(roomId, playerId string) {
	slot := s.slot(roomId)
	if slot == nil {
		return
	}

	slot.mu.Lock()
	slot.room.RemovePlayer(playerId)
	if slot.room.State() == RoomWaiting {
		slot.room.Broadcast(slot.room.LobbyState())
	}
	slot.mu.Unlock()
}

func (s *Service) HandleReady(playerId string, ready bool) {
	s.withPlayerRoom(playerId, func(r *Room) {
		r.SetPlayerReady(playerId, ready)
	})
}

func (s *Service) HandleChat(playerId, message string) {
	s.withPlayerRoom(playerId, func(r *Room) {
		r.HandleChat(playerId, message)
	})
}

func (s *Service) HandleInput(playerId string, tick int, actions []string) {
	s.withPlayerRoom(playerId, func(r *Room) {
		r.QueueInput(playerId, tick, actions)
	})
}

func (s *Service) HandleStart(playerId string) {
	s.withPlayerRoom(playerId, func(r *Room) {
		r.StartGame()
	})
}

// UpdateAll runs one simulation step on every room. Driven by the fixed-rate
// game loop in tickers.go.
func (s *Service) UpdateAll(dt float64) {
	for _, slot := range s.slots() {
		slot.mu.Lock()
		slot.room.Update(dt)
		slot.mu.Unlock()
	}
}

// CleanupSweep reaps rooms that report ShouldCleanup, recording a match
// summary for the ones that actually played.
func (s *Service) CleanupSweep(ctx context.Context) {
	for _, slot := range s.slots() {
		slot.mu.Lock()
		cleanup := slot.room.ShouldCleanup()
		roomId := slot.room.Id()
		ticks := slot.room.Tick()
		slot.mu.Unlock()

		if !cleanup {
			continue
		}

		s.locker.Lock()
		_, present := s.rooms[roomId]
		delete(s.rooms, roomId)
		s.locker.Unlock()

		if !present {
			continue
		}

		metrics.ActiveRooms.Dec()
		logger.Infof("room %s cleaned up", roomId)

		if ticks > 0 && s.recorder != nil {
			playerIds := make([]string, 0, len(slot.roster))
			for id := range slot.roster {
				playerIds = append(playerIds, id)
			}
			if err := s.recorder.RecordMatch(ctx, roomId, playerIds, ticks); err != nil {
				logger.Criticalf("failed to record match for room %s: %v", roomId, err)
			}
			metrics.MatchesFinished.Inc()
		}
	}
}

// DiscardIfEmpty drops a room that never got a player, covering the case
// where the creator's own join failed. A room with players is left alone.
func (s *Service) DiscardIfEmpty(roomId string) {
	slot := s.slot(roomId)
	if slot == nil {
		return
	}

	slot.mu.Lock()
	empty := slot.room.IsEmpty()
	slot.mu.Unlock()
	if !empty {
		return
	}

	s.locker.Lock()
	_, present := s.rooms[roomId]
	delete(s.rooms, roomId)
	s.locker.Unlock()

	if present {
		metrics.ActiveRooms.Dec()
		logger.Infof("room %s discarded before anyone joined", roomId)
	}
}

// RoomDescription is the lobby-browser view of one room.
type RoomDescription struct {
	RoomId      string `json:"room_id"`
	State       string `json:"state"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

func (s *Service) ListRooms() []RoomDescription {
	slots := s.slots()
	descs := make([]RoomDescription, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		descs = append(descs, RoomDescription{
			RoomId:      slot.room.Id(),
			State:       slot.room.State().String(),
			PlayerCount: slot.room.PlayerCount(),
			MaxPlayers:  slot.room.MaxPlayers(),
		})
		slot.mu.Unlock()
	}
	return descs
}

func (s *Service) slot(roomId string) *roomSlot {
	s.locker.RLock()
	defer s.locker.RUnlock()
	return s.rooms[roomId]
}

func (s *Service) slots() []*roomSlot {
	s.locker.RLock()
	defer s.locker.RUnlock()
	slots := make([]*roomSlot, 0, len(s.rooms))
	for _, slot := range s.rooms {
		slots = append(slots, slot)
	}
	return slots
}

func (s *Service) withPlayerRoom(playerId string, fn func(r *Room)) {
	s.locker.RLock()
	entry := s.conns[playerId]
	s.locker.RUnlock()

	if entry == nil {
		return
	}

	slot := s.slot(entry.roomId)
	if slot == nil {
		return
	}

	slot.mu.Lock()
	fn(slot.room)
	slot.mu.Unlock()
}
