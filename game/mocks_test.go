package game

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/IllTzeko/wombokombo-gameserver/domain"
)

// --- BroadcastSink ---

// recordingSink captures every delivery so tests can assert on fan-out and
// payload shape.
type recordingSink struct {
	deliveries []delivery
}

type delivery struct {
	to      string
	payload []byte
}

func (rs *recordingSink) Deliver(playerId string, payload []byte) {
	rs.deliveries = append(rs.deliveries, delivery{to: playerId, payload: payload})
}

func (rs *recordingSink) reset() {
	rs.deliveries = nil
}

// decoded unmarshals every captured payload addressed to the given player.
func (rs *recordingSink) decoded(playerId string) []map[string]any {
	var msgs []map[string]any
	for _, d := range rs.deliveries {
		if d.to != playerId {
			continue
		}
		var msg map[string]any
		if err := json.Unmarshal(d.payload, &msg); err != nil {
			panic(err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// lastOfType returns the most recent message of the given type delivered to
// the player, or nil.
func (rs *recordingSink) lastOfType(playerId, msgType string) map[string]any {
	var found map[string]any
	for _, msg := range rs.decoded(playerId) {
		if msg["type"] == msgType {
			found = msg
		}
	}
	return found
}

// --- outbound ---

type fakeOutbound struct {
	payloads [][]byte
	closed   bool
}

func (fo *fakeOutbound) Enqueue(payload []byte) {
	fo.payloads = append(fo.payloads, payload)
}

func (fo *fakeOutbound) CloseSession() {
	fo.closed = true
}

func (fo *fakeOutbound) types() []string {
	var out []string
	for _, p := range fo.payloads {
		var msg map[string]any
		if err := json.Unmarshal(p, &msg); err != nil {
			panic(err)
		}
		t, _ := msg["type"].(string)
		out = append(out, t)
	}
	return out
}

// --- UserGetter ---

type MockUserGetter struct {
	mock.Mock
}

func (m *MockUserGetter) GetUserById(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// --- MatchRecorder ---

type MockMatchRecorder struct {
	mock.Mock
}

func (m *MockMatchRecorder) RecordMatch(ctx context.Context, roomId string, playerIds []string, ticks int) error {
	args := m.Called(ctx, roomId, playerIds, ticks)
	return args.Error(0)
}

// --- UniqueIdGenerator ---

type MockUniqueIdGenerator struct {
	mock.Mock
}

func (m *MockUniqueIdGenerator) Generate() string {
	args := m.Called()
	return args.String(0)
}
