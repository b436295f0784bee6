package game

// ServerMessage is the closed set of payloads a Room may broadcast. Each
// variant carries the "type" tag its constructor fills in, so the wire shape
// is fixed at compile time.
type ServerMessage interface {
	isServerMessage()
}

type ReadyStateMessage struct {
	Type     string `json:"type"`
	PlayerId string `json:"player_id"`
	Ready    bool   `json:"ready"`
}

type ChatMessage struct {
	Type       string `json:"type"`
	PlayerId   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Message    string `json:"message"`
}

type MapData struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	GroundY float64 `json:"ground_y"`
}

type SpawnPoint struct {
	PlayerId string  `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type GameStartMessage struct {
	Type        string       `json:"type"`
	Round       int          `json:"round"`
	MapData     MapData      `json:"map_data"`
	SpawnPoints []SpawnPoint `json:"spawn_points"`
}

type GamePlayerView struct {
	PlayerId      string  `json:"player_id"`
	Name          string  `json:"name"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	VelX          float64 `json:"vx"`
	VelY          float64 `json:"vy"`
	Facing        int     `json:"facing"`
	LastInputTick int     `json:"last_input_tick"`
}

type GameStateMessage struct {
	Type     string           `json:"type"`
	Tick     int              `json:"tick"`
	TimeLeft float64          `json:"time_left"`
	Round    int              `json:"round"`
	Players  []GamePlayerView `json:"players"`
	// Reserved for future content; always present, currently empty.
	Enemies []struct{} `json:"enemies"`
	Items   []struct{} `json:"items"`
}

type LobbyPlayerView struct {
	PlayerId    string `json:"player_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
}

type LobbyStateMessage struct {
	Type       string            `json:"type"`
	RoomId     string            `json:"room_id"`
	State      string            `json:"state"`
	MaxPlayers int               `json:"max_players"`
	Players    []LobbyPlayerView `json:"players"`
}

func (ReadyStateMessage) isServerMessage() {}
func (ChatMessage) isServerMessage()       {}
func (GameStartMessage) isServerMessage()  {}
func (GameStateMessage) isServerMessage()  {}
func (LobbyStateMessage) isServerMessage() {}
