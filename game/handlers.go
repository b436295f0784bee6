package game

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/IllTzeko/wombokombo-gameserver/domain"
	"github.com/IllTzeko/wombokombo-gameserver/logger"
)

type GameHandler struct {
	gameService *Service
	upgrader    websocket.Upgrader
}

func NewGameHandler(gameService *Service) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the allow-list middleware upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// CreateRoomHandler makes a room and joins the creator over the upgraded
// connection in one round trip.
func (h *GameHandler) CreateRoomHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		logger.Criticalf("missing player id in authed context, ip=%s", ctx.ClientIP())
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}

	maxPlayers, err := strconv.Atoi(ctx.DefaultQuery("max_players", "4"))
	if err != nil {
		ctx.String(http.StatusBadRequest, "bad-max-players")
		return
	}

	roomId := h.gameService.CreateRoom(maxPlayers)
	if !h.joinAndServe(ctx, roomId, id) {
		// The creator never made it in, so the room would linger forever.
		h.gameService.DiscardIfEmpty(roomId)
	}
}

// JoinRoomHandler upgrades the connection and admits the player into an
// existing room.
func (h *GameHandler) JoinRoomHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		logger.Criticalf("missing player id in authed context, ip=%s", ctx.ClientIP())
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}

	h.joinAndServe(ctx, ctx.Param("roomid"), id)
}

// ListRoomsHandler returns the lobby browser view.
func (h *GameHandler) ListRoomsHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.gameService.ListRooms())
}

// joinAndServe reports whether the player actually entered the room.
func (h *GameHandler) joinAndServe(ctx *gin.Context, roomId, playerId string) bool {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warningf("ws upgrade failed for player %s: %v", playerId, err)
		return false
	}

	wsConn := newWebsocketConnection(conn)
	sess := newSession(playerId, wsConn, h.gameService)

	if err := h.gameService.JoinRoom(ctx.Request.Context(), roomId, playerId, sess); err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound):
			wsConn.Close("room-not-found")
		case errors.Is(err, ErrRoomJoinRefused):
			wsConn.Close("join-refused")
		case errors.Is(err, domain.ErrUserNotFound):
			wsConn.Close("unknown-user")
		default:
			wsConn.Close("unknown-error")
		}
		return false
	}

	go sess.WritePump()
	sess.ReadPump()
	return true
}
