package ws

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/cosign"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/game"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/utils"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/ws"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/wallet"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
)

// GameTracker starts snapshot polling for a player watching a game.
type GameTracker interface {
	Track(gameId uint64, player flow.Address)
}

type wsHandler struct {
	notificationHub *ws.WebSocketNotificationHub
	tracker         GameTracker
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS middleware on the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes mounts the push channels. player resolves the acting
// player's signer, identity only verifies the access token. The registration
// channel is left out when identity is nil.
func RegisterRoutes(rg *gin.RouterGroup, hub *ws.WebSocketNotificationHub, tracker GameTracker, player, identity []gin.HandlerFunc) {
	handler := wsHandler{
		notificationHub: hub,
		tracker:         tracker,
	}

	routes := rg.Group("/ws")
	routes.GET("/lobby", handler.serveLobby)

	players := routes.Group("", player...)
	players.GET("/game/:id", handler.serveGame)
	players.GET("/offers", handler.serveOffers)

	if identity != nil {
		routes.Group("", identity...).GET("/registration", handler.serveRegistration)
	}
}

func (wsh *wsHandler) serveLobby(c *gin.Context) {
	wsh.serveWs(c, game.LobbyTopic)
}

func (wsh *wsHandler) serveGame(c *gin.Context) {
	gameId, err := strconv.ParseUint(c.Param("id"), 0, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, reject.InvalidPathParamProblem("id"))
		return
	}
	player := utils.GetPlayerAddress(c)
	wsh.tracker.Track(gameId, player)
	wsh.serveWs(c, game.GameTopic(gameId, player))
}

func (wsh *wsHandler) serveOffers(c *gin.Context) {
	wsh.serveWs(c, cosign.OfferTopic(utils.GetPlayerAddress(c)))
}

func (wsh *wsHandler) serveRegistration(c *gin.Context) {
	wsh.serveWs(c, wallet.RegistrationTopic(utils.GetUserExternalId(c)))
}

func (wsh *wsHandler) serveWs(c *gin.Context, topic string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Error upgrading ws connection")
		return
	}
	defer conn.Close()
	defer wsh.notificationHub.UnregisterListener(topic, conn)

	wsh.notificationHub.RegisterListener(topic, conn)

	for {
		var buffer any
		err := conn.ReadJSON(&buffer)
		if err != nil {
			log.Debug().Err(err).Str("topic", topic).Msg("ws listener gone")
			return
		}
	}
}
