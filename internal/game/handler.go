package game

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/utils"
)

func init() {
	reject.Map(ErrActionInFlight, http.StatusConflict, "error.action.in-flight", "Another action for this player is in flight")
	reject.Map(ErrHoleCardsUnavailable, http.StatusConflict, "error.hand.unavailable", "Hole cards are not known yet")
	reject.Map(ErrUnknownAction, http.StatusBadRequest, "error.action.unknown", "Unknown action")
	reject.Map(ErrUnexpectedValue, http.StatusBadGateway, "error.contract.unexpected-value", "Contract returned an unexpected value")
}

type gameHandler struct {
	games *Service
}

// RegisterRoutes mounts the lobby, table and game endpoints. player resolves
// the acting player's signer for every request.
func RegisterRoutes(rg *gin.RouterGroup, games *Service, player []gin.HandlerFunc) {
	handler := gameHandler{games: games}

	rg.GET("/config", handler.getConfig)

	tables := rg.Group("/tables", player...)
	tables.GET("", handler.getTables)
	tables.POST("/:id/sit", handler.sitAtTable)
	tables.DELETE("/:id/waiting", handler.cancelWaiting)

	routes := rg.Group("/games", player...)
	routes.GET("/open", handler.getOpenGames)
	routes.GET("/current", handler.getCurrentGame)
	routes.POST("", handler.createGame)
	routes.GET("/:id", handler.getGame)
	routes.DELETE("/:id", handler.abandonGame)
	routes.GET("/:id/history", handler.getHistory)
	routes.POST("/:id/join", handler.joinGame)
	routes.POST("/:id/commit", handler.commitSeed)
	routes.POST("/:id/reveal", handler.revealSeed)
	routes.POST("/:id/blinds", handler.postBlinds)
	routes.POST("/:id/act", handler.act)
	routes.POST("/:id/reveal-hand", handler.revealHand)
	routes.POST("/:id/timeout", handler.claimTimeout)
	routes.POST("/:id/advance-timeout", handler.advanceTimeout)
	routes.POST("/:id/chat", handler.sendChat)
}

func respondError(c *gin.Context, err error) {
	problem := reject.FromError(err)
	c.JSON(problem.Problem.Status, problem.Problem)
}

func idParam(c *gin.Context) (uint64, bool) {
	id, parseErr := strconv.ParseUint(c.Param("id"), 0, 64)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.InvalidPathParamProblem("id"))
		return 0, false
	}
	return id, true
}

func (gh *gameHandler) getConfig(c *gin.Context) {
	config, err := gh.games.GetConfig(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (gh *gameHandler) getTables(c *gin.Context) {
	tables, err := gh.games.ListTables(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

type BuyInRequest struct {
	BuyIn int64 `json:"buyIn"`
}

func (gh *gameHandler) sitAtTable(c *gin.Context) {
	tableId, ok := idParam(c)
	if !ok {
		return
	}
	body := BuyInRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	if body.BuyIn <= 0 {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("buyIn"))
		return
	}

	sit, err := gh.games.SitAtTable(c.Request.Context(), utils.GetSigner(c), tableId, body.BuyIn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sit)
}

func (gh *gameHandler) cancelWaiting(c *gin.Context) {
	tableId, ok := idParam(c)
	if !ok {
		return
	}
	if err := gh.games.CancelWaiting(c.Request.Context(), utils.GetSigner(c), tableId); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (gh *gameHandler) getOpenGames(c *gin.Context) {
	games, err := gh.games.GetOpenGames(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.PublicGames(games))
}

func (gh *gameHandler) getCurrentGame(c *gin.Context) {
	game, err := gh.games.CurrentGame(c.Request.Context(), utils.GetPlayerAddress(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if game == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, game.Public())
}

type CreateGameRequest struct {
	TableId uint64 `json:"tableId"`
	BuyIn   int64  `json:"buyIn"`
}

type CreateGameResponse struct {
	GameId uint64 `json:"gameId"`
}

func (gh *gameHandler) createGame(c *gin.Context) {
	body := CreateGameRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	if body.BuyIn <= 0 {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("buyIn"))
		return
	}

	gameId, err := gh.games.CreateGame(c.Request.Context(), utils.GetSigner(c), body.TableId, body.BuyIn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateGameResponse{GameId: gameId})
}

func (gh *gameHandler) getGame(c *gin.Context) {
	gameId, ok := idParam(c)
	if !ok {
		return
	}
	view, err := gh.games.View(c.Request.Context(), gameId, utils.GetPlayerAddress(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (gh *gameHandler) abandonGame(c *gin.Context) {
	gameId, ok := idParam(c)
	if !ok {
		return
	}
	if err := gh.games.Abandon(c.Request.Context(), utils.GetPlayerAddress(c), gameId); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (gh *gameHandler) getHistory(c *gin.Context) {
	gameId, ok := idParam(c)
	if !ok {
		return
	}
	page, problem := utils.NewPageRequest(c)
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	events, err := gh.games.History().Game(c.Request.Context(), gameId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Paginate[model.HistoryEvent](events, page))
}

// simple runs a mutating call that takes only the game id.
func (gh *gameHandler) simple(c *gin.Context, call func(*gin.Context, uint64) error) {
	gameId, ok := idParam(c)
	if !ok {
		return
	}
	if err := call(c, gameId); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (gh *gameHandler) joinGame(c *gin.Context) {
	gh.simple(c, func(c *gin.Context, gameId uint64) error {
		return gh.games.JoinGame(c.Request.Context(), utils.GetSigner(c), gameId)
	})
}

func (gh *gameHandler) commitSeed(c *gin.Context) {
	gh.simple(c, func(c *gin.Context, gameId uint64) error {
		return gh.games.CommitSeed(c.Request.Context(), utils.GetSigner(c), gameId)
	})
}

func (gh *gameHandler) revealSeed(c *gin.Context) {
	gh.simple(c, func(c *gin.Context, gameId uint64) error {
		return gh.games.RevealSeed(c.Request.Context(), utils.GetSigner(c), gameId)
	})
}

func (gh *gameHandler) postBlinds(c *gin.Context) {
	gh.simple(c, func(c *gin.Context, gameId uint64) error {
		return gh.games.PostBlinds(c.Request.Context(), utils.GetSigner(c), gameId)
	})
}

func (gh *gameHandler) revealHand(c *gin.Context) {
	gh.simple(c, func(c *gin.Context, gameId uint64) error {
		return gh.games.RevealHand(c.Request.Context(), utils.GetSigner(c), gameId)
	})
}

func (gh *gameHandler) claimTimeout(c *gin.Context) {
	gh.simple(c, func(c *gin.Context, gameId uint64) error {
		return gh.games.ClaimTimeout(c.Request.Context(), utils.GetSigner(c), gameId)
	})
}

func (gh *gameHandler) advanceTimeout(c *gin.Context) {
	gh.simple(c, func(c *gin.Context, gameId uint64) error {
		return gh.games.AdvanceTimeout(c.Request.Context(), utils.GetSigner(c), gameId)
	})
}

type ActRequest struct {
	Action      string `json:"action"`
	RaiseAmount int64  `json:"raiseAmount"`
}

func (gh *gameHandler) act(c *gin.Context) {
	gameId, ok := idParam(c)
	if !ok {
		return
	}
	body := ActRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	action, parseErr := model.ParseAction(body.Action)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("action"))
		return
	}
	if body.RaiseAmount < 0 {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("raiseAmount"))
		return
	}

	if err := gh.games.Act(c.Request.Context(), utils.GetSigner(c), gameId, action, body.RaiseAmount); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type ChatRequest struct {
	Message string `json:"message"`
}

func (gh *gameHandler) sendChat(c *gin.Context) {
	gameId, ok := idParam(c)
	if !ok {
		return
	}
	body := ChatRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	if body.Message == "" {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("message"))
		return
	}

	if err := gh.games.SendChat(c.Request.Context(), utils.GetSigner(c), gameId, body.Message); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
