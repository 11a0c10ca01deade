package cosign

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/utils"
	"github.com/onflow/flow-go-sdk"
)

func init() {
	reject.Map(ErrOfferNotFound, http.StatusNotFound, "error.offer.not-found", "Start game offer not found")
	reject.Map(ErrArtifactExpired, http.StatusGone, "error.auth-entry.expired", "Start game authorization has expired")
	reject.Map(ErrSamePlayer, http.StatusBadRequest, "error.offer.same-player", "Cannot start a game against yourself")
}

type cosignHandler struct {
	cosign *Service
}

func RegisterRoutes(rg *gin.RouterGroup, cosign *Service, player []gin.HandlerFunc) {
	handler := &cosignHandler{cosign: cosign}

	routes := rg.Group("/cosign", player...)
	routes.POST("/start-game/prepare", handler.prepare)
	routes.POST("/start-game/parse", handler.parse)
	routes.POST("/start-game/accept", handler.accept)
	routes.GET("/offers", handler.getOffers)
}

type PrepareRequest struct {
	TableId uint64 `json:"tableId"`
	BuyIn   int64  `json:"buyIn"`
	Player2 string `json:"player2"`
}

func (ch *cosignHandler) prepare(c *gin.Context) {
	body := PrepareRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	player2 := strings.TrimPrefix(strings.TrimSpace(body.Player2), "0x")
	if body.BuyIn <= 0 {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("buyIn"))
		return
	}
	if player2 == "" {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("player2"))
		return
	}

	offer, err := ch.cosign.Offer(c.Request.Context(), utils.GetSigner(c), OfferRequest{
		TableId: body.TableId,
		BuyIn:   body.BuyIn,
		Player2: flow.HexToAddress(player2),
	})
	if err != nil {
		problem := reject.FromError(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

type ArtifactRequest struct {
	OfferId  string `json:"offerId"`
	Artifact string `json:"artifact"`
}

func (ch *cosignHandler) parse(c *gin.Context) {
	body := ArtifactRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	if body.Artifact == "" {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("artifact"))
		return
	}

	parsed, _, err := ch.cosign.Orchestrator().Parse(body.Artifact)
	if err != nil {
		problem := reject.FromError(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusOK, parsed)
}

type AcceptResponse struct {
	GameId uint64 `json:"gameId"`
}

func (ch *cosignHandler) accept(c *gin.Context) {
	body := ArtifactRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}
	if (body.OfferId == "") == (body.Artifact == "") {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("offerId"))
		return
	}

	gameId, err := ch.cosign.Accept(c.Request.Context(), utils.GetSigner(c), AcceptRequest{
		OfferId:  body.OfferId,
		Artifact: body.Artifact,
	})
	if err != nil {
		problem := reject.FromError(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusCreated, AcceptResponse{GameId: gameId})
}

func (ch *cosignHandler) getOffers(c *gin.Context) {
	page, problem := utils.NewPageRequest(c)
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	offers, err := ch.cosign.PendingOffers(c.Request.Context(), utils.GetPlayerAddress(c))
	if err != nil {
		problem := reject.FromError(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusOK, utils.Paginate[model.StartGameOffer](offers, page))
}
