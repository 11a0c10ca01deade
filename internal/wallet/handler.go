package wallet

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/utils"
)

func init() {
	reject.Map(ErrWalletNotFound, http.StatusNotFound, "error.wallet.not-found", "No wallet registered for this player")
	reject.Map(ErrWalletPending, http.StatusConflict, "error.wallet.pending", "Wallet account is still being created")
	reject.Map(ErrAlreadyRegistered, http.StatusConflict, "error.wallet.exists", "Player already has a wallet")
}

type walletHandler struct {
	wallets *Service
}

// RegisterRoutes mounts wallet registration. identity must put a verified
// access token into the request.
func RegisterRoutes(rg *gin.RouterGroup, wallets *Service, identity []gin.HandlerFunc) {
	handler := walletHandler{wallets: wallets}

	routes := rg.Group("/wallet", identity...)
	routes.POST("", handler.register)
	routes.GET("", handler.getWallet)
}

type RegistrationRequest struct {
	Nickname string `json:"nickname"`
}

func (h walletHandler) register(c *gin.Context) {
	body := RegistrationRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	nickname := strings.TrimSpace(body.Nickname)
	if nickname == "" || len(nickname) > 32 {
		c.JSON(http.StatusBadRequest, reject.InvalidFieldProblem("nickname"))
		return
	}

	profile, err := h.wallets.Register(c.Request.Context(), utils.GetUserExternalId(c), utils.GetUserEmail(c), nickname)
	if err != nil {
		problem := reject.FromError(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h walletHandler) getWallet(c *gin.Context) {
	profile, err := h.wallets.Profile(c.Request.Context(), utils.GetUserExternalId(c))
	if err != nil {
		problem := reject.FromError(err)
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}

	c.JSON(http.StatusOK, profile)
}
