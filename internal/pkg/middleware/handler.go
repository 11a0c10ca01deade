package middleware

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/config"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/utils"
)

func RegisterGlobalMiddleware(router *gin.Engine, allowedOrigins []string) {
	router.Use(gin.Recovery(), CORS(allowedOrigins))
}

func CORS(allowedOrigins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AddAllowHeaders("Authorization")
	return cors.New(corsConfig)
}

// SignerResolver finds the wallet signer of an authenticated identity.
type SignerResolver interface {
	SignerFor(ctx context.Context, externalId string) (blockchain.Signer, error)
}

// Player builds the handler chain that authenticates a request and puts the
// acting player's signer into it. In local mode every request acts as the
// configured local signer and verifier is unused.
func Player(authMode string, verifier TokenVerifier, wallets SignerResolver, local blockchain.Signer) []gin.HandlerFunc {
	if authMode == config.AuthModeLocal {
		return []gin.HandlerFunc{UseSigner(local)}
	}
	return []gin.HandlerFunc{VerifyAuthToken(verifier), ResolveSigner(wallets)}
}

func UseSigner(signer blockchain.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.SetSignerCtx(signer, c)
	}
}

func ResolveSigner(wallets SignerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		signer, err := wallets.SignerFor(c.Request.Context(), utils.GetUserExternalId(c))
		if err != nil {
			problem := reject.FromError(err)
			c.AbortWithStatusJSON(problem.Problem.Status, problem.Problem)
			return
		}
		utils.SetSignerCtx(signer, c)
	}
}
