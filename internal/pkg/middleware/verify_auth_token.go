package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
)

const (
	accessTokenRequired string = "error.token.required"
	accessTokenInvalid  string = "error.token.invalid"
)

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// VerifyAuthToken reads the bearer token, or the access_token query
// parameter on websocket upgrades, and stores the verified identity.
func VerifyAuthToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
		if raw == "" {
			raw = c.Query("access_token")
		}
		if raw == "" {
			log.Debug().Str("path", c.FullPath()).Msg("Request without access token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, reject.NewProblem().
				WithTitle("Missing access token").
				WithStatus(http.StatusUnauthorized).
				WithCode(accessTokenRequired).
				Build())
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			log.Warn().Err(err).Msg("Rejected access token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, reject.NewProblem().
				WithTitle("Cannot verify access token").
				WithStatus(http.StatusUnauthorized).
				WithCode(accessTokenInvalid).
				WithDetail(err.Error()).
				Build())
			return
		}
		utils.SetIdentityCtx(utils.IdentityFromToken(token, raw), c)
	}
}
