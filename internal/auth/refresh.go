package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
)

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    string `json:"expiresIn"`
}

type secureTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
	GrantType    string `json:"grant_type"`
}

type secureTokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    string `json:"expires_in"`
}

func (ah *authHandler) refresh(c *gin.Context) {
	body := RefreshRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	refreshToken := strings.TrimSpace(body.RefreshToken)
	if refreshToken == "" {
		c.JSON(http.StatusBadRequest, reject.NewProblem().
			WithTitle("Empty refresh token").
			WithStatus(http.StatusBadRequest).
			WithCode(errorTokenEmpty).
			Build())
		return
	}

	var tokens secureTokenResponse
	err := ah.callPlatform(c.Request.Context(), ah.refreshEndpoint, secureTokenRequest{
		RefreshToken: refreshToken,
		GrantType:    "refresh_token",
	}, &tokens)
	if err != nil {
		respondPlatformError(c, "Failed to refresh the token pair", err)
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	})
}
