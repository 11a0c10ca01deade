package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/wallet"
	"github.com/rs/zerolog/log"
)

const (
	errorTokenEmpty    string = "error.identity-platform.token.empty"
	errorTokenExchange string = "error.identity-platform.token.exchange"
)

type SignInRequest struct {
	IDToken     string `json:"idToken"`
	AccessToken string `json:"accessToken"`
}

type IdentityPlatformTokenRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnIDPCredential bool   `json:"returnIdpCredential"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
}

// IdentityPlatformTokenResponse is the platform's token pair plus the
// caller's wallet, nil until one is registered.
type IdentityPlatformTokenResponse struct {
	Email        string          `json:"email"`
	LocalID      string          `json:"localId"`
	IDToken      string          `json:"idToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresIn    string          `json:"expiresIn"`
	Wallet       *wallet.Profile `json:"wallet"`
}

func (ah *authHandler) signInWith(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := SignInRequest{}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
			return
		}

		idToken := strings.TrimSpace(body.IDToken)
		accessToken := strings.TrimSpace(body.AccessToken)
		if idToken == "" && accessToken == "" {
			c.JSON(http.StatusBadRequest, reject.NewProblem().
				WithTitle("Either idToken or accessToken must be passed").
				WithStatus(http.StatusBadRequest).
				WithCode(errorTokenEmpty).
				Build())
			return
		}

		credential := url.Values{"providerId": {provider}}
		if idToken != "" {
			credential.Set("id_token", idToken)
		} else {
			credential.Set("access_token", accessToken)
		}

		var tokens IdentityPlatformTokenResponse
		err := ah.callPlatform(c.Request.Context(), ah.tokenEndpoint, IdentityPlatformTokenRequest{
			PostBody:            credential.Encode(),
			RequestURI:          "http://localhost",
			ReturnIDPCredential: true,
			ReturnSecureToken:   true,
		}, &tokens)
		if err != nil {
			respondPlatformError(c, "Failed to exchange provider token for a token pair", err)
			return
		}

		if profile, err := ah.wallets.Profile(c.Request.Context(), tokens.LocalID); err == nil {
			tokens.Wallet = profile
		} else if !errors.Is(err, wallet.ErrWalletNotFound) {
			log.Warn().Err(err).Msg("Could not attach wallet to sign in")
		}

		log.Debug().Str("provider", provider).Msg("Signed in through identity platform")
		c.JSON(http.StatusOK, tokens)
	}
}

func respondPlatformError(c *gin.Context, title string, err error) {
	var pe *platformError
	if errors.As(err, &pe) {
		log.Info().Int("status", pe.status).Str("message", pe.message).Msg(title)
		c.JSON(pe.status, reject.NewProblem().
			WithTitle(title).
			WithStatus(pe.status).
			WithDetail(pe.message).
			WithCode(errorTokenExchange).
			Build())
		return
	}

	log.Error().Err(err).Msg(title)
	c.JSON(http.StatusBadGateway, reject.NewProblem().
		WithTitle(title).
		WithStatus(http.StatusBadGateway).
		WithCode(errorTokenExchange).
		Build())
}
