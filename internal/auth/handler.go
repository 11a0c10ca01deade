package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/wallet"
)

const (
	tokenEndpoint        = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithIdp"
	refreshTokenEndpoint = "https://securetoken.googleapis.com/v1/token"
)

type profileFinder interface {
	Profile(ctx context.Context, externalId string) (*wallet.Profile, error)
}

type authHandler struct {
	wallets         profileFinder
	apiKey          string
	tokenEndpoint   string
	refreshEndpoint string
	client          *http.Client
}

func RegisterRoutes(rg *gin.RouterGroup, wallets profileFinder, apiKey string) {
	handler := &authHandler{
		wallets:         wallets,
		apiKey:          apiKey,
		tokenEndpoint:   tokenEndpoint,
		refreshEndpoint: refreshTokenEndpoint,
		client:          &http.Client{Timeout: 10 * time.Second},
	}
	handler.register(rg)
}

func (ah *authHandler) register(rg *gin.RouterGroup) {
	routes := rg.Group("/auth")
	routes.POST("/google", ah.signInWith("google.com"))
	routes.POST("/apple", ah.signInWith("apple.com"))
	routes.POST("/refresh", ah.refresh)
}
