package utils

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const identityCtxKey string = "identity"

// Identity is the verified caller of a request.
type Identity struct {
	ExternalId string
	Email      string
	RawToken   string
}

func IdentityFromToken(token *auth.Token, raw string) Identity {
	email, _ := token.Claims["email"].(string)
	return Identity{
		ExternalId: token.UID,
		Email:      email,
		RawToken:   raw,
	}
}

func SetIdentityCtx(identity Identity, ctx *gin.Context) {
	ctx.Set(identityCtxKey, identity)
}

// GetIdentity aborts with 500 when no identity middleware ran before.
func GetIdentity(ctx *gin.Context) Identity {
	value, exists := ctx.Get(identityCtxKey)
	if !exists {
		ctx.AbortWithStatus(http.StatusInternalServerError)
		return Identity{}
	}
	return value.(Identity)
}

func GetUserExternalId(ctx *gin.Context) string {
	return GetIdentity(ctx).ExternalId
}

func GetUserEmail(ctx *gin.Context) string {
	return GetIdentity(ctx).Email
}
