package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/onflow/flow-go-sdk"
)

const signerCtxKey string = "playerSigner"

func SetSignerCtx(signer blockchain.Signer, ctx *gin.Context) {
	ctx.Set(signerCtxKey, signer)
}

// GetSigner returns the signer of the player behind the request.
func GetSigner(ctx *gin.Context) blockchain.Signer {
	return getCtxValue(signerCtxKey, ctx).(blockchain.Signer)
}

func GetPlayerAddress(ctx *gin.Context) flow.Address {
	return GetSigner(ctx).Address()
}
