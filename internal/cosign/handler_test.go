package cosign

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/middleware"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(f *fixture, signer blockchain.Signer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/pokerzk-api"), f.service, []gin.HandlerFunc{middleware.UseSigner(signer)})
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func Test_Handler_PrepareThenAccept(t *testing.T) {
	f := newFixture(t, 1)

	w := serve(newRouter(f, f.alice), http.MethodPost, "/pokerzk-api/cosign/start-game/prepare",
		fmt.Sprintf(`{"tableId":3,"buyIn":500,"player2":"0x%s"}`, bob.Hex()))
	require.Equal(t, http.StatusCreated, w.Code)

	var offer map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offer))
	assert.Equal(t, bob.Hex(), offer["player2"])

	bobRouter := newRouter(f, f.bob)
	w = serve(bobRouter, http.MethodGet, "/pokerzk-api/cosign/offers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), offer["id"].(string))

	w = serve(bobRouter, http.MethodPost, "/pokerzk-api/cosign/start-game/parse",
		fmt.Sprintf(`{"artifact":%q}`, offer["artifact"]))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tableId":3`)

	w = serve(bobRouter, http.MethodPost, "/pokerzk-api/cosign/start-game/accept",
		fmt.Sprintf(`{"offerId":%q}`, offer["id"]))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"gameId":%v}`, offer["sessionId"]), w.Body.String())
}

func Test_Handler_ParseGarbageIsMalformed(t *testing.T) {
	f := newFixture(t, 2)

	w := serve(newRouter(f, f.bob), http.MethodPost, "/pokerzk-api/cosign/start-game/parse", `{"artifact":"###"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var p reject.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "error.auth-entry.malformed", p.Code)
}

func Test_Handler_AcceptNeedsExactlyOneSource(t *testing.T) {
	f := newFixture(t, 3)
	router := newRouter(f, f.bob)

	w := serve(router, http.MethodPost, "/pokerzk-api/cosign/start-game/accept", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodPost, "/pokerzk-api/cosign/start-game/accept", `{"offerId":"a","artifact":"b"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var p reject.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "offerId", p.Params["field"])

	w = serve(router, http.MethodPost, "/pokerzk-api/cosign/start-game/accept", `{"offerId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "error.offer.not-found", p.Code)
}
