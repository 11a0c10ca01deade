package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/utils"
)

type identityPlatformErrorResponse struct {
	Error struct {
		Code    uint   `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// platformError is a non-200 answer of the identity platform.
type platformError struct {
	status  int
	message string
}

func (e *platformError) Error() string {
	return fmt.Sprintf("identity platform answered %d: %s", e.status, e.message)
}

// callPlatform posts body as JSON to endpoint and decodes a 200 answer into
// out. Other answers come back as *platformError.
func (ah *authHandler) callPlatform(ctx context.Context, endpoint string, body any, out any) error {
	uri := fmt.Sprintf("%s?key=%s", endpoint, ah.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(utils.JsonEncode(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := ah.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var errBody identityPlatformErrorResponse
		_ = json.NewDecoder(res.Body).Decode(&errBody)
		return &platformError{status: res.StatusCode, message: errBody.Error.Message}
	}
	return json.NewDecoder(res.Body).Decode(out)
}
