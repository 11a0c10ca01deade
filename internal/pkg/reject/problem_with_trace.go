package reject

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"unicode"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/secret"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/rs/zerolog/log"
)

// ProblemWithTrace is a problem for the client plus the error behind it,
// which is only logged.
type ProblemWithTrace struct {
	Problem Problem
	Cause   error
}

func (p *ProblemWithTrace) Error() string {
	if p.Cause == nil {
		return p.Problem.Title
	}
	return fmt.Sprintf("%s: %v", p.Problem.Title, p.Cause)
}

func (p *ProblemWithTrace) Unwrap() error {
	return p.Cause
}

type mapping struct {
	target error
	status int
	code   string
	title  string
}

var (
	mappingsMu sync.RWMutex
	mappings   = []mapping{
		{blockchain.ErrAuthEntryNotFound, http.StatusUnprocessableEntity, "error.auth-entry.not-found", "Authorization entry for this player not found"},
		{blockchain.ErrUnsupportedCredentialType, http.StatusBadRequest, "error.auth-entry.unsupported-credential", "Unsupported credential type"},
		{blockchain.ErrMalformedAuthEntry, http.StatusBadRequest, "error.auth-entry.malformed", "Malformed authorization entry"},
		{blockchain.ErrTransport, http.StatusBadGateway, "error.transport", "Ledger is unreachable"},
		{secret.ErrSecretUnavailable, http.StatusGone, "error.secret.unavailable", "Seed for this hand is no longer available"},
		{secret.ErrSecretExists, http.StatusConflict, "error.secret.exists", "Seed for this hand is already stored"},
		{shuffle.ErrInsecureRandomness, http.StatusServiceUnavailable, "error.randomness.unavailable", "Secure randomness unavailable"},
	}
)

// Map registers how a domain error is shown to clients.
func Map(target error, status int, code, title string) {
	mappingsMu.Lock()
	defer mappingsMu.Unlock()
	mappings = append(mappings, mapping{target: target, status: status, code: code, title: title})
}

var contractStatus = map[blockchain.ContractErrorCode]int{
	blockchain.CodeGameNotFound:             http.StatusNotFound,
	blockchain.CodeTableNotFound:            http.StatusNotFound,
	blockchain.CodeNoWaitingSession:         http.StatusNotFound,
	blockchain.CodeNotPlayer:                http.StatusForbidden,
	blockchain.CodeInvalidState:             http.StatusConflict,
	blockchain.CodeGameFull:                 http.StatusConflict,
	blockchain.CodeAlreadyCommitted:         http.StatusConflict,
	blockchain.CodeAlreadyRevealed:          http.StatusConflict,
	blockchain.CodeGameAlreadyDecided:       http.StatusConflict,
	blockchain.CodeNotYourTurn:              http.StatusConflict,
	blockchain.CodeGameAlreadyFinished:      http.StatusConflict,
	blockchain.CodeGameCancelled:            http.StatusConflict,
	blockchain.CodeTimeoutNotReached:        http.StatusConflict,
	blockchain.CodeNoTimeoutApplicable:      http.StatusConflict,
	blockchain.CodeConfigNotSet:             http.StatusConflict,
	blockchain.CodeWaitingTimeoutNotReached: http.StatusConflict,
}

// FromError turns any service error into a problem. Contract rejections keep
// their code; unknown errors become a generic 500.
func FromError(err error) *ProblemWithTrace {
	if err == nil {
		return nil
	}

	var pwt *ProblemWithTrace
	if errors.As(err, &pwt) {
		return pwt
	}

	if ce, ok := blockchain.AsContractError(err); ok {
		status, ok := contractStatus[ce.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		return &ProblemWithTrace{
			Problem: NewProblem().
				WithTitle("Contract rejected the operation").
				WithStatus(status).
				WithCode("error.contract." + kebab(ce.Code.String())).
				WithDetail(ce.Code.String()).
				Build(),
			Cause: err,
		}
	}

	mappingsMu.RLock()
	defer mappingsMu.RUnlock()
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				log.Warn().Err(err).Msg(m.title)
			}
			return &ProblemWithTrace{
				Problem: NewProblem().
					WithTitle(m.title).
					WithStatus(m.status).
					WithCode(m.code).
					Build(),
				Cause: err,
			}
		}
	}

	return &ProblemWithTrace{Problem: UnexpectedProblem(err), Cause: err}
}

func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
