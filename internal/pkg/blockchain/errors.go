package blockchain

import (
	"errors"
	"fmt"
)

type ContractErrorCode uint32

const (
	CodeGameNotFound ContractErrorCode = iota + 1
	CodeNotPlayer
	CodeInvalidState
	CodeCannotPlaySelf
	CodeGameFull
	CodeBuyInTooLow
	CodeBuyInTooHigh
	CodeAlreadyCommitted
	CodeAlreadyRevealed
	CodeInvalidSeed
	CodeMustCallOrRaise
	CodeInvalidAmount
	CodeRaiseTooSmall
	CodeGameAlreadyDecided
	CodeNotYourTurn
	CodeInvalidCards
	CodeInvalidRank
	CodeInvalidCommitment
	CodeInvalidProof
	CodeGameAlreadyFinished
	CodeGameCancelled
	CodeTimeoutNotReached
	CodeNoTimeoutApplicable
	CodeConfigNotSet
	CodeTableNotFound
	CodeNoWaitingSession
	CodeWaitingTimeoutNotReached
	CodeMessageTooLong
)

var contractErrorNames = map[ContractErrorCode]string{
	CodeGameNotFound:             "GameNotFound",
	CodeNotPlayer:                "NotPlayer",
	CodeInvalidState:             "InvalidState",
	CodeCannotPlaySelf:           "CannotPlaySelf",
	CodeGameFull:                 "GameFull",
	CodeBuyInTooLow:              "BuyInTooLow",
	CodeBuyInTooHigh:             "BuyInTooHigh",
	CodeAlreadyCommitted:         "AlreadyCommitted",
	CodeAlreadyRevealed:          "AlreadyRevealed",
	CodeInvalidSeed:              "InvalidSeed",
	CodeMustCallOrRaise:          "MustCallOrRaise",
	CodeInvalidAmount:            "InvalidAmount",
	CodeRaiseTooSmall:            "RaiseTooSmall",
	CodeGameAlreadyDecided:       "GameAlreadyDecided",
	CodeNotYourTurn:              "NotYourTurn",
	CodeInvalidCards:             "InvalidCards",
	CodeInvalidRank:              "InvalidRank",
	CodeInvalidCommitment:        "InvalidCommitment",
	CodeInvalidProof:             "InvalidProof",
	CodeGameAlreadyFinished:      "GameAlreadyFinished",
	CodeGameCancelled:            "GameCancelled",
	CodeTimeoutNotReached:        "TimeoutNotReached",
	CodeNoTimeoutApplicable:      "NoTimeoutApplicable",
	CodeConfigNotSet:             "ConfigNotSet",
	CodeTableNotFound:            "TableNotFound",
	CodeNoWaitingSession:         "NoWaitingSession",
	CodeWaitingTimeoutNotReached: "WaitingTimeoutNotReached",
	CodeMessageTooLong:           "MessageTooLong",
}

func (c ContractErrorCode) String() string {
	if name, ok := contractErrorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint32(c))
}

// ContractError is a rejection reported by the contract itself. Retrying
// without a state change fails the same way.
type ContractError struct {
	Code ContractErrorCode
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract rejected call: %s (#%d)", e.Code, uint32(e.Code))
}

func (e *ContractError) Is(target error) bool {
	t, ok := target.(*ContractError)
	return ok && t.Code == e.Code
}

func NewContractError(code uint32) *ContractError {
	return &ContractError{Code: ContractErrorCode(code)}
}

func AsContractError(err error) (*ContractError, bool) {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

var (
	ErrGameNotFound      = &ContractError{Code: CodeGameNotFound}
	ErrNotPlayer         = &ContractError{Code: CodeNotPlayer}
	ErrTableNotFound     = &ContractError{Code: CodeTableNotFound}
	ErrNoWaitingSession  = &ContractError{Code: CodeNoWaitingSession}
	ErrAlreadyCommitted  = &ContractError{Code: CodeAlreadyCommitted}
	ErrMessageTooLong    = &ContractError{Code: CodeMessageTooLong}
	ErrTimeoutNotReached = &ContractError{Code: CodeTimeoutNotReached}
)

var (
	ErrAuthEntryNotFound         = errors.New("authorization entry not found")
	ErrUnsupportedCredentialType = errors.New("unsupported credential type")
	ErrMalformedAuthEntry        = errors.New("malformed authorization entry")
	ErrTransport                 = errors.New("ledger transport failure")
)

// IsAuthoritative reports a contract answer meaning the caller has no game
// to follow: it does not exist or the caller is not seated in it.
func IsAuthoritative(err error) bool {
	return errors.Is(err, ErrGameNotFound) || errors.Is(err, ErrNotPlayer)
}
