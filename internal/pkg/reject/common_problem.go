package reject

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	genericUnexpectedError string = "error.generic.unexpected"
	invalidPathParam       string = "error.request.invalid-path-param"
	invalidField           string = "error.request.invalid-field"
	cannotParseBody        string = "error.request.cannot-parse-payload"
)

// InvalidFieldProblem names the first body field that failed validation.
func InvalidFieldProblem(field string) Problem {
	return NewProblem().
		WithTitle("Invalid request payload").
		WithStatus(http.StatusBadRequest).
		WithCode(invalidField).
		WithParam("field", field).
		Build()
}

func InvalidPathParamProblem(param string) Problem {
	return NewProblem().
		WithTitle("Invalid path parameter").
		WithStatus(http.StatusBadRequest).
		WithCode(invalidPathParam).
		WithParam("param", param).
		Build()
}

func BodyParseProblem() Problem {
	return NewProblem().
		WithTitle("Cannot read payload").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseBody).
		Build()
}

func UnexpectedProblem(err error) Problem {
	log.Error().Err(err).Msg("Unexpected error while handling request")
	return NewProblem().
		WithTitle("Unexpected error").
		WithStatus(http.StatusInternalServerError).
		WithCode(genericUnexpectedError).
		Build()
}
