package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/reject"
)

const (
	pageSizeInvalid  string = "error.request.page-size-invalid"
	pageTokenInvalid string = "error.request.page-token-invalid"

	defaultPageSize = 50
	maxPageSize     = 100
)

type PageRequest struct {
	Size   int
	Token  int
	Offset int
}

// NewPageRequest reads page_size and page_token. Both are optional; the first
// page of defaultPageSize items is assumed.
func NewPageRequest(c *gin.Context) (PageRequest, *reject.ProblemWithTrace) {
	pageSize := defaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return PageRequest{}, &reject.ProblemWithTrace{
				Problem: reject.NewProblem().
					WithTitle("Invalid page size").
					WithStatus(http.StatusBadRequest).
					WithCode(pageSizeInvalid).
					Build(),
				Cause: err,
			}
		}
		pageSize = size
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	pageToken := 0
	if raw := c.Query("page_token"); raw != "" {
		token, err := strconv.Atoi(raw)
		if err != nil || token < 0 {
			return PageRequest{}, &reject.ProblemWithTrace{
				Problem: reject.NewProblem().
					WithTitle("Invalid page token").
					WithStatus(http.StatusBadRequest).
					WithCode(pageTokenInvalid).
					Build(),
				Cause: err,
			}
		}
		pageToken = token
	}

	return PageRequest{
		Size:   pageSize,
		Token:  pageToken,
		Offset: pageSize * pageToken,
	}, nil
}
