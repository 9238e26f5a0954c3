package codeforces

import (
	"fmt"

	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"
)

const (
	statusOK     = "OK"
	verdictOK    = "OK"
	methodStatus = "user.status"
	methodProbs  = "problemset.problems"
)

// envelope is the wrapper around every Codeforces API response.
type envelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
	Result  *T     `json:"result,omitempty"`
}

// ProblemRef is the problem embedded in a submission.
type ProblemRef struct {
	ContestID *int   `json:"contestId,omitempty"`
	Index     string `json:"index"`
	Name      string `json:"name"`
}

type Submission struct {
	ID      int64      `json:"id"`
	Problem ProblemRef `json:"problem"`
	// Empty while the submission is still being judged.
	Verdict string `json:"verdict,omitempty"`
}

type problemsetResult struct {
	Problems []model.CatalogProblem `json:"problems"`
}

// APIError is returned when Codeforces answers with a FAILED status, e.g. for an unknown handle.
type APIError struct {
	Method     string
	StatusCode int
	Comment    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("codeforces %s failed (http %d): %s", e.Method, e.StatusCode, e.Comment)
}

func (e *APIError) Unwrap() error {
	return common.ErrUpstreamAPI
}
