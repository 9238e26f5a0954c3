package model

import "time"

const (
	DefaultNumProblems = 5
	DefaultMinRating   = 1400
	DefaultMaxRating   = 1600
)

type MashupRequest struct {
	Username    string `json:"username" validate:"required"`
	NumProblems int    `json:"num_problems" validate:"min=0"`
	MinRating   int    `json:"min_rating"`
	MaxRating   int    `json:"max_rating" validate:"gtefield=MinRating"`
}

// NewMashupRequest returns a request carrying the default count and rating band.
// Decoding a JSON body on top of it overrides only the fields present.
func NewMashupRequest() MashupRequest {
	return MashupRequest{
		NumProblems: DefaultNumProblems,
		MinRating:   DefaultMinRating,
		MaxRating:   DefaultMaxRating,
	}
}

// Mashup is a generated problem set as persisted by the store.
type Mashup struct {
	ID        int64
	Title     string
	Request   MashupRequest
	Problems  []Problem
	CreatedAt time.Time
}

type MashupResponse struct {
	MashupID int64     `json:"mashup_id"`
	Problems []Problem `json:"problems"`
}

type MashupDetails struct {
	MashupID  int64         `json:"mashup_id"`
	Title     string        `json:"title"`
	Request   MashupRequest `json:"request"`
	Problems  []Problem     `json:"problems"`
	CreatedAt time.Time     `json:"created_at"`
}

func (m *Mashup) Response() *MashupResponse {
	return &MashupResponse{MashupID: m.ID, Problems: nonNil(m.Problems)}
}

func (m *Mashup) Details() *MashupDetails {
	return &MashupDetails{
		MashupID:  m.ID,
		Title:     m.Title,
		Request:   m.Request,
		Problems:  nonNil(m.Problems),
		CreatedAt: m.CreatedAt,
	}
}

// nonNil keeps an empty problem list encoded as [] rather than null.
func nonNil(problems []Problem) []Problem {
	if problems == nil {
		return []Problem{}
	}
	return problems
}
