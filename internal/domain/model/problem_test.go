package model

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemKey(t *testing.T) {
	assert.Equal(t, "1A", Problem{ContestID: 1, Index: "A"}.Key())
	assert.Equal(t, "1520B1", ProblemKey(1520, "B1"))
}

func TestSolvedSet(t *testing.T) {
	s := NewSolvedSet("1A", "2B")
	s.Add("1A")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("2B"))
	assert.False(t, s.Contains("3C"))
}

func TestNewMashupRequest_DecodeOverridesOnlyPresentFields(t *testing.T) {
	req := NewMashupRequest()
	require.NoError(t, json.Unmarshal([]byte(`{"username":"tourist","max_rating":2000}`), &req))

	assert.Equal(t, MashupRequest{
		Username:    "tourist",
		NumProblems: DefaultNumProblems,
		MinRating:   DefaultMinRating,
		MaxRating:   2000,
	}, req)
}

func TestMashup_ResponseEncodesEmptyProblems(t *testing.T) {
	m := &Mashup{ID: 7}
	out, err := json.Marshal(m.Response())
	require.NoError(t, err)
	assert.JSONEq(t, `{"mashup_id":7,"problems":[]}`, string(out))
}
