package model

import "strconv"

// Problem is a rated Codeforces problem as handed back to clients.
type Problem struct {
	Name      string `json:"name"`
	ContestID int    `json:"contest_id"`
	Index     string `json:"index"`
	Rating    int    `json:"rating"`
}

// Key is the identity of a problem: contest id followed by index, e.g. "1520B1".
func (p Problem) Key() string {
	return ProblemKey(p.ContestID, p.Index)
}

func ProblemKey(contestID int, index string) string {
	return strconv.Itoa(contestID) + index
}

// CatalogProblem is an entry of the Codeforces problemset. Rating and ContestID
// are absent for some problems.
type CatalogProblem struct {
	ContestID *int     `json:"contestId,omitempty"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Type      string   `json:"type,omitempty"`
	Rating    *int     `json:"rating,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// SolvedSet holds the keys of problems a user has an accepted submission for.
type SolvedSet map[string]struct{}

func NewSolvedSet(keys ...string) SolvedSet {
	s := make(SolvedSet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s SolvedSet) Add(key string) {
	s[key] = struct{}{}
}

func (s SolvedSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

func (s SolvedSet) Len() int {
	return len(s)
}
