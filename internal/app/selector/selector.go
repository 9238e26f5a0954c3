// Package selector picks a random set of unsolved problems inside a rating band.
package selector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"
)

// Fetcher supplies the two upstream inputs of a selection.
type Fetcher interface {
	SolvedProblems(ctx context.Context, handle string) (model.SolvedSet, error)
	Problemset(ctx context.Context, tags []string) ([]model.CatalogProblem, error)
}

type Params struct {
	Username    string
	MinRating   int
	MaxRating   int
	NumProblems int
}

type Selector struct {
	fetcher Fetcher

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Selector)

// WithSeed makes the draw order reproducible.
func WithSeed(seed int64) Option {
	return func(s *Selector) {
		s.rng = newRand(uint64(seed))
	}
}

func New(fetcher Fetcher, opts ...Option) *Selector {
	s := &Selector{
		fetcher: fetcher,
		rng:     newRand(uint64(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Select returns exactly p.NumProblems eligible problems in draw order. Any
// upstream failure or a short eligible list fails the whole call.
func (s *Selector) Select(ctx context.Context, p Params) ([]model.Problem, error) {
	solved, err := s.fetcher.SolvedProblems(ctx, p.Username)
	if err != nil {
		return nil, upstreamError(err)
	}

	catalog, err := s.fetcher.Problemset(ctx, nil)
	if err != nil {
		return nil, upstreamError(err)
	}

	eligible := Eligible(catalog, solved, p.MinRating, p.MaxRating)
	if len(eligible) < p.NumProblems {
		return nil, common.NewGenerationError(common.KindInsufficientProblems,
			fmt.Errorf("found %d eligible problems, need %d", len(eligible), p.NumProblems))
	}

	return s.sample(eligible, p.NumProblems), nil
}

// Eligible keeps rated problems with a contest id whose rating lies in
// [minRating, maxRating] and whose key is not in solved. Catalog order is kept.
func Eligible(catalog []model.CatalogProblem, solved model.SolvedSet, minRating, maxRating int) []model.Problem {
	eligible := make([]model.Problem, 0, len(catalog))
	for _, cp := range catalog {
		if cp.Rating == nil || cp.ContestID == nil {
			continue
		}
		rating := *cp.Rating
		if rating < minRating || rating > maxRating {
			continue
		}
		if solved.Contains(model.ProblemKey(*cp.ContestID, cp.Index)) {
			continue
		}
		eligible = append(eligible, model.Problem{
			Name:      cp.Name,
			ContestID: *cp.ContestID,
			Index:     cp.Index,
			Rating:    rating,
		})
	}
	return eligible
}

// sample draws n elements without replacement with a partial Fisher-Yates
// shuffle. pool is reordered in place.
func (s *Selector) sample(pool []model.Problem, n int) []model.Problem {
	if n <= 0 {
		return []model.Problem{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < n; i++ {
		j := i + s.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]model.Problem, n)
	copy(out, pool[:n])
	return out
}

func upstreamError(err error) error {
	kind, ok := common.GenerationKindFromError(err)
	if !ok {
		kind = common.KindUpstreamUnavailable
	}
	return common.NewGenerationError(kind, err)
}
