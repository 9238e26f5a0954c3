package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cf_mashup/internal/app/selector"
	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"
	"cf_mashup/internal/domain/repository"
	"cf_mashup/internal/platform/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSelector struct {
	problems []model.Problem
	err      error
	got      selector.Params
	calls    int
}

func (f *fakeSelector) Select(ctx context.Context, p selector.Params) ([]model.Problem, error) {
	f.calls++
	f.got = p
	return f.problems, f.err
}

// countingRepo records FindByID calls on top of the in-memory store.
type countingRepo struct {
	repository.MashupRepository
	finds int
}

func (r *countingRepo) FindByID(ctx context.Context, id int64) (*model.Mashup, error) {
	r.finds++
	return r.MashupRepository.FindByID(ctx, id)
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *model.Mashup) error {
	return errors.New("connection reset")
}

func (failingRepo) FindByID(context.Context, int64) (*model.Mashup, error) {
	return nil, errors.New("connection reset")
}

var twoProblems = []model.Problem{
	{Name: "Two Buttons", ContestID: 520, Index: "B", Rating: 1400},
	{Name: "Watermelon", ContestID: 4, Index: "A", Rating: 1500},
}

func validRequest() model.MashupRequest {
	req := model.NewMashupRequest()
	req.Username = "tourist"
	req.NumProblems = 2
	return req
}

func TestMashupService_GenerateThenGet(t *testing.T) {
	ctx := context.Background()
	sel := &fakeSelector{problems: twoProblems}
	svc := NewMashupService(sel, repository.NewMemoryMashupRepository(), nil)

	created, err := svc.Generate(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.MashupID)
	assert.Equal(t, twoProblems, created.Problems)
	assert.Equal(t, selector.Params{Username: "tourist", MinRating: 1400, MaxRating: 1600, NumProblems: 2}, sel.got)

	got, err := svc.Get(ctx, created.MashupID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	details, err := svc.GetDetails(ctx, created.MashupID)
	require.NoError(t, err)
	assert.Equal(t, "tourist-1400-1600", details.Title)
	assert.Equal(t, validRequest(), details.Request)
	assert.Equal(t, twoProblems, details.Problems)
	assert.False(t, details.CreatedAt.IsZero())
}

func TestMashupService_GenerateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.MashupRequest)
		msg    string
	}{
		{"missing username", func(r *model.MashupRequest) { r.Username = "" }, "username is required"},
		{"negative count", func(r *model.MashupRequest) { r.NumProblems = -1 }, "num_problems must be at least 0"},
		{"inverted band", func(r *model.MashupRequest) { r.MinRating, r.MaxRating = 1600, 1400 }, "max_rating must be greater than or equal to min_rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &fakeSelector{problems: twoProblems}
			svc := NewMashupService(sel, repository.NewMemoryMashupRepository(), nil)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Generate(context.Background(), req)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Zero(t, sel.calls)
		})
	}
}

func TestMashupService_GenerateAcceptsUnboundedInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.MashupRequest)
	}{
		{"zero problems", func(r *model.MashupRequest) { r.NumProblems = 0 }},
		{"large count", func(r *model.MashupRequest) { r.NumProblems = 150 }},
		{"negative band", func(r *model.MashupRequest) { r.MinRating, r.MaxRating = -100, -50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &fakeSelector{problems: []model.Problem{}}
			svc := NewMashupService(sel, repository.NewMemoryMashupRepository(), nil)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Generate(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, 1, sel.calls)
			assert.Equal(t, req.NumProblems, sel.got.NumProblems)
			assert.Equal(t, req.MinRating, sel.got.MinRating)
		})
	}
}

func TestMashupService_GenerateFailureIsNotStored(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMashupRepository()
	sel := &fakeSelector{err: common.NewGenerationError(common.KindInsufficientProblems, errors.New("found 1 eligible problems, need 2"))}
	svc := NewMashupService(sel, repo, nil)

	_, err := svc.Generate(ctx, validRequest())
	require.ErrorIs(t, err, common.ErrInsufficientProblems)

	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMashupService_StoreFailure(t *testing.T) {
	svc := NewMashupService(&fakeSelector{problems: twoProblems}, failingRepo{}, nil)

	_, err := svc.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, 500, common.HTTPStatusFromError(err))
}

func TestMashupService_GetUnknown(t *testing.T) {
	svc := NewMashupService(&fakeSelector{}, repository.NewMemoryMashupRepository(), nil)

	_, err := svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.GetDetails(context.Background(), 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMashupService_ReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	repo := &countingRepo{MashupRepository: repository.NewMemoryMashupRepository()}
	svc := NewMashupService(&fakeSelector{problems: twoProblems}, repo, cache.NewRedisMashupCache(rdb, time.Hour))

	created, err := svc.Generate(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, mr.Exists("mashup:1"))

	got, err := svc.Get(ctx, created.MashupID)
	require.NoError(t, err)
	assert.Equal(t, twoProblems, got.Problems)
	assert.Zero(t, repo.finds, "generated mashup should be served from cache")

	mr.FlushAll()
	got, err = svc.Get(ctx, created.MashupID)
	require.NoError(t, err)
	assert.Equal(t, twoProblems, got.Problems)
	assert.Equal(t, 1, repo.finds)
	assert.True(t, mr.Exists("mashup:1"), "miss should repopulate the cache")
}

func TestMashupService_CacheOutageFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	svc := NewMashupService(&fakeSelector{problems: twoProblems}, repository.NewMemoryMashupRepository(), cache.NewRedisMashupCache(rdb, time.Hour))
	mr.Close()

	created, err := svc.Generate(ctx, validRequest())
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.MashupID)
	require.NoError(t, err)
	assert.Equal(t, twoProblems, got.Problems)
}
