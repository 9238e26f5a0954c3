package service

import (
	"context"
	"errors"
	"fmt"

	"cf_mashup/internal/app/selector"
	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"
	"cf_mashup/internal/domain/repository"
	"cf_mashup/internal/platform/cache"
	"cf_mashup/internal/platform/logging"
	"cf_mashup/internal/platform/metrics"
	"cf_mashup/internal/platform/validation"

	"github.com/gosimple/slug"
)

// MashupSelector picks the problems of a new mashup.
type MashupSelector interface {
	Select(ctx context.Context, p selector.Params) ([]model.Problem, error)
}

type MashupService struct {
	selector   MashupSelector
	mashupRepo repository.MashupRepository
	cache      cache.MashupCache
}

// NewMashupService wires the service. A nil cache disables caching.
func NewMashupService(sel MashupSelector, mashupRepo repository.MashupRepository, mashupCache cache.MashupCache) *MashupService {
	if mashupCache == nil {
		mashupCache = cache.NoopMashupCache{}
	}
	return &MashupService{
		selector:   sel,
		mashupRepo: mashupRepo,
		cache:      mashupCache,
	}
}

// Generate selects problems for req, stores them and returns the new mashup.
func (s *MashupService) Generate(ctx context.Context, req model.MashupRequest) (*model.MashupResponse, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}

	log := logging.Ctx(ctx)

	problems, err := s.selector.Select(ctx, selector.Params{
		Username:    req.Username,
		MinRating:   req.MinRating,
		MaxRating:   req.MaxRating,
		NumProblems: req.NumProblems,
	})
	if err != nil {
		outcome := "error"
		if kind, ok := common.GenerationKindFromError(err); ok {
			outcome = string(kind)
		}
		metrics.MashupsGenerated.WithLabelValues(outcome).Inc()
		log.Warn().Err(err).Str("username", req.Username).Str("outcome", outcome).Msg("Mashup generation failed")
		return nil, err
	}

	mashup := &model.Mashup{
		Title:    slug.Make(fmt.Sprintf("%s %d %d", req.Username, req.MinRating, req.MaxRating)),
		Request:  req,
		Problems: problems,
	}
	if err := s.mashupRepo.Create(ctx, mashup); err != nil {
		metrics.MashupsGenerated.WithLabelValues("store_error").Inc()
		log.Error().Err(err).Msg("Failed to store mashup")
		return nil, fmt.Errorf("MashupService.Generate: %w", err)
	}
	metrics.MashupsGenerated.WithLabelValues("ok").Inc()

	if err := s.cache.Set(ctx, mashup); err != nil {
		log.Warn().Err(err).Int64("mashup_id", mashup.ID).Msg("Failed to cache mashup")
	}

	log.Info().
		Int64("mashup_id", mashup.ID).
		Str("username", req.Username).
		Int("num_problems", len(problems)).
		Msg("Mashup generated")
	return mashup.Response(), nil
}

// Get returns the stored problems of mashup id.
func (s *MashupService) Get(ctx context.Context, id int64) (*model.MashupResponse, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Response(), nil
}

// GetDetails also exposes the request the mashup was generated from.
func (s *MashupService) GetDetails(ctx context.Context, id int64) (*model.MashupDetails, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Details(), nil
}

func (s *MashupService) find(ctx context.Context, id int64) (*model.Mashup, error) {
	log := logging.Ctx(ctx)

	m, err := s.cache.Get(ctx, id)
	switch {
	case err == nil:
		metrics.MashupCacheLookups.WithLabelValues("hit").Inc()
		return m, nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.MashupCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.MashupCacheLookups.WithLabelValues("error").Inc()
		log.Warn().Err(err).Int64("mashup_id", id).Msg("Mashup cache lookup failed")
	}

	m, err = s.mashupRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("MashupService.find: %w", err)
	}

	if err := s.cache.Set(ctx, m); err != nil {
		log.Warn().Err(err).Int64("mashup_id", id).Msg("Failed to cache mashup")
	}
	return m, nil
}
