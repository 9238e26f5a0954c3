// Package codeforces talks to the public Codeforces API.
package codeforces

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"
	"cf_mashup/internal/platform/config"
	"cf_mashup/internal/platform/logging"
	"cf_mashup/internal/platform/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// API is the subset of Codeforces the mashup generator needs.
type API interface {
	SolvedProblems(ctx context.Context, handle string) (model.SolvedSet, error)
	Problemset(ctx context.Context, tags []string) ([]model.CatalogProblem, error)
}

// Client performs single-shot calls; it never retries.
type Client struct {
	http *resty.Client
}

func NewClient(cfg config.CodeforcesConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "cf-mashup").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetLogger(restyLogger{})

	return &Client{http: httpClient}
}

// SolvedProblems returns the keys of every problem the handle has an accepted submission for.
func (c *Client) SolvedProblems(ctx context.Context, handle string) (model.SolvedSet, error) {
	r := c.http.R().
		SetContext(ctx).
		SetQueryParam("handle", handle)

	submissions, err := receive[[]Submission](r, methodStatus)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("handle", handle).Msg("Failed to fetch solved problems")
		return nil, err
	}

	solved := model.NewSolvedSet()
	for _, sub := range *submissions {
		if sub.Verdict != verdictOK || sub.Problem.ContestID == nil {
			continue
		}
		solved.Add(model.ProblemKey(*sub.Problem.ContestID, sub.Problem.Index))
	}
	return solved, nil
}

// Problemset returns the full catalog, optionally restricted to problems carrying all of tags.
func (c *Client) Problemset(ctx context.Context, tags []string) ([]model.CatalogProblem, error) {
	r := c.http.R().SetContext(ctx)
	if len(tags) > 0 {
		r.SetQueryParam("tags", strings.Join(tags, ";"))
	}

	result, err := receive[problemsetResult](r, methodProbs)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Strs("tags", tags).Msg("Failed to fetch problemset")
		return nil, err
	}
	return result.Problems, nil
}

// receive executes a GET for method and unwraps the {status, comment, result} envelope.
// Transport failures and non-2xx answers without an envelope wrap common.ErrUpstreamUnavailable;
// a FAILED status becomes an *APIError.
func receive[T any](r *resty.Request, method string) (*T, error) {
	var env envelope[T]
	r.SetResult(&env)
	r.SetError(&env)
	r.ForceContentType("application/json")

	start := time.Now()
	resp, err := r.Get("/" + method)
	metrics.UpstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(method, "unavailable").Inc()
		return nil, fmt.Errorf("codeforces %s: %w: %w", method, common.ErrUpstreamUnavailable, err)
	}

	if env.Status != "" && env.Status != statusOK {
		metrics.UpstreamRequests.WithLabelValues(method, "api_error").Inc()
		return nil, &APIError{Method: method, StatusCode: resp.StatusCode(), Comment: env.Comment}
	}
	if resp.IsError() {
		metrics.UpstreamRequests.WithLabelValues(method, "unavailable").Inc()
		return nil, fmt.Errorf("codeforces %s: %w: http %d", method, common.ErrUpstreamUnavailable, resp.StatusCode())
	}
	if env.Status != statusOK || env.Result == nil {
		metrics.UpstreamRequests.WithLabelValues(method, "unavailable").Inc()
		return nil, fmt.Errorf("codeforces %s: %w: malformed response", method, common.ErrUpstreamUnavailable)
	}

	metrics.UpstreamRequests.WithLabelValues(method, "ok").Inc()
	return env.Result, nil
}

// restyLogger routes resty's internal diagnostics into zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	logging.Error().Str("component", "resty").Msgf(format, v...)
}

func (restyLogger) Warnf(format string, v ...any) {
	logging.Warn().Str("component", "resty").Msgf(format, v...)
}

func (restyLogger) Debugf(format string, v ...any) {
	logging.Debug().Str("component", "resty").Msgf(format, v...)
}
