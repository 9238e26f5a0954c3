package codeforces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"
	"cf_mashup/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/pointer"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.CodeforcesConfig{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestClient_SolvedProblems_OnlyAcceptedVerdicts(t *testing.T) {
	var gotPath, gotHandle string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHandle = r.URL.Query().Get("handle")
		writeBody(w, http.StatusOK, `{"status":"OK","result":[
			{"id":1,"verdict":"OK","problem":{"contestId":1,"index":"A","name":"Theatre Square"}},
			{"id":2,"verdict":"WRONG_ANSWER","problem":{"contestId":2,"index":"B","name":"Other"}},
			{"id":3,"verdict":"OK","problem":{"contestId":1,"index":"A","name":"Theatre Square"}},
			{"id":4,"problem":{"contestId":3,"index":"C","name":"Judging"}},
			{"id":5,"verdict":"OK","problem":{"contestId":1520,"index":"B1","name":"Easy"}},
			{"id":6,"verdict":"OK","problem":{"index":"A","name":"No contest"}}
		]}`)
	})

	solved, err := c.SolvedProblems(context.Background(), "tourist")
	require.NoError(t, err)

	assert.Equal(t, "/api/user.status", gotPath)
	assert.Equal(t, "tourist", gotHandle)
	assert.Equal(t, 2, solved.Len())
	assert.True(t, solved.Contains("1A"))
	assert.True(t, solved.Contains("1520B1"))
	assert.False(t, solved.Contains("2B"))
	assert.False(t, solved.Contains("3C"))
}

func TestClient_SolvedProblems_FailedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusBadRequest, `{"status":"FAILED","comment":"handle: User with handle nobody not found"}`)
	})

	_, err := c.SolvedProblems(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstreamAPI)
	assert.NotErrorIs(t, err, common.ErrUpstreamUnavailable)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, methodStatus, apiErr.Method)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Comment, "not found")
}

func TestClient_SolvedProblems_FailedStatusWith200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"status":"FAILED","comment":"Call limit exceeded"}`)
	})

	_, err := c.SolvedProblems(context.Background(), "tourist")
	assert.ErrorIs(t, err, common.ErrUpstreamAPI)
}

func TestClient_ServerErrorWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	})

	_, err := c.SolvedProblems(context.Background(), "tourist")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, common.ErrUpstreamAPI)
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"status":"OK"}`)
	})

	_, err := c.Problemset(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(config.CodeforcesConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, err := c.Problemset(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	c := NewClient(config.CodeforcesConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := c.SolvedProblems(context.Background(), "tourist")
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestClient_Problemset(t *testing.T) {
	var gotPath, gotTags string
	var hadTags bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTags = r.URL.Query().Get("tags")
		_, hadTags = r.URL.Query()["tags"]
		writeBody(w, http.StatusOK, `{"status":"OK","result":{
			"problems":[
				{"contestId":1,"index":"A","name":"Theatre Square","type":"PROGRAMMING","rating":1000,"tags":["math"]},
				{"contestId":2,"index":"B","name":"Unrated","type":"PROGRAMMING","tags":[]}
			],
			"problemStatistics":[{"contestId":1,"index":"A","solvedCount":100000}]
		}}`)
	})

	t.Run("without tags", func(t *testing.T) {
		problems, err := c.Problemset(context.Background(), nil)
		require.NoError(t, err)

		assert.Equal(t, "/api/problemset.problems", gotPath)
		assert.False(t, hadTags)
		require.Len(t, problems, 2)
		assert.Equal(t, model.CatalogProblem{
			ContestID: pointer.Int(1),
			Index:     "A",
			Name:      "Theatre Square",
			Type:      "PROGRAMMING",
			Rating:    pointer.Int(1000),
			Tags:      []string{"math"},
		}, problems[0])
		assert.Nil(t, problems[1].Rating)
	})

	t.Run("tags are semicolon joined", func(t *testing.T) {
		_, err := c.Problemset(context.Background(), []string{"dp", "greedy"})
		require.NoError(t, err)
		assert.Equal(t, "dp;greedy", gotTags)
	})
}
