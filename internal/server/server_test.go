package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/scholarship-matcher/internal/catalog"
	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	c, err := catalog.Default()
	require.NoError(t, err)

	srv := httptest.NewServer(New(eligibility.NewEngine(eligibility.Options{}), c, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/v1/eligibility", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

const alexProfile = `{"name": "Alex", "gpa": 3.8, "educationLevel": "Undergraduate", "major": "Computer Science",
  "financialNeed": true, "gender": "Female", "region": "California"}`

func TestEvaluateDefaultCatalog(t *testing.T) {
	srv := newTestServer(t)

	resp, data := post(t, srv, `{"profile": `+alexProfile+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var body EligibilityResponse
	require.NoError(t, json.Unmarshal(data, &body))

	_, err := uuid.Parse(body.PassID)
	assert.NoError(t, err)
	assert.Equal(t, body.PassID, resp.Header.Get(PassIDHeader))
	assert.Equal(t, catalog.EmbeddedSource, body.Catalog)

	require.Len(t, body.Results, 8)
	assert.Equal(t, 8, body.Summary.Total)
	assert.Equal(t, body.Summary.Total, body.Summary.Full+body.Summary.Partial+body.Summary.None)

	first := body.Results[0]
	assert.Equal(t, eligibility.StatusFull, first.Status)
	assert.Equal(t, 100, first.MatchScore)

	for i := 1; i < len(body.Results); i++ {
		assert.LessOrEqual(t, body.Results[i-1].Status.Rank(), body.Results[i].Status.Rank())
	}
}

func TestEvaluateInlineCatalog(t *testing.T) {
	srv := newTestServer(t)

	body := `{"profile": ` + alexProfile + `, "scholarships": [
  {"id": "x1", "name": "Open Award", "organization": "Town", "amount": 100},
  {"id": "x1", "name": "Duplicate", "organization": "Town", "amount": 100},
  {"id": "x2", "name": "Bad", "amount": "lots"},
  {"id": "x3", "name": "Grad Only", "organization": "Uni", "amount": 50, "requirements": {"levels": ["Graduate/PhD"]}},
  {"name": "Anonymous", "organization": "Uni"}
]}`
	resp, data := post(t, srv, body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var decoded EligibilityResponse
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "request", decoded.Catalog)
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "x1", decoded.Results[0].ScholarshipID)
	assert.Equal(t, eligibility.StatusFull, decoded.Results[0].Status)
	assert.Equal(t, "x3", decoded.Results[1].ScholarshipID)
	assert.Equal(t, eligibility.StatusNone, decoded.Results[1].Status)
	assert.Equal(t, "x2", decoded.Results[2].ScholarshipID)
	assert.Equal(t, eligibility.StatusNone, decoded.Results[2].Status)
	assert.Equal(t, 0, decoded.Results[2].MatchScore)

	require.Len(t, decoded.Skipped, 1)
	assert.Equal(t, "duplicate scholarship id", decoded.Skipped[0].Message)
	require.Len(t, decoded.Failed, 1)
	assert.Equal(t, "x2", decoded.Failed[0].ScholarshipID)
	assert.Contains(t, decoded.Failed[0].Message, "amount")
	require.Len(t, decoded.Rejected, 1)
	assert.Equal(t, 4, decoded.Rejected[0].Index)
}

func TestEvaluateRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{name: "malformed json", body: `{"profile": `, message: "decode request"},
		{name: "unknown field", body: `{"student": {}}`, message: "unknown field"},
		{name: "missing major", body: `{"profile": {"gpa": 3.1, "educationLevel": "Undergraduate", "region": "Ohio"}}`, message: "field major is required"},
		{name: "bad level", body: `{"profile": {"gpa": 3.1, "educationLevel": "Postdoc", "major": "Art", "region": "Ohio"}}`, message: "field educationLevel must be one of"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, data := post(t, srv, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var decoded Response
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, StatusError, decoded.Status)
			assert.Contains(t, decoded.Error, tc.message)
		})
	}
}

func TestScholarshipEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/scholarships")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed catalog.Catalog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Equal(t, 8, listed.Len())

	one, err := http.Get(srv.URL + "/api/v1/scholarships/s3")
	require.NoError(t, err)
	defer one.Body.Close()
	require.Equal(t, http.StatusOK, one.StatusCode)

	var item eligibility.Scholarship
	require.NoError(t, json.NewDecoder(one.Body).Decode(&item))
	assert.Equal(t, "s3", item.ID)

	missing, err := http.Get(srv.URL + "/api/v1/scholarships/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestEvaluateOneScholarship(t *testing.T) {
	srv := newTestServer(t)

	evaluate := func(id, body string) (*http.Response, []byte) {
		t.Helper()

		resp, err := http.Post(srv.URL+"/api/v1/scholarships/"+id+"/eligibility", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, data
	}

	resp, data := evaluate("s4", `{"profile": `+alexProfile+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var result eligibility.MatchResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "s4", result.ScholarshipID)
	assert.Equal(t, eligibility.StatusNone, result.Status)
	assert.Contains(t, result.MissingRequirements, "Outside eligible region")

	resp, data = evaluate("s1", `{"profile": `+alexProfile+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, eligibility.StatusFull, result.Status)

	resp, _ = evaluate("nope", `{"profile": `+alexProfile+`}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data = evaluate("s1", `{"profile": {"gpa": 3.1, "educationLevel": "Undergraduate", "region": "Ohio"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var failed Response
	require.NoError(t, json.Unmarshal(data, &failed))
	assert.Contains(t, failed.Error, "field major is required")

	resp, _ = evaluate("s1", `{"profile": `+alexProfile+`, "scholarships": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	resp, _ := post(t, srv, `{"profile": `+alexProfile+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()

	data, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.Contains(text, `scholarship_matcher_passes_total{result="ok"} 1`), text)
	assert.Contains(t, text, "scholarship_matcher_outcomes_total")
	assert.Contains(t, text, "scholarship_matcher_pass_duration_seconds_count 1")
}
