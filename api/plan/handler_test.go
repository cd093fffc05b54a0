package plan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rolloutplan/config"
	coremetrics "github.com/kilianp07/rolloutplan/core/metrics"
	"github.com/kilianp07/rolloutplan/core/palette"
	"github.com/kilianp07/rolloutplan/core/rollout"
	"github.com/kilianp07/rolloutplan/core/session"
	"github.com/kilianp07/rolloutplan/pkg/export"
)

type recordingSink struct {
	generations []coremetrics.GenerationEvent
	exports     []coremetrics.ExportEvent
	sessions    []int
}

func (s *recordingSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	s.generations = append(s.generations, ev)
	return nil
}

func (s *recordingSink) RecordExport(ev coremetrics.ExportEvent) error {
	s.exports = append(s.exports, ev)
	return nil
}

func (s *recordingSink) RecordActiveSessions(n int) error {
	s.sessions = append(s.sessions, n)
	return nil
}

func newServer(t *testing.T) (*http.ServeMux, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	defaults := config.PlanConfig{CompanyName: "Riana Group", ProjectName: "QMS", Branches: 10}
	h := NewHandler(session.NewMemoryStore(), defaults, sink, nil, nil)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, sink
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func createSession(t *testing.T, mux http.Handler, body string) session.View {
	t.Helper()
	rr := do(t, mux, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var v session.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestGetPlanDefault(t *testing.T) {
	mux, sink := newServer(t)
	rr := do(t, mux, http.MethodGet, "/api/plan", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out PlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 10, out.Branches)
	require.Len(t, out.Weeks, 6)
	assert.Equal(t, "WEEK 6 BRANCH 9 & 10", out.Weeks[5].Title)
	require.Len(t, sink.generations, 1)
	assert.Equal(t, "api", sink.generations[0].Source)
}

func TestGetPlanBranches(t *testing.T) {
	mux, _ := newServer(t)
	rr := do(t, mux, http.MethodGet, "/api/plan?branches=0", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out PlanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Weeks, 1)
	assert.Equal(t, "WEEK 1 HQ", out.Weeks[0].Title)

	for _, bad := range []string{"-1", "abc", "2.5", "51"} {
		rr = do(t, mux, http.MethodGet, "/api/plan?branches="+bad, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestExportPlan(t *testing.T) {
	mux, sink := newServer(t)
	rr := do(t, mux, http.MethodGet, "/api/plan/export?branches=2&format=csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Riana_Group_Rollout_Plan.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), "WEEK 2 BRANCH 1 & 2")
	require.Len(t, sink.exports, 1)
	assert.NoError(t, sink.exports[0].Err)

	rr = do(t, mux, http.MethodGet, "/api/plan/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIndexRendersHTML(t *testing.T) {
	mux, _ := newServer(t)
	rr := do(t, mux, http.MethodGet, "/?branches=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "WEEK 2 BRANCH 1")
	assert.Empty(t, rr.Header().Get("Content-Disposition"))
}

func TestSessionLifecycle(t *testing.T) {
	mux, sink := newServer(t)
	v := createSession(t, mux, `{"branches":4,"company_name":"Acme"}`)
	assert.Equal(t, "Acme", v.Header.CompanyName)
	assert.Equal(t, "QMS", v.Header.ProjectName)
	assert.Len(t, v.Weeks, 3)
	assert.Equal(t, []int{1}, sink.sessions)

	base := "/api/sessions/" + v.ID
	rr := do(t, mux, http.MethodPut, base+"/weeks/3/date-range", `{"date_range":"17th - 22nd March"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, mux, http.MethodPost, base+"/weeks/2/toggle?color="+url.QueryEscape("#C00000"), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got session.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []palette.Color{palette.GoLive}, got.Hidden[2])
	assert.Equal(t, "17th - 22nd March", got.DateRanges[3])
	goLive := got.Weeks[1].Rows[3]
	require.Equal(t, rollout.ActivityGoLive, goLive.Activity)
	assert.False(t, goLive.Cells[1].Painted)

	rr = do(t, mux, http.MethodGet, base+"/search?q=march", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var weeks []rollout.WeekData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &weeks))
	require.Len(t, weeks, 1)
	assert.Equal(t, 3, weeks[0].WeekNumber)

	rr = do(t, mux, http.MethodGet, base+"/search?q=zzz", "")
	assert.Equal(t, "[]\n", rr.Body.String())

	rr = do(t, mux, http.MethodGet, base+"/export?format=text", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "17th - 22nd March")
	assert.Equal(t, `attachment; filename="Acme_Rollout_Plan.txt"`, rr.Header().Get("Content-Disposition"))

	rr = do(t, mux, http.MethodPut, base+"/config", `{"branches":2}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got = session.View{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Weeks, 2)
	assert.Equal(t, "Acme", got.Header.CompanyName)
	assert.Empty(t, got.DateRanges)

	rr = do(t, mux, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, mux, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, []int{1, 0}, sink.sessions)
}

func TestSessionErrors(t *testing.T) {
	mux, _ := newServer(t)
	rr := do(t, mux, http.MethodPost, "/api/sessions", `{"branches":2.5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, mux, http.MethodPost, "/api/sessions", `{"branches":-4}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, mux, http.MethodPost, "/api/sessions", `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	v := createSession(t, mux, "")
	assert.Len(t, v.Weeks, 6)
	base := "/api/sessions/" + v.ID

	cases := []struct {
		method, target, body string
		status               int
	}{
		{http.MethodPut, base + "/weeks/x/date-range", `{"date_range":"a"}`, http.StatusBadRequest},
		{http.MethodPut, base + "/weeks/9/date-range", `{"date_range":"a"}`, http.StatusNotFound},
		{http.MethodPut, base + "/weeks/1/date-range", `nope`, http.StatusBadRequest},
		{http.MethodPost, base + "/weeks/1/toggle?color=pink", "", http.StatusBadRequest},
		{http.MethodPost, base + "/weeks/1/toggle?color=HANDOVER", "", http.StatusBadRequest},
		{http.MethodGet, base + "/export?format=doc", "", http.StatusBadRequest},
		{http.MethodGet, "/api/sessions/missing/export", "", http.StatusNotFound},
		{http.MethodPut, "/api/sessions/missing/config", `{}`, http.StatusNotFound},
		{http.MethodDelete, "/api/sessions/missing", "", http.StatusNotFound},
		{http.MethodPatch, base, "", http.StatusMethodNotAllowed},
	}
	for _, c := range cases {
		rr := do(t, mux, c.method, c.target, c.body)
		assert.Equal(t, c.status, rr.Code, "%s %s: %s", c.method, c.target, rr.Body.String())
	}
}

func TestPageLayoutEndpoint(t *testing.T) {
	mux, _ := newServer(t)
	rr := do(t, mux, http.MethodGet, "/api/plan/pages?width=1000&height=3000", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var l export.Layout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	assert.InDelta(t, 630.0, l.ImageHeightMM, 1e-9)
	require.Len(t, l.Pages, 3)
	assert.InDelta(t, -594.0, l.Pages[2].OffsetMM, 1e-9)

	for _, q := range []string{"", "width=10", "width=0&height=10", "width=a&height=1"} {
		rr = do(t, mux, http.MethodGet, "/api/plan/pages?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestPartialConfigUpdatesKeepOtherFields(t *testing.T) {
	mux, _ := newServer(t)
	v := createSession(t, mux, `{"branches":2}`)
	base := "/api/sessions/" + v.ID

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			do(t, mux, http.MethodPut, base+"/config", `{"company_name":"Acme"}`)
		}()
		go func() {
			defer wg.Done()
			do(t, mux, http.MethodPut, base+"/config", `{"project_name":"Pilot"}`)
		}()
	}
	wg.Wait()

	rr := do(t, mux, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got session.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got.Header.CompanyName)
	assert.Equal(t, "Pilot", got.Header.ProjectName)
	assert.Equal(t, 2, got.Branches)
}
