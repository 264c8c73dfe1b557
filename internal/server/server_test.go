package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-dashboard/internal/auth"
	"github.com/sells-group/market-dashboard/internal/derive"
	"github.com/sells-group/market-dashboard/internal/model"
	"github.com/sells-group/market-dashboard/internal/session"
)

var testCreds = auth.Credentials{Username: "admin", Password: "vyrite2025"}

func testCounties() []model.County {
	return []model.County{
		{Rank: 1, Name: "Deschutes", Tier: model.Tier1, Population: 212141, OpportunityScore: 9.2,
			UnmetNeed: "HIGH", CompetitionLevel: "LOW", MarketEntryEase: "EASY",
			ProviderFullName: "Deschutes County IDD Program", InvestmentLevel: "$250K-$500K"},
		{Rank: 2, Name: "Marion", Tier: model.Tier1, Population: 348669, OpportunityScore: 8.9,
			UnmetNeed: "HIGH", CompetitionLevel: "LOW-MOD", MarketEntryEase: "EASY-MOD",
			ProviderFullName: "Marion County DD Services", InvestmentLevel: "$250K-$500K"},
		{Rank: 3, Name: "Multnomah", Tier: model.Tier4, Population: 808865, OpportunityScore: 3.6,
			UnmetNeed: "LOW", CompetitionLevel: "VERY HIGH", MarketEntryEase: "VERY HARD",
			ProviderFullName: "Multnomah County IDD Services", InvestmentLevel: "$500K+"},
	}
}

func newTestRouter() http.Handler {
	gate := auth.NewGate(testCreds, session.NewMemory(), 0)
	return Router(Options{
		Counties:      testCounties(),
		Gate:          gate,
		Credentials:   testCreds,
		Realm:         "Secure Area",
		ExcludedPaths: []string{"/healthz", "/assets/*", "/favicon.ico"},
		CORSOrigins:   []string{"*"},
	})
}

func doReq(t *testing.T, h http.Handler, method, path string, body any, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func withBasicAuth(req *http.Request) {
	req.Header.Set("Authorization",
		"Basic "+base64.StdEncoding.EncodeToString([]byte("admin:vyrite2025")))
}

func TestRouter_TransportGate(t *testing.T) {
	h := newTestRouter()

	rr := doReq(t, h, http.MethodGet, "/api/counties", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("WWW-Authenticate"), `Basic realm="Secure Area"`)

	rr = doReq(t, h, http.MethodGet, "/api/counties", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer nope")
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doReq(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "health probe bypasses the gate")
}

func TestRouter_StaticExcluded(t *testing.T) {
	h := newTestRouter()

	rr := doReq(t, h, http.MethodGet, "/assets/app.css", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// The root page itself is gated.
	rr = doReq(t, h, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doReq(t, h, http.MethodGet, "/", nil, withBasicAuth)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Oregon I/DD Market Dashboard")
}

func TestListCounties_Filtered(t *testing.T) {
	h := newTestRouter()

	rr := doReq(t, h, http.MethodGet, "/api/counties?tier=TIER+1&q=marion", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Counties   []model.County `json:"counties"`
		ShownCount int            `json:"shown_count"`
		TotalCount int            `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Counties, 1)
	assert.Equal(t, "Marion", resp.Counties[0].Name)
	assert.Equal(t, 1, resp.ShownCount)
	assert.Equal(t, 3, resp.TotalCount)
}

func TestListCounties_AllSentinel(t *testing.T) {
	h := newTestRouter()

	rr := doReq(t, h, http.MethodGet, "/api/counties?tier=ALL", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		ShownCount int `json:"shown_count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ShownCount)
}

func TestGetCounty(t *testing.T) {
	h := newTestRouter()

	rr := doReq(t, h, http.MethodGet, "/api/counties/2", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)
	var county model.County
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &county))
	assert.Equal(t, "Marion", county.Name)

	rr = doReq(t, h, http.MethodGet, "/api/counties/99", nil, withBasicAuth)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doReq(t, h, http.MethodGet, "/api/counties/abc", nil, withBasicAuth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStats(t *testing.T) {
	h := newTestRouter()

	rr := doReq(t, h, http.MethodGet, "/api/stats/tiers", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)
	var tiers struct {
		Distribution []derive.TierCount `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tiers))
	require.Len(t, tiers.Distribution, 4)
	assert.Equal(t, 2, tiers.Distribution[0].Count)

	rr = doReq(t, h, http.MethodGet, "/api/stats/opportunity?limit=2", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)
	var scores []derive.ScoreEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scores))
	require.Len(t, scores, 2)
	assert.Equal(t, "Deschutes", scores[0].County)

	rr = doReq(t, h, http.MethodGet, "/api/stats/opportunity?limit=-1", nil, withBasicAuth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doReq(t, h, http.MethodGet, "/api/stats/summary", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary derive.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalCounties)
	assert.Equal(t, 2, summary.HighPriorityCount)

	rr = doReq(t, h, http.MethodGet, "/api/stats/investment", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)
	var groups []derive.InvestmentGroup
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"Deschutes", "Marion"}, groups[0].Counties)
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := doReq(t, h, http.MethodPost, "/api/login",
		map[string]string{"username": "admin", "password": "vyrite2025"}, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	assert.Equal(t, string(model.AuthLoggedIn), resp["auth"])
	return resp["token"]
}

func TestLoginLogoutFlow(t *testing.T) {
	h := newTestRouter()

	// Bad pair: generic rejection.
	rr := doReq(t, h, http.MethodPost, "/api/login",
		map[string]string{"username": "admin", "password": "wrong"}, withBasicAuth)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid username or password")

	token := login(t, h)

	withSession := func(r *http.Request) {
		withBasicAuth(r)
		r.Header.Set(sessionHeader, token)
	}

	rr = doReq(t, h, http.MethodGet, "/api/session", nil, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), string(model.AuthLoggedIn))

	rr = doReq(t, h, http.MethodPost, "/api/logout", nil, withSession)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doReq(t, h, http.MethodGet, "/api/session", nil, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), string(model.AuthLoggedOut))
}

func TestClientKey_StripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.1.2.3:55001"
	assert.Equal(t, "10.1.2.3", clientKey(req))

	// Unparseable addresses fall back to the raw value.
	req.RemoteAddr = "not-host-port"
	assert.Equal(t, "not-host-port", clientKey(req))
}

func TestLogin_RateLimitSharedAcrossConnections(t *testing.T) {
	h := newTestRouter()

	// Same host reconnecting on fresh ephemeral ports shares one bucket.
	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = doReq(t, h, http.MethodPost, "/api/login",
			map[string]string{"username": "admin", "password": "wrong"},
			func(r *http.Request) {
				withBasicAuth(r)
				r.RemoteAddr = fmt.Sprintf("10.9.9.9:%d", 40000+i)
			})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)

	// A different host is unaffected.
	rr := doReq(t, h, http.MethodPost, "/api/login",
		map[string]string{"username": "admin", "password": "vyrite2025"},
		func(r *http.Request) {
			withBasicAuth(r)
			r.RemoteAddr = "10.9.9.10:40000"
		})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSession_NoToken(t *testing.T) {
	h := newTestRouter()

	rr := doReq(t, h, http.MethodGet, "/api/session", nil, withBasicAuth)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), string(model.AuthLoggedOut))
}

func TestViewEndpoints(t *testing.T) {
	h := newTestRouter()
	token := login(t, h)

	withSession := func(r *http.Request) {
		withBasicAuth(r)
		r.Header.Set(sessionHeader, token)
	}

	// View endpoints demand a live session.
	rr := doReq(t, h, http.MethodGet, "/api/view", nil, withBasicAuth)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doReq(t, h, http.MethodGet, "/api/view", nil, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	var snap struct {
		Auth       model.AuthState `json:"auth"`
		ShownCount int             `json:"shown_count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, model.AuthLoggedIn, snap.Auth)
	assert.Equal(t, 3, snap.ShownCount)

	// Patch one filter; others untouched.
	rr = doReq(t, h, http.MethodPatch, "/api/view/filters",
		map[string]string{"tier": "TIER 1"}, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.ShownCount)

	// "ALL" removes the constraint.
	rr = doReq(t, h, http.MethodPatch, "/api/view/filters",
		map[string]string{"tier": "ALL"}, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 3, snap.ShownCount)

	// Selection slots.
	rr = doReq(t, h, http.MethodPut, "/api/view/selection",
		map[string]any{"county_rank": 1, "stat_card": "high_priority"}, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	var sel struct {
		SelectedRank *int            `json:"selected_rank"`
		SelectedCard *model.StatCard `json:"selected_card"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sel))
	require.NotNil(t, sel.SelectedRank)
	assert.Equal(t, 1, *sel.SelectedRank)
	require.NotNil(t, sel.SelectedCard)

	rr = doReq(t, h, http.MethodPut, "/api/view/selection",
		map[string]any{"county_rank": 99}, withSession)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doReq(t, h, http.MethodDelete, "/api/view/selection?slot=card", nil, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	sel.SelectedRank, sel.SelectedCard = nil, nil
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sel))
	assert.Nil(t, sel.SelectedCard)
	assert.NotNil(t, sel.SelectedRank, "county slot survives clearing the card slot")

	rr = doReq(t, h, http.MethodDelete, "/api/view/selection?slot=bogus", nil, withSession)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Clear-all restores the unfiltered view.
	rr = doReq(t, h, http.MethodPatch, "/api/view/filters",
		map[string]string{"search": "mult"}, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doReq(t, h, http.MethodPost, "/api/view/filters/clear", nil, withSession)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 3, snap.ShownCount)
}
