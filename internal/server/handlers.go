package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/market-dashboard/internal/auth"
	"github.com/sells-group/market-dashboard/internal/derive"
	"github.com/sells-group/market-dashboard/internal/model"
)

const sessionHeader = "X-Session-Token"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func sessionToken(r *http.Request) string {
	return r.Header.Get(sessionHeader)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filterFromQuery builds a FilterState from query params. The literal "ALL"
// is accepted as "no constraint" for parity with the select widgets.
func filterFromQuery(r *http.Request) model.FilterState {
	q := r.URL.Query()
	norm := func(key string) string {
		v := q.Get(key)
		if v == "ALL" {
			return ""
		}
		return v
	}
	return model.FilterState{
		Tier:        model.Tier(norm("tier")),
		UnmetNeed:   norm("unmet_need"),
		Competition: norm("competition"),
		MarketEntry: norm("market_entry"),
		Search:      q.Get("q"),
	}
}

func (s *Server) handleListCounties(w http.ResponseWriter, r *http.Request) {
	filtered := derive.Filter(s.counties, filterFromQuery(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"counties":    filtered,
		"shown_count": len(filtered),
		"total_count": len(s.counties),
	})
}

func (s *Server) handleGetCounty(w http.ResponseWriter, r *http.Request) {
	rank, err := strconv.Atoi(chi.URLParam(r, "rank"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rank must be an integer")
		return
	}
	county, ok := derive.ByRank(s.counties, rank)
	if !ok {
		writeError(w, http.StatusNotFound, "county not found")
		return
	}
	writeJSON(w, http.StatusOK, county)
}

func (s *Server) handleTierStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"distribution": derive.TierDistribution(s.counties),
		"populations":  derive.TierPopulations(s.counties),
	})
}

func (s *Server) handleOpportunityStats(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, derive.TopOpportunity(s.counties, limit))
}

func (s *Server) handleInvestmentStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, derive.InvestmentBreakdown(s.counties))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, derive.Summarize(s.counties))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.gate.Login(r.Context(), clientKey(r), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		// Generic by design: never hint at which field was wrong.
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	case err != nil:
		zap.L().Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.controllerFor(sess.Token).MarkLoggedIn()
	writeJSON(w, http.StatusOK, map[string]string{
		"token": sess.Token,
		"auth":  string(model.AuthLoggedIn),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token != "" {
		if err := s.gate.Logout(r.Context(), token); err != nil {
			zap.L().Error("logout failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "logout failed")
			return
		}
		s.dropController(token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"auth": string(model.AuthLoggedOut)})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	ok, err := s.gate.Check(r.Context(), token)
	if err != nil {
		zap.L().Error("session check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session check failed")
		return
	}

	state := model.AuthLoggedOut
	if ok {
		c := s.controllerFor(token)
		c.ResolveSession(true)
		state = c.AuthState()
	}
	writeJSON(w, http.StatusOK, map[string]string{"auth": string(state)})
}

// requireSession gates the stateful view endpoints on a live session marker.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.gate.Check(r.Context(), sessionToken(r))
		if err != nil {
			zap.L().Error("session check failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "session check failed")
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleViewSnapshot(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(sessionToken(r))
	c.ResolveSession(true)
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// handlePatchFilters replaces only the filter fields present in the body.
// The literal "ALL" (or an explicit empty string) removes that constraint,
// matching the select-widget semantics.
func (s *Server) handlePatchFilters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier        *string `json:"tier"`
		UnmetNeed   *string `json:"unmet_need"`
		Competition *string `json:"competition"`
		MarketEntry *string `json:"market_entry"`
		Search      *string `json:"search"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	norm := func(v string) string {
		if v == "ALL" {
			return ""
		}
		return v
	}

	c := s.controllerFor(sessionToken(r))
	if req.Tier != nil {
		c.SetTier(model.Tier(norm(*req.Tier)))
	}
	if req.UnmetNeed != nil {
		c.SetUnmetNeed(norm(*req.UnmetNeed))
	}
	if req.Competition != nil {
		c.SetCompetition(norm(*req.Competition))
	}
	if req.MarketEntry != nil {
		c.SetMarketEntry(norm(*req.MarketEntry))
	}
	if req.Search != nil {
		c.SetSearch(*req.Search)
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(sessionToken(r))
	c.ClearFilters()
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CountyRank *int            `json:"county_rank"`
		StatCard   *model.StatCard `json:"stat_card"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CountyRank == nil && req.StatCard == nil {
		writeError(w, http.StatusBadRequest, "county_rank or stat_card required")
		return
	}

	c := s.controllerFor(sessionToken(r))
	if req.CountyRank != nil {
		if err := c.SelectCounty(*req.CountyRank); err != nil {
			writeError(w, http.StatusNotFound, "county not found")
			return
		}
	}
	if req.StatCard != nil {
		if err := c.SelectStatCard(*req.StatCard); err != nil {
			writeError(w, http.StatusBadRequest, "unknown stat card")
			return
		}
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// handleDeleteSelection closes one panel slot: ?slot=county or ?slot=card.
func (s *Server) handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	c := s.controllerFor(sessionToken(r))
	switch slot := r.URL.Query().Get("slot"); slot {
	case "county":
		c.ClearCountySelection()
	case "card":
		c.ClearStatCardSelection()
	default:
		writeError(w, http.StatusBadRequest, "slot must be county or card")
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// clientKey scopes login rate limiting to the remote host. The ephemeral
// port churns per connection and would give every reconnect a fresh bucket.
// chi's RealIP middleware is not used because the service is expected to sit
// directly on the listener.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
