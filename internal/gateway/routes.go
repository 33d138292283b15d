package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/soyeahso/finsight/internal/domain"
)

// queryCallTimeout caps a single query fan-out from the gateway's side.
const queryCallTimeout = 2 * time.Minute

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up all JSON-RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("agents.list", s.rpcAgentsList)
	s.Handle("query.run", s.rpcQueryRun)
	s.Handle("history.list", s.rpcHistoryList)
}

// queryParams is the request body of POST /api/query and the params of
// the query.run RPC method.
type queryParams struct {
	Text     string `json:"text"`
	Mode     string `json:"mode"`
	Language string `json:"language,omitempty"`
	Stream   bool   `json:"stream,omitempty"`
}

func (p queryParams) toQuery() (domain.Query, error) {
	if p.Text == "" {
		return domain.Query{}, errors.New("text is required")
	}
	mode, err := domain.ParseMode(p.Mode)
	if err != nil {
		return domain.Query{}, err
	}
	return domain.Query{Text: p.Text, Mode: mode, Language: p.Language}, nil
}

// handleQuery runs a query synchronously over plain HTTP.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if auth := AuthorizeBearer(s.auth, r.Header.Get("Authorization")); !auth.OK {
		writeJSONError(w, http.StatusUnauthorized, auth.Reason)
		return
	}
	if s.runner == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "no query runner configured")
		return
	}

	var p queryParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, err := p.toQuery()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryCallTimeout)
	defer cancel()

	result, err := s.runner.Run(ctx, q)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.recordHistory(result)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleHistory lists recent queries over plain HTTP.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if auth := AuthorizeBearer(s.auth, r.Header.Get("Authorization")); !auth.OK {
		writeJSONError(w, http.StatusUnauthorized, auth.Reason)
		return
	}
	if s.history == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	limit := s.cfg.History.Limit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"queries": results})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Built-in RPC handlers

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(HealthResponse{
		Status:  "ok",
		Version: s.version,
		Clients: s.clients.Count(),
		Agents:  s.agents,
	})
}

func (s *Server) rpcAgentsList(rc *RequestContext) {
	agents := s.agents
	if agents == nil {
		agents = []string{}
	}
	rc.Respond(map[string]any{"agents": agents})
}

func (s *Server) rpcQueryRun(rc *RequestContext) {
	if s.runner == nil {
		rc.RespondError("unavailable", "no query runner configured")
		return
	}

	var p queryParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}

	q, err := p.toQuery()
	if err != nil {
		var invalidErr *domain.InvalidModeError
		if errors.As(err, &invalidErr) {
			rc.RespondError("invalid_mode", err.Error())
			return
		}
		rc.RespondError("invalid_params", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryCallTimeout)
	defer cancel()

	var observer func(domain.AgentResponse)
	if p.Stream {
		requestID := rc.Frame.ID
		observer = func(resp domain.AgentResponse) {
			seq := s.eventSeq.Add(1)
			rc.Client.SendEvent("query.agent", map[string]any{
				"requestId": requestID,
				"response":  resp,
			}, seq)
		}
	}

	result, err := s.runner.RunWithObserver(ctx, q, observer)
	if err != nil {
		rc.RespondError("query_error", err.Error())
		return
	}
	s.recordHistory(result)

	rc.Respond(result)
}

type historyListParams struct {
	Limit int `json:"limit,omitempty"`
}

func (s *Server) rpcHistoryList(rc *RequestContext) {
	if s.history == nil {
		rc.RespondError("unavailable", "history is disabled")
		return
	}

	var p historyListParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	limit := p.Limit
	if limit <= 0 {
		limit = s.cfg.History.Limit
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := s.history.Recent(ctx, limit)
	if err != nil {
		rc.RespondError("history_error", err.Error())
		return
	}
	rc.Respond(map[string]any{"queries": results})
}

// recordHistory persists a completed query, logging instead of failing
// the request when the store errors.
func (s *Server) recordHistory(result *domain.AggregatedResult) {
	if s.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.history.Record(ctx, result); err != nil {
		s.log.Warn().Err(err).Str("queryId", result.Query.ID).Msg("failed to record history")
	}
}
