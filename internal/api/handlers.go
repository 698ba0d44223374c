package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type amountRequest struct {
	Amount float64 `json:"amount"`
}

type manualUsageRequest struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	Amount      float64 `json:"amount"`
	NightAmount float64 `json:"night_amount"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "Aquameter Water Optimization Backend",
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	payload, err := s.engine.Metrics()
	if err != nil {
		s.logger.Error("metrics failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	points, err := s.engine.StreamTick()
	if err != nil {
		s.logger.Error("stream tick failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	lines, err := s.engine.Recommendations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"recommendations": lines})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.SetBudget(req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.notifier.Broadcast()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "new_budget": req.Amount})
}

func (s *Server) handleSetWaterLimit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.SetWaterLimit(req.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.notifier.Broadcast()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "new_limit": req.Amount})
}

func (s *Server) handleAddManualUsage(w http.ResponseWriter, r *http.Request) {
	var req manualUsageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.AddManualEntry(req.Date, req.Amount, req.NightAmount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.notifier.Broadcast()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Manual entry added"})
}

func (s *Server) handleDeleteManualUsage(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	found, err := s.engine.DeleteManualEntry(date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	s.notifier.Broadcast()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Record deleted"})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Skip()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.notifier.Broadcast()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"advanced_hours":   res.AdvancedHours,
		"period_completed": res.PeriodCompleted,
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Resume(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.notifier.Broadcast()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "New period started"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	response, err := s.engine.Chat(req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

// handleEvents streams change pings over SSE. Clients re-fetch /metrics on
// every event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			if _, err := w.Write([]byte("event: update\ndata: {}\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
