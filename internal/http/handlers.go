package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/coverdrive/scorebook/internal/cricket"
	"github.com/coverdrive/scorebook/internal/match"
	"github.com/coverdrive/scorebook/internal/scoring"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params match.CreateMatchParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		m, err := s.Matches.CreateMatch(params)
		if err != nil {
			s.writeError(w, err)
			return
		}
		log.Info("Match scheduled", "matchID", m.ID, "home", m.HomeTeamID, "away", m.AwayTeamID)
		s.respondJSON(w, http.StatusCreated, m)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID := r.URL.Query().Get("league_id")
		status := cricket.MatchStatus(r.URL.Query().Get("status"))

		matches, err := s.Matches.ListMatches(leagueID, status)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Matches.GetMatch(r.PathValue("id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, m)
	}
}

type conductTossRequest struct {
	WinnerTeamID string               `json:"winner_team_id"`
	Decision     cricket.TossDecision `json:"decision"`
}

func (s *Server) ConductTossHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req conductTossRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		toss, err := s.Matches.ConductToss(r.PathValue("id"), req.WinnerTeamID, req.Decision)
		if err != nil {
			s.writeError(w, err)
			return
		}
		log.Info("Toss recorded", "matchID", toss.MatchID, "winner", toss.WinnerTeamID, "decision", toss.Decision)
		s.respondJSON(w, http.StatusCreated, toss)
	}
}

func (s *Server) StartMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		matchID := r.PathValue("id")

		m, err := s.Matches.StartMatch(matchID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		toss, err := s.Matches.GetToss(matchID)
		if err != nil {
			log.Warn("Could not load toss for started match", "error", err, "matchID", matchID)
		}
		s.Broadcast.MatchStarted(m, toss, isDryRun)

		log.Info("Match started", "matchID", m.ID)
		s.respondJSON(w, http.StatusOK, m)
	}
}

func (s *Server) CompleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var result match.Result
		if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		m, err := s.Matches.CompleteMatch(r.PathValue("id"), result)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Broadcast.MatchCompleted(m, isDryRun)

		log.Info("Match completed", "matchID", m.ID, "result", m.ResultType)
		s.respondJSON(w, http.StatusOK, m)
	}
}

type startInningsRequest struct {
	BattingTeamID string `json:"batting_team_id"`
	BowlingTeamID string `json:"bowling_team_id"`
	TargetRuns    *int   `json:"target_runs,omitempty"`
}

func (s *Server) StartInningsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var req startInningsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		innings, err := s.Scoring.StartInnings(r.PathValue("id"), req.BattingTeamID, req.BowlingTeamID, req.TargetRuns)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Broadcast.InningsStarted(innings.MatchID, innings, isDryRun)

		log.Info("Innings started", "inningsID", innings.ID, "number", innings.Number)
		s.respondJSON(w, http.StatusCreated, innings)
	}
}

type startOverRequest struct {
	BowlerID string `json:"bowler_id"`
}

func (s *Server) StartOverHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startOverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		over, err := s.Scoring.StartOver(r.PathValue("id"), req.BowlerID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		log.Info("Over started", "overID", over.ID, "number", over.Number, "bowler", over.BowlerID)
		s.respondJSON(w, http.StatusCreated, over)
	}
}

type recordBallRequest struct {
	scoring.BallInput
	Wicket *scoring.WicketInput `json:"wicket,omitempty"`
}

func (s *Server) RecordBallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var req recordBallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		startTime := time.Now()
		result, err := s.Scoring.RecordBall(r.PathValue("id"), req.BallInput, req.Wicket)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Metrics.ObserveScoringDuration(time.Since(startTime).Seconds())

		s.Broadcast.BallRecorded(result.Innings.MatchID, result, isDryRun)
		s.respondJSON(w, http.StatusCreated, result)
	}
}

func (s *Server) UndoLastBallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		startTime := time.Now()
		result, err := s.Scoring.UndoLastBall(r.PathValue("id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Metrics.ObserveScoringDuration(time.Since(startTime).Seconds())

		s.Broadcast.BallUndone(result.Innings.MatchID, result, isDryRun)
		s.respondJSON(w, http.StatusOK, result)
	}
}

type endInningsRequest struct {
	IsDeclared bool `json:"is_declared"`
}

func (s *Server) EndInningsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		var req endInningsRequest
		// An empty body means a plain closure, not an error.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		innings, err := s.Scoring.EndInnings(r.PathValue("id"), req.IsDeclared)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.Broadcast.InningsEnded(innings.MatchID, innings, isDryRun)

		log.Info("Innings ended", "inningsID", innings.ID, "declared", innings.IsDeclared)
		s.respondJSON(w, http.StatusOK, innings)
	}
}

func (s *Server) ScorecardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.Scorecards.GetScorecard(r.PathValue("id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, card)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the scoring error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case cricket.IsValidation(err):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case cricket.IsConflict(err):
		s.respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case cricket.IsNotFound(err):
		s.respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.Error("Unhandled error serving request", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
