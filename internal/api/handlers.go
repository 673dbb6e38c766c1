package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/pointskeeper/pointskeeper/internal/tracker"
)

// queryInt64 parses a required int64 query parameter.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// pathInt64 parses an int64 path segment registered as {name}.
func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func (s *Server) handleSeasonLeaderboard(w http.ResponseWriter, r *http.Request) {
	communityID, err := queryInt64(r, "community_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := s.leaderboards.Season(r.Context(), communityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChannelLeaderboard(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	entries, err := s.leaderboards.Channel(r.Context(), channelID)
	if err != nil {
		if errors.Is(err, tracker.ErrChannelNotConfigured) {
			writeError(w, http.StatusNotFound, "channel not configured", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"channel_id": channelID,
		"entries":    entries,
	})
}

func (s *Server) handleUserSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	communityID, err := queryInt64(r, "community_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := s.summary.UserSummary(r.Context(), communityID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	communityID, err := queryInt64(r, "community_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := s.channels.List(r.Context(), communityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// configureChannelRequest is the PUT body for channel configuration.
type configureChannelRequest struct {
	CommunityID int64  `json:"community_id"`
	PointValue  int64  `json:"point_value"`
	Name        string `json:"name"`
}

func (s *Server) handleConfigureChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req configureChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.CommunityID == 0 {
		writeError(w, http.StatusBadRequest, "missing community_id", nil)
		return
	}

	if err := s.channels.Configure(r.Context(), req.CommunityID, channelID, req.PointValue, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"channel_id":  channelID,
		"point_value": req.PointValue,
	})
}

func (s *Server) handleRemoveChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	communityID, err := queryInt64(r, "community_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.channels.Remove(r.Context(), communityID, channelID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearChannelPoints(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.channels.ClearPoints(r.Context(), channelID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportPoints(w http.ResponseWriter, r *http.Request) {
	communityID, err := queryInt64(r, "community_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="points.csv"`)
	if err := s.export.Points(r.Context(), communityID, w); err != nil {
		// Headers are already written; the truncated body signals failure.
		log.Printf("export points failed: %v", err)
	}
}
