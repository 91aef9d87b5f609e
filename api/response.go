package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketbot/pkg/apperr"
	"marketbot/pkg/logger"
)

type errorPayload struct {
	Error  string `json:"error"`
	MinBid string `json:"min_bid,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", logger.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a persistence or programming failure: logged with its
// cause, surfaced as a generic 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var missingField *apperr.MissingFieldError
	var bidTooLow *apperr.BidTooLowError

	switch {
	case errors.Is(err, apperr.ErrNotAuthenticated):
		s.writeJSON(w, http.StatusUnauthorized, errorPayload{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotOwner):
		s.writeJSON(w, http.StatusForbidden, errorPayload{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorPayload{Error: err.Error()})
	case errors.As(err, &bidTooLow):
		s.writeJSON(w, http.StatusBadRequest, errorPayload{
			Error:  bidTooLow.Error(),
			MinBid: bidTooLow.Minimum.StringFixed(2),
		})
	case errors.As(err, &missingField),
		errors.Is(err, apperr.ErrInvalidEndTime),
		errors.Is(err, apperr.ErrInvalidAmount),
		errors.Is(err, apperr.ErrListingNotActive),
		errors.Is(err, apperr.ErrSelfBidNotAllowed),
		errors.Is(err, apperr.ErrInvalidStateTransition):
		s.writeJSON(w, http.StatusBadRequest, errorPayload{Error: err.Error()})
	default:
		s.log.Error("internal error", logger.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal server error"})
	}
}
