package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"marketbot/pkg/apperr"
	"marketbot/pkg/models"
	"marketbot/service"
)

func listingID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}

type authRequest struct {
	InitData string `json:"init_data"`
}

type authResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InitData == "" {
		s.writeError(w, apperr.ErrNotAuthenticated)
		return
	}

	user, token, err := s.svc.User().Authenticate(r.Context(), req.InitData)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, authResponse{Success: true, User: user, Token: token})
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var input service.CreateListingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	listing, err := s.svc.Listing().Create(r.Context(), userIDFrom(r.Context()), input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"listing_id": listing.ID,
	})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	detail, err := s.svc.Listing().Get(r.Context(), id, userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.svc.Listing().Delete(r.Context(), id, userIDFrom(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMyListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.svc.Listing().MyListings(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if listings == nil {
		listings = []*models.Listing{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"listings": listings})
}

func (s *Server) handlePublishListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.svc.Listing().Publish(r.Context(), id, userIDFrom(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCloseListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.svc.Listing().Close(r.Context(), id, userIDFrom(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type bidRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message"`
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	bid, err := s.svc.Bid().Place(r.Context(), id, userIDFrom(r.Context()), req.Amount, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"bid_id":  bid.ID,
	})
}

func (s *Server) handleUploadPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(s.cfg.UploadMaxBytes); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid multipart body"})
		return
	}

	var uploads []service.Upload
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				s.writeJSON(w, http.StatusBadRequest, errorPayload{Error: "unreadable upload"})
				return
			}
			defer file.Close()
			uploads = append(uploads, service.Upload{Name: header.Filename, Reader: file})
		}
	}

	photos, err := s.svc.Listing().AddPhotos(r.Context(), id, userIDFrom(r.Context()), uploads)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if photos == nil {
		photos = []*models.ListingPhoto{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"photos":  photos,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.stg.GetPool().Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unreachable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
