package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

func (s *Server) dealerRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requireAdmin)
	r.Get("/", s.handleListDealers)
	r.Get("/{id}", s.handleGetDealer)
	r.Post("/", s.handleCreateDealer)
	return r
}

func (s *Server) vehicleRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleListVehicles)
	r.Get("/{id}", s.handleGetVehicle)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/", s.handleCreateVehicle)
		r.Post("/{id}/status", s.handleVehicleStatus)
		r.Post("/{id}/buy-codes", s.handleCreateBuyCode)
		r.Get("/{id}/transactions", s.handleListTransactions)
	})
	return r
}

func (s *Server) offerRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.handleCreateOffer)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/", s.handleListOffers)
		r.Post("/{id}/status", s.handleOfferStatus)
		r.Get("/{id}/activity", s.handleListOfferActivity)
	})
	return r
}

func (s *Server) handleListDealers(w http.ResponseWriter, r *http.Request) {
	dealers, err := s.store.ListDealers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing dealers failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dealers": dealers, "count": len(dealers)})
}

func (s *Server) handleGetDealer(w http.ResponseWriter, r *http.Request) {
	dealer, err := s.store.GetDealer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err, "dealer")
		return
	}
	writeJSON(w, http.StatusOK, dealer)
}

func (s *Server) handleCreateDealer(w http.ResponseWriter, r *http.Request) {
	var dealer model.Dealer
	if err := decodeJSON(r, &dealer); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dealer.Name == "" || dealer.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if err := s.store.CreateDealer(r.Context(), &dealer); err != nil {
		s.respondStoreError(w, err, "dealer")
		return
	}
	writeJSON(w, http.StatusCreated, dealer)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.VehicleFilter{
		DealerID: q.Get("dealer_id"),
		Status:   model.VehicleStatus(q.Get("status")),
	}
	filter.Limit, filter.Offset = parsePage(r)

	vehicles, err := s.store.ListVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing vehicles failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "count": len(vehicles)})
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.store.GetVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, err, "vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var vehicle model.Vehicle
	if err := decodeJSON(r, &vehicle); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if vehicle.DealerID == "" || vehicle.VIN == "" || vehicle.Make == "" || vehicle.Model == "" {
		writeError(w, http.StatusBadRequest, "dealer_id, vin, make and model are required")
		return
	}
	if err := s.store.CreateVehicle(r.Context(), &vehicle); err != nil {
		s.respondStoreError(w, err, "vehicle")
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

type statusRequest struct {
	Status string `json:"status"`
}

// handleVehicleStatus drives the listing lifecycle. Illegal transitions
// come back as 409.
func (s *Server) handleVehicleStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to := model.VehicleStatus(req.Status)
	if to != model.VehiclePending && to != model.VehicleActive && to != model.VehicleSold {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.UpdateVehicleStatus(r.Context(), id, to); err != nil {
		s.respondStoreError(w, err, "vehicle")
		return
	}
	vehicle, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

type buyCodeRequest struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) handleCreateBuyCode(w http.ResponseWriter, r *http.Request) {
	var req buyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	expires := time.Now().Add(30 * 24 * time.Hour)
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "expires_at must be RFC 3339")
			return
		}
		expires = parsed
	}

	bc := model.BuyCode{
		VehicleID: chi.URLParam(r, "id"),
		Code:      req.Code,
		ExpiresAt: expires,
	}
	if err := s.store.CreateBuyCode(r.Context(), &bc); err != nil {
		s.respondStoreError(w, err, "buy code")
		return
	}
	writeJSON(w, http.StatusCreated, bc)
}

type redeemRequest struct {
	Code       string `json:"code"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}

// handleRedeemBuyCode redeems a purchase code: one transaction is recorded
// and the vehicle goes to sold, atomically. A redeemed, expired or
// wrong-state code is a 409.
func (s *Server) handleRedeemBuyCode(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" || req.BuyerName == "" || req.BuyerEmail == "" {
		writeError(w, http.StatusBadRequest, "code, buyer_name and buyer_email are required")
		return
	}

	txn, err := s.store.RedeemBuyCode(r.Context(), req.Code, req.BuyerName, req.BuyerEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "buy code not found")
			return
		}
		writeError(w, http.StatusConflict, "buy code cannot be redeemed")
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.store.ListTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing transactions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns, "count": len(txns)})
}

type offerRequest struct {
	VehicleID string `json:"vehicle_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
}

// handleCreateOffer takes a public bid on an active vehicle.
func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VehicleID == "" || req.Name == "" || req.Email == "" || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "vehicle_id, name, email and a positive amount are required")
		return
	}

	vehicle, err := s.store.GetVehicle(r.Context(), req.VehicleID)
	if err != nil {
		s.respondStoreError(w, err, "vehicle")
		return
	}
	if vehicle.Status != model.VehicleActive {
		writeError(w, http.StatusConflict, "vehicle is not accepting offers")
		return
	}

	offer := model.Offer{
		VehicleID: req.VehicleID,
		Name:      req.Name,
		Email:     req.Email,
		Amount:    req.Amount,
	}
	if err := s.store.CreateOffer(r.Context(), &offer); err != nil {
		s.respondStoreError(w, err, "offer")
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.OfferFilter{
		VehicleID: q.Get("vehicle_id"),
		Status:    model.OfferStatus(q.Get("status")),
	}
	filter.Limit, filter.Offset = parsePage(r)

	offers, err := s.store.ListOffers(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing offers failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": offers, "count": len(offers)})
}

type offerStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (s *Server) handleOfferStatus(w http.ResponseWriter, r *http.Request) {
	var req offerStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := model.OfferStatus(req.Status)
	switch status {
	case model.OfferPending, model.OfferAccepted, model.OfferDeclined, model.OfferWithdrawn:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if err := s.store.UpdateOfferStatus(r.Context(), chi.URLParam(r, "id"), status, req.Note); err != nil {
		s.respondStoreError(w, err, "offer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (s *Server) handleListOfferActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.store.ListOfferActivity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing offer activity failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": activity, "count": len(activity)})
}
