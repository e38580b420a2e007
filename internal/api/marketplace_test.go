package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/store"
)

func seedMarketplace(t *testing.T, st *store.SQLiteStore, status model.VehicleStatus) *model.Vehicle {
	t.Helper()
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Peach State Motors", Email: "sales@psm.example.com", City: "Atlanta", State: "GA"}
	require.NoError(t, st.CreateDealer(ctx, dealer))

	vehicle := &model.Vehicle{
		DealerID: dealer.ID,
		VIN:      "1FTFW1E59MFA00001",
		Make:     "Ford",
		Model:    "F-150",
		Year:     2021,
		Price:    4250000,
		Mileage:  32000,
	}
	require.NoError(t, st.CreateVehicle(ctx, vehicle))
	if status != model.VehiclePending {
		require.NoError(t, st.UpdateVehicleStatus(ctx, vehicle.ID, model.VehicleActive))
	}
	if status == model.VehicleSold {
		require.NoError(t, st.UpdateVehicleStatus(ctx, vehicle.ID, model.VehicleSold))
	}
	return vehicle
}

func TestVehicleStatusEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	cookie := adminCookie(t, r)
	vehicle := seedMarketplace(t, st, model.VehiclePending)

	rec := doJSON(t, r, http.MethodPost, "/api/vehicles/"+vehicle.ID+"/status",
		map[string]string{"status": "active"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.VehicleActive, updated.Status)

	// active -> pending is not a legal transition
	rec = doJSON(t, r, http.MethodPost, "/api/vehicles/"+vehicle.ID+"/status",
		map[string]string{"status": "pending"}, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/vehicles/"+vehicle.ID+"/status",
		map[string]string{"status": "scrapped"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVehicleStatusRequiresAdmin(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	vehicle := seedMarketplace(t, st, model.VehiclePending)

	rec := doJSON(t, r, http.MethodPost, "/api/vehicles/"+vehicle.ID+"/status",
		map[string]string{"status": "active"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedeemBuyCodeEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	cookie := adminCookie(t, r)
	vehicle := seedMarketplace(t, st, model.VehicleActive)

	rec := doJSON(t, r, http.MethodPost, "/api/vehicles/"+vehicle.ID+"/buy-codes",
		map[string]string{"code": "GOLDEN-TICKET", "expires_at": time.Now().Add(time.Hour).Format(time.RFC3339)}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/buy-codes/redeem", map[string]string{
		"code":        "GOLDEN-TICKET",
		"buyer_name":  "Pat Buyer",
		"buyer_email": "pat@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var txn model.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txn))
	assert.Equal(t, vehicle.Price, txn.Amount)
	assert.Equal(t, model.TransactionOpen, txn.Status)

	sold, err := st.GetVehicle(context.Background(), vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleSold, sold.Status)

	// second redemption conflicts
	rec = doJSON(t, r, http.MethodPost, "/api/buy-codes/redeem", map[string]string{
		"code":        "GOLDEN-TICKET",
		"buyer_name":  "Pat Buyer",
		"buyer_email": "pat@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/buy-codes/redeem", map[string]string{
		"code":        "NO-SUCH-CODE",
		"buyer_name":  "Pat Buyer",
		"buyer_email": "pat@example.com",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOfferFlow(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	cookie := adminCookie(t, r)
	vehicle := seedMarketplace(t, st, model.VehicleActive)

	rec := doJSON(t, r, http.MethodPost, "/api/offers", map[string]any{
		"vehicle_id": vehicle.ID,
		"name":       "Pat Buyer",
		"email":      "pat@example.com",
		"amount":     4000000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var offer model.Offer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offer))
	assert.Equal(t, model.OfferPending, offer.Status)

	rec = doJSON(t, r, http.MethodPost, "/api/offers/"+offer.ID+"/status",
		map[string]string{"status": "accepted", "note": "meets reserve"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/offers/"+offer.ID+"/activity", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Activity []model.OfferActivity `json:"activity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Activity, 1)
	assert.Equal(t, "accepted", resp.Activity[0].Action)
	assert.Equal(t, "meets reserve", resp.Activity[0].Note)
}

func TestOfferOnPendingVehicleRejected(t *testing.T) {
	srv, st := newTestServer(t)
	r := srv.Router()
	vehicle := seedMarketplace(t, st, model.VehiclePending)

	rec := doJSON(t, r, http.MethodPost, "/api/offers", map[string]any{
		"vehicle_id": vehicle.ID,
		"name":       "Pat Buyer",
		"email":      "pat@example.com",
		"amount":     100,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
