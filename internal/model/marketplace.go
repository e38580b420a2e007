package model

import "time"

// VehicleStatus is the listing lifecycle state.
type VehicleStatus string

const (
	VehiclePending VehicleStatus = "pending"
	VehicleActive  VehicleStatus = "active"
	VehicleSold    VehicleStatus = "sold"
)

// ValidVehicleTransition reports whether moving from one status to another
// is allowed. Pending listings go active after dealer review; active
// listings sell; a sold listing may revert to active (which cancels the
// open transaction).
func ValidVehicleTransition(from, to VehicleStatus) bool {
	switch from {
	case VehiclePending:
		return to == VehicleActive
	case VehicleActive:
		return to == VehicleSold
	case VehicleSold:
		return to == VehicleActive
	}
	return false
}

// Dealer is a marketplace seller account.
type Dealer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Vehicle is a marketplace listing owned by a dealer.
type Vehicle struct {
	ID        string        `json:"id"`
	DealerID  string        `json:"dealer_id"`
	VIN       string        `json:"vin"`
	Make      string        `json:"make"`
	Model     string        `json:"model"`
	Year      int           `json:"year"`
	Price     int64         `json:"price"`
	Mileage   int           `json:"mileage"`
	Status    VehicleStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BuyCode is a single-use purchase code issued for a vehicle. Redeeming it
// creates a Transaction and marks the vehicle sold.
type BuyCode struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicle_id"`
	Code      string    `json:"code"`
	Redeemed  bool      `json:"redeemed"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TransactionStatus is the settlement state of a sale.
type TransactionStatus string

const (
	TransactionOpen     TransactionStatus = "open"
	TransactionComplete TransactionStatus = "complete"
	TransactionCanceled TransactionStatus = "canceled"
)

// Transaction records a buy-code redemption against a vehicle.
type Transaction struct {
	ID         string            `json:"id"`
	VehicleID  string            `json:"vehicle_id"`
	BuyCodeID  string            `json:"buy_code_id"`
	BuyerName  string            `json:"buyer_name"`
	BuyerEmail string            `json:"buyer_email"`
	Amount     int64             `json:"amount"`
	Status     TransactionStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OfferStatus is the negotiation state of an offer.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferDeclined  OfferStatus = "declined"
	OfferWithdrawn OfferStatus = "withdrawn"
)

// Offer is a buyer's bid on an active vehicle.
type Offer struct {
	ID        string      `json:"id"`
	VehicleID string      `json:"vehicle_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Amount    int64       `json:"amount"`
	Status    OfferStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// OfferActivity is an audit entry for an offer status change or note.
type OfferActivity struct {
	ID        string    `json:"id"`
	OfferID   string    `json:"offer_id"`
	Action    string    `json:"action"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
