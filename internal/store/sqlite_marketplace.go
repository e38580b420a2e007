package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/model"
)

func (s *SQLiteStore) CreateDealer(ctx context.Context, d *model.Dealer) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dealers (id, name, email, phone, city, state, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Email, d.Phone, d.City, d.State, d.CreatedAt,
	)
	if isSQLiteUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "sqlite: insert dealer")
}

func (s *SQLiteStore) GetDealer(ctx context.Context, id string) (*model.Dealer, error) {
	var d model.Dealer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, city, state, created_at FROM dealers WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.City, &d.State, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get dealer")
	}
	return &d, nil
}

func (s *SQLiteStore) ListDealers(ctx context.Context) ([]model.Dealer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, city, state, created_at FROM dealers ORDER BY name ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list dealers")
	}
	defer rows.Close()

	var dealers []model.Dealer
	for rows.Next() {
		var d model.Dealer
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.City, &d.State, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dealer")
		}
		dealers = append(dealers, d)
	}
	return dealers, eris.Wrap(rows.Err(), "sqlite: list dealers iterate")
}

func (s *SQLiteStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Status == "" {
		v.Status = model.VehiclePending
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, dealer_id, vin, make, model, year, price, mileage, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.DealerID, v.VIN, v.Make, v.Model, v.Year, v.Price, v.Mileage,
		string(v.Status), now, now,
	)
	if isSQLiteUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "sqlite: insert vehicle")
}

func (s *SQLiteStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	var v model.Vehicle
	err := s.db.QueryRowContext(ctx,
		`SELECT id, dealer_id, vin, make, model, year, price, mileage, status, created_at, updated_at
		 FROM vehicles WHERE id = ?`, id,
	).Scan(&v.ID, &v.DealerID, &v.VIN, &v.Make, &v.Model, &v.Year, &v.Price,
		&v.Mileage, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get vehicle")
	}
	return &v, nil
}

func (s *SQLiteStore) ListVehicles(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	query := `SELECT id, dealer_id, vin, make, model, year, price, mileage, status, created_at, updated_at
	          FROM vehicles WHERE 1=1`
	var args []any

	if filter.DealerID != "" {
		query += ` AND dealer_id = ?`
		args = append(args, filter.DealerID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list vehicles")
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.DealerID, &v.VIN, &v.Make, &v.Model, &v.Year,
			&v.Price, &v.Mileage, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan vehicle")
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, eris.Wrap(rows.Err(), "sqlite: list vehicles iterate")
}

func (s *SQLiteStore) UpdateVehicleStatus(ctx context.Context, id string, to model.VehicleStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	var from model.VehicleStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM vehicles WHERE id = ?`, id).Scan(&from)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: get vehicle status %s", id)
	}

	if !model.ValidVehicleTransition(from, to) {
		return eris.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE vehicles SET status = ?, updated_at = ? WHERE id = ?`,
		string(to), time.Now().UTC(), id,
	); err != nil {
		return eris.Wrapf(err, "sqlite: update vehicle status %s", id)
	}

	// Reverting a sale releases the listing: the open transaction from the
	// redemption is canceled.
	if from == model.VehicleSold && to == model.VehicleActive {
		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET status = ? WHERE vehicle_id = ? AND status = ?`,
			string(model.TransactionCanceled), id, string(model.TransactionOpen),
		); err != nil {
			return eris.Wrapf(err, "sqlite: cancel open transaction for vehicle %s", id)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit status update")
}

func (s *SQLiteStore) CreateBuyCode(ctx context.Context, bc *model.BuyCode) error {
	if bc.ID == "" {
		bc.ID = uuid.New().String()
	}
	bc.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO buy_codes (id, vehicle_id, code, redeemed, expires_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		bc.ID, bc.VehicleID, bc.Code, bc.Redeemed, bc.ExpiresAt.UTC(), bc.CreatedAt,
	)
	if isSQLiteUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "sqlite: insert buy code")
}

func (s *SQLiteStore) RedeemBuyCode(ctx context.Context, code, buyerName, buyerEmail string) (*model.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	var bc model.BuyCode
	err = tx.QueryRowContext(ctx,
		`SELECT id, vehicle_id, code, redeemed, expires_at FROM buy_codes WHERE code = ?`, code,
	).Scan(&bc.ID, &bc.VehicleID, &bc.Code, &bc.Redeemed, &bc.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get buy code")
	}

	if bc.Redeemed {
		return nil, eris.New("sqlite: buy code already redeemed")
	}
	if time.Now().UTC().After(bc.ExpiresAt) {
		return nil, eris.New("sqlite: buy code expired")
	}

	var status model.VehicleStatus
	var price int64
	err = tx.QueryRowContext(ctx,
		`SELECT status, price FROM vehicles WHERE id = ?`, bc.VehicleID,
	).Scan(&status, &price)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get vehicle %s", bc.VehicleID)
	}
	if status != model.VehicleActive {
		return nil, eris.Errorf("sqlite: vehicle %s not active", bc.VehicleID)
	}

	now := time.Now().UTC()
	txn := &model.Transaction{
		ID:         uuid.New().String(),
		VehicleID:  bc.VehicleID,
		BuyCodeID:  bc.ID,
		BuyerName:  buyerName,
		BuyerEmail: buyerEmail,
		Amount:     price,
		Status:     model.TransactionOpen,
		CreatedAt:  now,
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, vehicle_id, buy_code_id, buyer_name, buyer_email, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.VehicleID, txn.BuyCodeID, txn.BuyerName, txn.BuyerEmail,
		txn.Amount, string(txn.Status), now,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert transaction")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE buy_codes SET redeemed = 1 WHERE id = ?`, bc.ID,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: mark buy code redeemed")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE vehicles SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.VehicleSold), now, bc.VehicleID,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: mark vehicle sold")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit redemption")
	}
	return txn, nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, vehicleID string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vehicle_id, buy_code_id, buyer_name, buyer_email, amount, status, created_at
		 FROM transactions WHERE vehicle_id = ? ORDER BY created_at DESC`, vehicleID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list transactions")
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.VehicleID, &t.BuyCodeID, &t.BuyerName,
			&t.BuyerEmail, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan transaction")
		}
		txns = append(txns, t)
	}
	return txns, eris.Wrap(rows.Err(), "sqlite: list transactions iterate")
}

func (s *SQLiteStore) CreateOffer(ctx context.Context, o *model.Offer) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = model.OfferPending
	}
	o.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offers (id, vehicle_id, name, email, amount, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.VehicleID, o.Name, o.Email, o.Amount, string(o.Status), o.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert offer")
}

func (s *SQLiteStore) ListOffers(ctx context.Context, filter OfferFilter) ([]model.Offer, error) {
	query := `SELECT id, vehicle_id, name, email, amount, status, created_at FROM offers WHERE 1=1`
	var args []any

	if filter.VehicleID != "" {
		query += ` AND vehicle_id = ?`
		args = append(args, filter.VehicleID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list offers")
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(&o.ID, &o.VehicleID, &o.Name, &o.Email, &o.Amount,
			&o.Status, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan offer")
		}
		offers = append(offers, o)
	}
	return offers, eris.Wrap(rows.Err(), "sqlite: list offers iterate")
}

func (s *SQLiteStore) UpdateOfferStatus(ctx context.Context, id string, status model.OfferStatus, note string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE offers SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update offer status %s", id)
	}
	if err := checkRowsAffected(res, "offer", id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO offer_activity (id, offer_id, action, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), id, string(status), note, time.Now().UTC(),
	); err != nil {
		return eris.Wrap(err, "sqlite: insert offer activity")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit offer update")
}

func (s *SQLiteStore) ListOfferActivity(ctx context.Context, offerID string) ([]model.OfferActivity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, offer_id, action, note, created_at FROM offer_activity
		 WHERE offer_id = ? ORDER BY created_at ASC`, offerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list offer activity")
	}
	defer rows.Close()

	var entries []model.OfferActivity
	for rows.Next() {
		var e model.OfferActivity
		if err := rows.Scan(&e.ID, &e.OfferID, &e.Action, &e.Note, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan offer activity")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list offer activity iterate")
}
