package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/captiveadvisors/directory/internal/model"
)

func (s *PostgresStore) CreateDealer(ctx context.Context, d *model.Dealer) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO dealers (id, name, email, phone, city, state, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.Name, d.Email, d.Phone, d.City, d.State, d.CreatedAt,
	)
	if isPostgresUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "postgres: insert dealer")
}

func (s *PostgresStore) GetDealer(ctx context.Context, id string) (*model.Dealer, error) {
	var d model.Dealer
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, phone, city, state, created_at FROM dealers WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.City, &d.State, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get dealer")
	}
	return &d, nil
}

func (s *PostgresStore) ListDealers(ctx context.Context) ([]model.Dealer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, phone, city, state, created_at FROM dealers ORDER BY name ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list dealers")
	}
	defer rows.Close()

	var dealers []model.Dealer
	for rows.Next() {
		var d model.Dealer
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.City, &d.State, &d.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan dealer")
		}
		dealers = append(dealers, d)
	}
	return dealers, eris.Wrap(rows.Err(), "postgres: list dealers iterate")
}

func (s *PostgresStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.Status == "" {
		v.Status = model.VehiclePending
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO vehicles (id, dealer_id, vin, make, model, year, price, mileage, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.DealerID, v.VIN, v.Make, v.Model, v.Year, v.Price, v.Mileage,
		string(v.Status), now, now,
	)
	if isPostgresUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "postgres: insert vehicle")
}

func (s *PostgresStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	var v model.Vehicle
	err := s.pool.QueryRow(ctx,
		`SELECT id, dealer_id, vin, make, model, year, price, mileage, status, created_at, updated_at
		 FROM vehicles WHERE id = $1`, id,
	).Scan(&v.ID, &v.DealerID, &v.VIN, &v.Make, &v.Model, &v.Year, &v.Price,
		&v.Mileage, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get vehicle")
	}
	return &v, nil
}

func (s *PostgresStore) ListVehicles(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	query := `SELECT id, dealer_id, vin, make, model, year, price, mileage, status, created_at, updated_at
	          FROM vehicles WHERE true`
	args := []any{}
	argIdx := 1

	if filter.DealerID != "" {
		query += fmt.Sprintf(` AND dealer_id = $%d`, argIdx)
		args = append(args, filter.DealerID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list vehicles")
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.DealerID, &v.VIN, &v.Make, &v.Model, &v.Year,
			&v.Price, &v.Mileage, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan vehicle")
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, eris.Wrap(rows.Err(), "postgres: list vehicles iterate")
}

func (s *PostgresStore) UpdateVehicleStatus(ctx context.Context, id string, to model.VehicleStatus) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	var from model.VehicleStatus
	err = tx.QueryRow(ctx, `SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`, id).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return eris.Wrapf(err, "postgres: get vehicle status %s", id)
	}

	if !model.ValidVehicleTransition(from, to) {
		return eris.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE vehicles SET status = $1, updated_at = $2 WHERE id = $3`,
		string(to), time.Now().UTC(), id,
	); err != nil {
		return eris.Wrapf(err, "postgres: update vehicle status %s", id)
	}

	// Reverting a sale releases the listing: the open transaction from the
	// redemption is canceled.
	if from == model.VehicleSold && to == model.VehicleActive {
		if _, err := tx.Exec(ctx,
			`UPDATE transactions SET status = $1 WHERE vehicle_id = $2 AND status = $3`,
			string(model.TransactionCanceled), id, string(model.TransactionOpen),
		); err != nil {
			return eris.Wrapf(err, "postgres: cancel open transaction for vehicle %s", id)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit status update")
}

func (s *PostgresStore) CreateBuyCode(ctx context.Context, bc *model.BuyCode) error {
	if bc.ID == "" {
		bc.ID = uuid.New().String()
	}
	bc.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO buy_codes (id, vehicle_id, code, redeemed, expires_at, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		bc.ID, bc.VehicleID, bc.Code, bc.Redeemed, bc.ExpiresAt.UTC(), bc.CreatedAt,
	)
	if isPostgresUnique(err) {
		return ErrDuplicate
	}
	return eris.Wrap(err, "postgres: insert buy code")
}

func (s *PostgresStore) RedeemBuyCode(ctx context.Context, code, buyerName, buyerEmail string) (*model.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	var bc model.BuyCode
	err = tx.QueryRow(ctx,
		`SELECT id, vehicle_id, code, redeemed, expires_at FROM buy_codes WHERE code = $1 FOR UPDATE`, code,
	).Scan(&bc.ID, &bc.VehicleID, &bc.Code, &bc.Redeemed, &bc.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get buy code")
	}

	if bc.Redeemed {
		return nil, eris.New("postgres: buy code already redeemed")
	}
	if time.Now().UTC().After(bc.ExpiresAt) {
		return nil, eris.New("postgres: buy code expired")
	}

	var status model.VehicleStatus
	var price int64
	err = tx.QueryRow(ctx,
		`SELECT status, price FROM vehicles WHERE id = $1 FOR UPDATE`, bc.VehicleID,
	).Scan(&status, &price)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get vehicle %s", bc.VehicleID)
	}
	if status != model.VehicleActive {
		return nil, eris.Errorf("postgres: vehicle %s not active", bc.VehicleID)
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

	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, vehicle_id, buy_code_id, buyer_name, buyer_email, amount, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, txn.VehicleID, txn.BuyCodeID, txn.BuyerName, txn.BuyerEmail,
		txn.Amount, string(txn.Status), now,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert transaction")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE buy_codes SET redeemed = true WHERE id = $1`, bc.ID,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: mark buy code redeemed")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE vehicles SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.VehicleSold), now, bc.VehicleID,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: mark vehicle sold")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit redemption")
	}
	return txn, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, vehicleID string) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, vehicle_id, buy_code_id, buyer_name, buyer_email, amount, status, created_at
		 FROM transactions WHERE vehicle_id = $1 ORDER BY created_at DESC`, vehicleID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list transactions")
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.VehicleID, &t.BuyCodeID, &t.BuyerName,
			&t.BuyerEmail, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan transaction")
		}
		txns = append(txns, t)
	}
	return txns, eris.Wrap(rows.Err(), "postgres: list transactions iterate")
}

func (s *PostgresStore) CreateOffer(ctx context.Context, o *model.Offer) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = model.OfferPending
	}
	o.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO offers (id, vehicle_id, name, email, amount, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.VehicleID, o.Name, o.Email, o.Amount, string(o.Status), o.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert offer")
}

func (s *PostgresStore) ListOffers(ctx context.Context, filter OfferFilter) ([]model.Offer, error) {
	query := `SELECT id, vehicle_id, name, email, amount, status, created_at FROM offers WHERE true`
	args := []any{}
	argIdx := 1

	if filter.VehicleID != "" {
		query += fmt.Sprintf(` AND vehicle_id = $%d`, argIdx)
		args = append(args, filter.VehicleID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list offers")
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(&o.ID, &o.VehicleID, &o.Name, &o.Email, &o.Amount,
			&o.Status, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan offer")
		}
		offers = append(offers, o)
	}
	return offers, eris.Wrap(rows.Err(), "postgres: list offers iterate")
}

func (s *PostgresStore) UpdateOfferStatus(ctx context.Context, id string, status model.OfferStatus, note string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE offers SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update offer status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO offer_activity (id, offer_id, action, note, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), id, string(status), note, time.Now().UTC(),
	); err != nil {
		return eris.Wrap(err, "postgres: insert offer activity")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit offer update")
}

func (s *PostgresStore) ListOfferActivity(ctx context.Context, offerID string) ([]model.OfferActivity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, offer_id, action, note, created_at FROM offer_activity
		 WHERE offer_id = $1 ORDER BY created_at ASC`, offerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list offer activity")
	}
	defer rows.Close()

	var entries []model.OfferActivity
	for rows.Next() {
		var e model.OfferActivity
		if err := rows.Scan(&e.ID, &e.OfferID, &e.Action, &e.Note, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan offer activity")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list offer activity iterate")
}
