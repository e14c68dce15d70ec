package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
)

// BookingRepo is the MySQL adapter of BookingStore.  All timestamps are
// stored in UTC and rental days in DATE columns, so the canonical
// day-granularity comparison of the model layer carries over to SQL
// unchanged.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to coordinate
// transactions across repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingCols = `id, user_id, user_email, user_name, car_id, car_name,
       pickup_date, return_date, pickup_location, unit_price, total_price,
       status, payment_status, payment_intent_id, created_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(rs rowScanner) (*model.Booking, error) {
	var b model.Booking
	var pickup, ret time.Time
	var intentID sql.NullString
	err := rs.Scan(
		&b.ID, &b.UserID, &b.UserEmail, &b.UserName, &b.CarID, &b.CarName,
		&pickup, &ret, &b.PickupLocation, &b.UnitPrice, &b.TotalPrice,
		&b.Status, &b.PaymentStatus, &intentID, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.PickupDate = model.DateOf(pickup)
	b.ReturnDate = model.DateOf(ret)
	if intentID.Valid {
		ref := intentID.String
		b.PaymentIntentID = &ref
	}
	return &b, nil
}

// Create inserts the booking after re-validating the admission invariant
// inside a transaction.  The parent car row is locked with FOR UPDATE
// first, which serializes concurrent admissions for the same car; the
// overlap count is then authoritative for the lifetime of the transaction
// and no window exists where two overlapping active bookings coexist.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Serialization point: one admission per car at a time.
	var carID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM cars WHERE id = ? FOR UPDATE`, b.CarID).Scan(&carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	// Touching endpoints count as overlap, hence <= / >= via NOT(... < / >).
	const overlapQ = `SELECT COUNT(*) FROM bookings
                      WHERE car_id = ? AND status <> 'cancelled'
                        AND NOT (return_date < ? OR pickup_date > ?)`
	var n int
	if err := tx.QueryRowContext(ctx, overlapQ, b.CarID,
		b.PickupDate.String(), b.ReturnDate.String()).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}

	const insQ = `INSERT INTO bookings
        (id, user_id, user_email, user_name, car_id, car_name,
         pickup_date, return_date, pickup_location, unit_price, total_price,
         status, payment_status, payment_intent_id, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var intentID interface{}
	if b.PaymentIntentID != nil {
		intentID = *b.PaymentIntentID
	}
	if _, err := tx.ExecContext(ctx, insQ,
		b.ID, b.UserID, b.UserEmail, b.UserName, b.CarID, b.CarName,
		b.PickupDate.String(), b.ReturnDate.String(), b.PickupLocation,
		b.UnitPrice, b.TotalPrice, b.Status, b.PaymentStatus, intentID,
		b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.queryBookings(ctx,
		`SELECT `+bookingCols+` FROM bookings ORDER BY created_at DESC`)
}

// ListOverlapping returns non-cancelled bookings that share at least one
// day with [from, to].  An empty carID matches all cars.
func (r *BookingRepo) ListOverlapping(ctx context.Context, carID string, from, to model.Date) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings
          WHERE status <> 'cancelled'
            AND NOT (return_date < ? OR pickup_date > ?)`
	args := []interface{}{from.String(), to.String()}
	if carID != "" {
		q += ` AND car_id = ?`
		args = append(args, carID)
	}
	q += ` ORDER BY created_at DESC`
	return r.queryBookings(ctx, q, args...)
}

// UpdateByID loads the booking FOR UPDATE, applies fn and writes back the
// mutable fields when fn reports a change.  Settlement transitions stay in
// the model layer; this method only provides the atomicity.
func (r *BookingRepo) UpdateByID(ctx context.Context, id string, fn Transition) (*model.Booking, error) {
	return r.update(ctx, `id = ?`, id, fn)
}

// UpdateByIntentID is UpdateByID keyed by payment_intent_id.
func (r *BookingRepo) UpdateByIntentID(ctx context.Context, intentID string, fn Transition) (*model.Booking, error) {
	return r.update(ctx, `payment_intent_id = ?`, intentID, fn)
}

func (r *BookingRepo) update(ctx context.Context, where string, key string, fn Transition) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE `+where+` FOR UPDATE`, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	changed, err := fn(b)
	if err != nil {
		return nil, err
	}
	if changed {
		var intentID interface{}
		if b.PaymentIntentID != nil {
			intentID = *b.PaymentIntentID
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, payment_status = ?, payment_intent_id = ? WHERE id = ?`,
			b.Status, b.PaymentStatus, intentID, b.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

// SetStatus overwrites the status column with no regard for the payment
// state.  Admin-only by routing; the override deliberately bypasses the
// settlement transitions.
func (r *BookingRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "missing" from "already in that status".
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes the booking row outright.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
