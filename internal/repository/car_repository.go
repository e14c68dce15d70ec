package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
)

// CarRepo provides access to the cars catalog.  The booking core treats
// the catalog as a collaborator: it reads a car exactly once at admission
// time to snapshot the per-day price and the availability flag.
type CarRepo struct {
	db *sql.DB
}

// NewCarRepo returns a CarRepo bound to the given database.
func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{db: db} }

const carCols = `id, name, brand, model, year, price_per_day, image_url,
       location, seats, transmission, fuel_type, availability, created_at`

func scanCar(rs rowScanner) (*model.Car, error) {
	var c model.Car
	err := rs.Scan(&c.ID, &c.Name, &c.Brand, &c.Model, &c.Year, &c.PricePerDay,
		&c.ImageURL, &c.Location, &c.Seats, &c.Transmission, &c.FuelType,
		&c.Availability, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new catalog entry.
func (r *CarRepo) Create(ctx context.Context, c *model.Car) error {
	const q = `INSERT INTO cars
        (id, name, brand, model, year, price_per_day, image_url, location,
         seats, transmission, fuel_type, availability, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Brand, c.Model, c.Year,
		c.PricePerDay, c.ImageURL, c.Location, c.Seats, c.Transmission,
		c.FuelType, c.Availability, c.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	return err
}

// GetByID returns a car or ErrNotFound.
func (r *CarRepo) GetByID(ctx context.Context, id string) (*model.Car, error) {
	c, err := scanCar(r.db.QueryRowContext(ctx,
		`SELECT `+carCols+` FROM cars WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// ListAvailable returns cars flagged available, optionally filtered by
// location.  This backs the public catalog listing.
func (r *CarRepo) ListAvailable(ctx context.Context, location string) ([]model.Car, error) {
	q := `SELECT ` + carCols + ` FROM cars WHERE availability = TRUE`
	args := []interface{}{}
	if location != "" {
		q += ` AND location = ?`
		args = append(args, location)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update overwrites the mutable catalog fields of an existing car.
func (r *CarRepo) Update(ctx context.Context, c *model.Car) error {
	const q = `UPDATE cars SET name = ?, brand = ?, model = ?, year = ?,
        price_per_day = ?, image_url = ?, location = ?, seats = ?,
        transmission = ?, fuel_type = ?, availability = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Brand, c.Model, c.Year,
		c.PricePerDay, c.ImageURL, c.Location, c.Seats, c.Transmission,
		c.FuelType, c.Availability, c.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM cars WHERE id = ?`, c.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a car from the catalog.  Existing bookings keep their
// price and name snapshots.
func (r *CarRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
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
