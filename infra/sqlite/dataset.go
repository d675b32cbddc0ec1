package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/fleetopt/core/model"
)

// User is a platform account. Only the count feeds the dashboard.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trip is a scheduled departure.
type Trip struct {
	ID           string    `json:"id"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	Departure    time.Time `json:"departure"`
	SeatCapacity int       `json:"seat_capacity"`
	Price        float64   `json:"price"`
	Status       string    `json:"status"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	DriverID     string    `json:"driver_id,omitempty"`
}

// Reservation books seats on a trip.
type Reservation struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	UserID    string    `json:"user_id,omitempty"`
	Seats     int       `json:"seats"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Search is one logged search query.
type Search struct {
	Term      string    `json:"term"`
	CreatedAt time.Time `json:"created_at"`
}

// Dataset is a bulk of operational records, as exported by the platform.
// Incident.VehicleID is ignored; it is resolved through the trip.
type Dataset struct {
	Users        []User                   `json:"users"`
	Vehicles     []model.Vehicle          `json:"vehicles"`
	Trips        []Trip                   `json:"trips"`
	Reservations []Reservation            `json:"reservations"`
	Incidents    []model.Incident         `json:"incidents"`
	Searches     []Search                 `json:"searches"`
	Rules        []model.OptimizationRule `json:"rules"`
}

// DecodeDataset reads a JSON dataset.
func DecodeDataset(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}

// Import upserts the dataset in a single transaction. Rows are replaced by
// id; search logs are appended.
func (s *Store) Import(ctx context.Context, ds Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range ds.Users {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO users (id, name) VALUES (?, ?)`, u.ID, u.Name); err != nil {
			return fmt.Errorf("user %s: %w", u.ID, err)
		}
	}
	for _, v := range ds.Vehicles {
		if err := v.Validate(); err != nil {
			return err
		}
		status := v.Status
		if status == "" {
			status = model.VehicleAvailable
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO vehicles (id, plate, status, capacity) VALUES (?, ?, ?, ?)`,
			v.ID, v.Plate, status, v.Capacity); err != nil {
			return fmt.Errorf("vehicle %s: %w", v.ID, err)
		}
	}
	for _, t := range ds.Trips {
		status := t.Status
		if status == "" {
			status = "scheduled"
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO trips (id, origin, destination, departure,
                seat_capacity, price, status, vehicle_id, driver_id)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Origin, t.Destination, t.Departure.Unix(), t.SeatCapacity, t.Price, status,
			t.VehicleID, t.DriverID); err != nil {
			return fmt.Errorf("trip %s: %w", t.ID, err)
		}
	}
	for _, r := range ds.Reservations {
		seats, status := r.Seats, r.Status
		if seats <= 0 {
			seats = 1
		}
		if status == "" {
			status = "confirmed"
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO reservations (id, trip_id, user_id, seats,
                amount, status, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.TripID, r.UserID, seats, r.Amount, status, r.CreatedAt.Unix()); err != nil {
			return fmt.Errorf("reservation %s: %w", r.ID, err)
		}
	}
	for _, in := range ds.Incidents {
		severity, status := in.Severity, in.Status
		if severity == "" {
			severity = "low"
		}
		if status == "" {
			status = "open"
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO incidents (id, trip_id, severity, status, created_at)
            VALUES (?, ?, ?, ?, ?)`,
			in.ID, in.TripID, severity, status, in.CreatedAt.Unix()); err != nil {
			return fmt.Errorf("incident %s: %w", in.ID, err)
		}
	}
	for _, q := range ds.Searches {
		if _, err := tx.ExecContext(ctx, `INSERT INTO search_logs (term, created_at) VALUES (?, ?)`,
			q.Term, q.CreatedAt.Unix()); err != nil {
			return fmt.Errorf("search %q: %w", q.Term, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for _, r := range ds.Rules {
		if err := s.UpsertRule(ctx, r); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
	}
	return nil
}
