package sqlite

import (
	"context"
	"time"

	"github.com/kilianp07/fleetopt/core/model"
)

// Trends returns reservation counts and revenue per UTC calendar day over
// the windowDays complete days before today. Today's unfinished day, days
// without reservations and cancelled reservations are left out.
func (s *Store) Trends(ctx context.Context, windowDays int) ([]model.TrendPoint, error) {
	until := startOfDay(s.now())
	since := until.AddDate(0, 0, -windowDays)
	rows, err := s.db.QueryContext(ctx, `SELECT date(created_at, 'unixepoch') AS day,
            COUNT(*), COALESCE(SUM(amount), 0)
        FROM reservations
        WHERE created_at >= ? AND created_at < ? AND status != 'cancelled'
        GROUP BY day ORDER BY day`, since.Unix(), until.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.TrendPoint
	for rows.Next() {
		var p model.TrendPoint
		if err := rows.Scan(&p.Day, &p.ReservationCount, &p.Revenue); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// LoadFactors returns the trips departing in [now, now+horizonDays) with the
// seats reserved on them, ordered by departure.
func (s *Store) LoadFactors(ctx context.Context, horizonDays int) ([]model.TripLoadFactor, error) {
	now := s.now().UTC()
	until := now.AddDate(0, 0, horizonDays)
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.origin, t.destination, t.departure,
            t.seat_capacity, COALESCE(r.seats, 0), t.price, t.status,
            t.vehicle_id, t.driver_id, COALESCE(v.status, ''), COALESCE(v.plate, '')
        FROM trips t
        LEFT JOIN (
            SELECT trip_id, SUM(seats) AS seats FROM reservations
            WHERE status != 'cancelled' GROUP BY trip_id
        ) r ON r.trip_id = t.id
        LEFT JOIN vehicles v ON v.id = t.vehicle_id
        WHERE t.departure >= ? AND t.departure < ? AND t.status != 'cancelled'
        ORDER BY t.departure, t.id`, now.Unix(), until.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.TripLoadFactor
	for rows.Next() {
		var lf model.TripLoadFactor
		var dep int64
		if err := rows.Scan(&lf.TripID, &lf.Origin, &lf.Destination, &dep,
			&lf.SeatCapacity, &lf.SeatsReserved, &lf.Price, &lf.Status,
			&lf.VehicleID, &lf.DriverID, &lf.VehicleStatus, &lf.VehiclePlate); err != nil {
			return nil, err
		}
		lf.Departure = time.Unix(dep, 0).UTC()
		res = append(res, lf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Vehicles returns the full roster ordered by id.
func (s *Store) Vehicles(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, plate, status, capacity FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.Status, &v.Capacity); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// RecentIncidents returns the newest incidents with the vehicle of their trip.
func (s *Store) RecentIncidents(ctx context.Context, limit int) ([]model.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT i.id, i.trip_id, COALESCE(t.vehicle_id, ''),
            i.severity, i.status, i.created_at
        FROM incidents i
        LEFT JOIN trips t ON t.id = i.trip_id
        ORDER BY i.created_at DESC, i.id
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Incident
	for rows.Next() {
		var in model.Incident
		var ts int64
		if err := rows.Scan(&in.ID, &in.TripID, &in.VehicleID, &in.Severity, &in.Status, &ts); err != nil {
			return nil, err
		}
		in.CreatedAt = time.Unix(ts, 0).UTC()
		res = append(res, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// SearchPopularity counts searches per normalized term, most searched first.
func (s *Store) SearchPopularity(ctx context.Context) ([]model.SearchStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT lower(trim(term)) AS t, COUNT(*) AS c
        FROM search_logs
        WHERE trim(term) != ''
        GROUP BY t ORDER BY c DESC, t`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.SearchStat
	for rows.Next() {
		var st model.SearchStat
		if err := rows.Scan(&st.Term, &st.Count); err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// DashboardSnapshot reads platform counters. Incidents count as open until
// resolved or closed.
func (s *Store) DashboardSnapshot(ctx context.Context) (model.DashboardSnapshot, error) {
	var snap model.DashboardSnapshot
	today := startOfDay(s.now()).Unix()
	err := s.db.QueryRowContext(ctx, `SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM vehicles),
            (SELECT COUNT(*) FROM trips),
            (SELECT COUNT(*) FROM reservations),
            (SELECT COUNT(*) FROM reservations WHERE created_at >= ? AND status != 'cancelled'),
            (SELECT COALESCE(SUM(amount), 0) FROM reservations WHERE created_at >= ? AND status != 'cancelled'),
            (SELECT COUNT(*) FROM incidents WHERE status NOT IN ('resolved', 'closed'))`,
		today, today).Scan(&snap.Users, &snap.Vehicles, &snap.Trips, &snap.Reservations,
		&snap.TodayReservations, &snap.TodayRevenue, &snap.OpenIncidents)
	if err != nil {
		return model.DashboardSnapshot{}, err
	}
	return snap, nil
}
