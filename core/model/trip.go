package model

import "time"

// TrendPoint is one calendar day of reservation activity.
type TrendPoint struct {
	Day              string  `json:"day"`
	ReservationCount int     `json:"reservation_count"`
	Revenue          float64 `json:"revenue"`
}

// TripLoadFactor is the snapshot of a scheduled trip with the seats reserved
// on it. Optional links are empty strings when absent.
type TripLoadFactor struct {
	TripID        string    `json:"trip_id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Departure     time.Time `json:"departure"`
	SeatCapacity  int       `json:"seat_capacity"`
	SeatsReserved int       `json:"seats_reserved"`
	Price         float64   `json:"price"`
	Status        string    `json:"status"`
	VehicleID     string    `json:"vehicle_id,omitempty"`
	DriverID      string    `json:"driver_id,omitempty"`
	VehicleStatus string    `json:"vehicle_status,omitempty"`
	VehiclePlate  string    `json:"vehicle_plate,omitempty"`
}

// Occupancy returns reserved/capacity clamped to [0,1]. Trips without
// capacity report 0.
func (l TripLoadFactor) Occupancy() float64 {
	if l.SeatCapacity <= 0 {
		return 0
	}
	occ := float64(l.SeatsReserved) / float64(l.SeatCapacity)
	if occ > 1 {
		return 1
	}
	if occ < 0 {
		return 0
	}
	return occ
}

// SearchStat aggregates how often a term was searched.
type SearchStat struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// DashboardSnapshot holds platform-wide counters at read time.
type DashboardSnapshot struct {
	Users             int     `json:"users"`
	Vehicles          int     `json:"vehicles"`
	Trips             int     `json:"trips"`
	Reservations      int     `json:"reservations"`
	TodayReservations int     `json:"today_reservations"`
	TodayRevenue      float64 `json:"today_revenue"`
	OpenIncidents     int     `json:"open_incidents"`
}
