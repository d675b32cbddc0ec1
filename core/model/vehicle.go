package model

import (
	"fmt"
	"strings"
	"time"
)

// Vehicle statuses understood by the risk scorer.
const (
	VehicleAvailable     = "available"
	VehicleInService     = "in service"
	VehicleInMaintenance = "in maintenance"
)

// Vehicle represents a bus or van of the fleet.
type Vehicle struct {
	ID       string `json:"id"`
	Plate    string `json:"plate"`
	Status   string `json:"status"`
	Capacity int    `json:"capacity"`
}

// Validate checks that the vehicle record is usable.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if v.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	return nil
}

// InMaintenance reports whether the vehicle is currently in the workshop.
func (v Vehicle) InMaintenance() bool {
	return strings.EqualFold(strings.TrimSpace(v.Status), VehicleInMaintenance)
}

// Available reports whether the vehicle is idle and ready for assignment.
func (v Vehicle) Available() bool {
	return strings.EqualFold(strings.TrimSpace(v.Status), VehicleAvailable)
}

// Incident is an operational incident, optionally tied to a trip. VehicleID
// is resolved from the trip and stays empty when the trip has no vehicle.
type Incident struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id,omitempty"`
	VehicleID string    `json:"vehicle_id,omitempty"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
