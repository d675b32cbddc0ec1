package optimizer

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetopt/core/model"
)

// Risk labels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

const (
	fallbackFleetRisk   = 35
	maxMaintenanceItems = 4
)

// VehicleRisk is the maintenance risk assessment of a vehicle.
type VehicleRisk struct {
	VehicleID           string  `json:"vehicle_id"`
	Plate               string  `json:"plate"`
	Status              string  `json:"status"`
	IncidentCount       int     `json:"incident_count"`
	RiskScore           int     `json:"risk_score"`
	RiskLabel           string  `json:"risk_label"`
	AvgOccupancyPercent float64 `json:"avg_occupancy_percent"`
	NextCheckDate       string  `json:"next_check_date"`
	Recommendation      string  `json:"recommendation"`
}

// MaintenanceInsight ranks the riskiest vehicles of the fleet.
type MaintenanceInsight struct {
	FleetRiskIndex int           `json:"fleet_risk_index"`
	Vehicles       []VehicleRisk `json:"vehicles"`
}

type vehicleLoad struct {
	trips int
	occ   []float64
}

// ScoreMaintenance scores every vehicle from its incidents and load. The
// fleet index averages all vehicles while only the top four are returned.
func ScoreMaintenance(vehicles []model.Vehicle, incidents []model.Incident, loadFactors []model.TripLoadFactor, today time.Time) MaintenanceInsight {
	incidentCount := make(map[string]int)
	for _, inc := range incidents {
		if inc.TripID == "" || inc.VehicleID == "" {
			continue
		}
		incidentCount[inc.VehicleID]++
	}
	loads := make(map[string]*vehicleLoad)
	for _, lf := range loadFactors {
		if lf.VehicleID == "" {
			continue
		}
		l, ok := loads[lf.VehicleID]
		if !ok {
			l = &vehicleLoad{}
			loads[lf.VehicleID] = l
		}
		l.trips++
		l.occ = append(l.occ, lf.Occupancy())
	}

	scored := make([]VehicleRisk, 0, len(vehicles))
	scores := make([]float64, 0, len(vehicles))
	for _, v := range vehicles {
		incs := incidentCount[v.ID]
		trips, avgOcc := 0, 0.0
		if l, ok := loads[v.ID]; ok {
			trips = l.trips
			avgOcc = stat.Mean(l.occ, nil)
		}
		raw := 35 + float64(incs)*20 + float64(trips)*3 + avgOcc*25
		if v.InMaintenance() {
			raw += 15
		} else if v.Available() && avgOcc < 0.4 {
			raw -= 5
		}
		score := clampInt(int(math.Round(raw)), 10, 100)
		label := riskLabel(score)
		scores = append(scores, float64(score))
		scored = append(scored, VehicleRisk{
			VehicleID:           v.ID,
			Plate:               v.Plate,
			Status:              v.Status,
			IncidentCount:       incs,
			RiskScore:           score,
			RiskLabel:           label,
			AvgOccupancyPercent: roundTo(avgOcc*100, 1),
			NextCheckDate:       nextCheck(today, incs),
			Recommendation:      maintenanceAdvice(label),
		})
	}

	index := fallbackFleetRisk
	if len(scores) > 0 {
		index = int(math.Round(stat.Mean(scores, nil)))
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].RiskScore > scored[j].RiskScore })
	if len(scored) > maxMaintenanceItems {
		scored = scored[:maxMaintenanceItems]
	}
	return MaintenanceInsight{FleetRiskIndex: index, Vehicles: scored}
}

func riskLabel(score int) string {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 45:
		return RiskMedium
	default:
		return RiskLow
	}
}

func nextCheck(today time.Time, incidents int) string {
	days := 10 - incidents*2
	if days < 2 {
		days = 2
	}
	return today.AddDate(0, 0, days).Format(dayLayout)
}

func maintenanceAdvice(label string) string {
	switch label {
	case RiskHigh:
		return "Schedule a full inspection before the next rotation."
	case RiskMedium:
		return "Plan a preventive check within the week."
	default:
		return "Keep the regular maintenance schedule."
	}
}
