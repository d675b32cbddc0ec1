package optimizer

import "testing"

func TestBuildSimulationsCascade(t *testing.T) {
	pricing := []PricingInsight{
		{Route: "Paris -> Lyon", Action: ActionIncrease, Delta: 8, Occupancy: 96, RecommendedPrice: 30, Confidence: 0.9},
		{Route: "Lyon -> Nice", Action: ActionDecrease, Delta: -6, Occupancy: 20, RecommendedPrice: 15, Confidence: 0.45},
	}
	maint := MaintenanceInsight{Vehicles: []VehicleRisk{{VehicleID: "v1", Plate: "AB-123-CD", RiskScore: 85, RiskLabel: RiskHigh}}}

	sims := BuildSimulations(pricing, maint)
	if len(sims) != 3 {
		t.Fatalf("expected 3 simulations got %d", len(sims))
	}
	want := []struct {
		id         string
		gain, cost float64
		confidence float64
	}{
		{"sim-rotation", 360, 120, 0.9},
		{"sim-discount", 120, 30, 0.45},
		{"sim-maintenance", 850, 150, 0.9},
	}
	for i, w := range want {
		s := sims[i]
		if s.ID != w.id || s.ExpectedGain != w.gain || s.Cost != w.cost || s.Confidence != w.confidence {
			t.Errorf("simulation %d: got %+v want %+v", i, s, w)
		}
	}
	if sims[2].Title != "Preventive inspection of AB-123-CD" {
		t.Errorf("unexpected title %q", sims[2].Title)
	}
}

func TestBuildSimulationsMaintenanceConfidence(t *testing.T) {
	sims := BuildSimulations(nil, MaintenanceInsight{Vehicles: []VehicleRisk{{VehicleID: "v7", RiskScore: 40}}})
	if len(sims) != 1 || sims[0].ID != "sim-maintenance" {
		t.Fatalf("unexpected simulations %+v", sims)
	}
	if sims[0].Confidence != 0.5 {
		t.Fatalf("expected confidence 0.5 got %v", sims[0].Confidence)
	}
	if sims[0].Title != "Preventive inspection of v7" {
		t.Fatalf("unexpected title %q", sims[0].Title)
	}
}

func TestBuildSimulationsStable(t *testing.T) {
	pricing := []PricingInsight{{Route: "A -> B", Action: ActionHold}}
	sims := BuildSimulations(pricing, MaintenanceInsight{})
	if len(sims) != 1 || sims[0].ID != "sim-stable" {
		t.Fatalf("expected stable scenario, got %+v", sims)
	}
	if sims[0].ExpectedGain != 0 || sims[0].Cost != 0 || sims[0].Confidence != 0.6 {
		t.Fatalf("unexpected stable figures %+v", sims[0])
	}
}
