package optimizer

import (
	"testing"

	"github.com/kilianp07/fleetopt/core/model"
)

func TestBuildDashboardStress(t *testing.T) {
	snap := model.DashboardSnapshot{Trips: 10, TodayReservations: 100, OpenIncidents: 5}
	pricing := []PricingInsight{
		{Route: "Paris -> Lyon", Action: ActionIncrease, Occupancy: 97},
		{Route: "Nice -> Lyon", Action: ActionIncrease, Occupancy: 99},
		{Route: "Lyon -> Nice", Action: ActionDecrease, Occupancy: 30},
		{Route: "Lyon -> Metz", Action: ActionHold, Occupancy: 70},
	}
	d := BuildDashboard(snap, pricing, MaintenanceInsight{FleetRiskIndex: 60})

	// (5*8 + 25 + 60*0.5) / 3
	if d.StressIndex != 32 {
		t.Fatalf("expected stress 32 got %d", d.StressIndex)
	}
	if len(d.Alerts) != 2 {
		t.Fatalf("expected 2 alerts got %+v", d.Alerts)
	}
	if d.Alerts[0].ID != "incident-peak" || d.Alerts[0].Severity != SeverityHigh {
		t.Errorf("unexpected first alert %+v", d.Alerts[0])
	}
	if d.Alerts[1].ID != "saturation" || d.Alerts[1].Severity != SeverityMedium {
		t.Errorf("unexpected second alert %+v", d.Alerts[1])
	}
	if len(d.OpportunityWindows) != 3 {
		t.Fatalf("expected 3 windows got %d", len(d.OpportunityWindows))
	}
	if w := d.OpportunityWindows[0]; w.Window != "48h" || w.GainPotential != "+6% margin" {
		t.Errorf("unexpected increase window %+v", w)
	}
	if w := d.OpportunityWindows[2]; w.Window != "72h" || w.GainPotential != "+15% fill" {
		t.Errorf("unexpected decrease window %+v", w)
	}
}

func TestBuildDashboardQuiet(t *testing.T) {
	d := BuildDashboard(model.DashboardSnapshot{}, nil, MaintenanceInsight{})
	if d.StressIndex != 10 {
		t.Fatalf("expected floor stress 10 got %d", d.StressIndex)
	}
	if d.Alerts == nil || len(d.Alerts) != 0 {
		t.Fatalf("expected empty alert list got %v", d.Alerts)
	}
	if d.OpportunityWindows == nil || len(d.OpportunityWindows) != 0 {
		t.Fatalf("expected empty windows got %v", d.OpportunityWindows)
	}
}

func TestBuildDashboardThresholds(t *testing.T) {
	// exactly 3 open incidents and 4x reservations do not trigger
	snap := model.DashboardSnapshot{Trips: 5, TodayReservations: 20, OpenIncidents: 3}
	d := BuildDashboard(snap, []PricingInsight{{Action: ActionIncrease, Occupancy: 95}}, MaintenanceInsight{FleetRiskIndex: 100})
	if len(d.Alerts) != 0 {
		t.Fatalf("expected no alert got %+v", d.Alerts)
	}
	// (24 + 0 + 50) / 3 = 24.67
	if d.StressIndex != 25 {
		t.Fatalf("expected 25 got %d", d.StressIndex)
	}
}
