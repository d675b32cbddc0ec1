package mqtt

import (
	"context"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/fleetopt/core/model"
	coremon "github.com/kilianp07/fleetopt/core/monitoring"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(any)    {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishErrorCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail, fail}}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	defer restoreClient()
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	err = cli.PublishRecommendation(context.Background(), sampleRecommendation())
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(mc.published))
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["vehicle_id"] != "veh1" || mon.tags["module"] != "mqtt" || mon.tags["recommendation_id"] != "rec-1" {
		t.Fatalf("tags not set: %v", mon.tags)
	}
}

func TestNotifyJoinsErrors(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, nil}}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	defer restoreClient()
	cfg := Config{Broker: "tcp://localhost:1883", MaxRetries: 0, BackoffMS: 1}
	cli, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	// SetDefaults lifts MaxRetries 0 to 3; force a single attempt.
	cli.maxRetries = 0
	a, b := sampleRecommendation(), sampleRecommendation()
	b.ID = "rec-2"
	err = cli.Notify(context.Background(), nil, []model.Recommendation{a, b})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if len(mc.published) != 2 {
		t.Fatalf("second recommendation should still be published")
	}
}
