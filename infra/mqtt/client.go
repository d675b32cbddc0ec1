package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/fleetopt/core/model"
	"github.com/kilianp07/fleetopt/core/monitoring"
	"github.com/kilianp07/fleetopt/core/optimizer"
	"github.com/kilianp07/fleetopt/infra/logger"
)

// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
const DefaultTopicPrefix = "fleet/recommendations"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool            `json:"enabled" yaml:"enabled"`
	Broker      string          `json:"broker" yaml:"broker"`
	ClientID    string          `json:"client_id" yaml:"client_id"`
	Username    string          `json:"username" yaml:"username"`
	Password    string          `json:"password" yaml:"password"`
	TopicPrefix string          `json:"topic_prefix" yaml:"topic_prefix"`
	UseTLS      bool            `json:"use_tls" yaml:"use_tls"`
	ClientCert  string          `json:"client_cert" yaml:"client_cert"`
	ClientKey   string          `json:"client_key" yaml:"client_key"`
	CABundle    string          `json:"ca_bundle" yaml:"ca_bundle"`
	AuthMethod  string          `json:"auth_method" yaml:"auth_method"`
	QoS         map[string]byte `json:"qos" yaml:"qos"`
	LWTTopic    string          `json:"lwt_topic" yaml:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload" yaml:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos" yaml:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain" yaml:"lwt_retain"`
	MaxRetries  int             `json:"max_retries" yaml:"max_retries"`
	BackoffMS   int             `json:"backoff_ms" yaml:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-" yaml:"-"`
}

// SetDefaults fills the retry and topic settings.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.ClientID == "" {
		c.ClientID = "fleetopt"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks an enabled configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return errors.New("mqtt: broker is required")
	}
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("mqtt: unknown auth_method %q", c.AuthMethod)
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher pushes reviewed-ready recommendations to the vehicles' topics.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPublisher connects to the MQTT broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_publisher")
	p := &Publisher{
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS["recommendation"],
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Topic returns the topic a recommendation is published on. Recommendations
// without a vehicle go to the route-level "unassigned" topic.
func (p *Publisher) Topic(rec model.Recommendation) string {
	target := rec.RecommendedVehicleID
	if target == "" {
		target = "unassigned"
	}
	return p.prefix + "/" + target
}

// PublishRecommendation sends one recommendation, retrying with exponential
// backoff. Failures are reported to the monitor.
func (p *Publisher) PublishRecommendation(ctx context.Context, rec model.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	topic := p.Topic(rec)

	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published recommendation %s to %s", rec.ID, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			publishErr = ctx.Err()
			attempt = p.maxRetries
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	monitoring.CaptureException(publishErr, map[string]string{
		"vehicle_id":        rec.RecommendedVehicleID,
		"recommendation_id": rec.ID,
		"module":            "mqtt",
	})
	return fmt.Errorf("publish %s: %w", rec.ID, publishErr)
}

// Notify publishes every persisted recommendation of a cycle.
func (p *Publisher) Notify(ctx context.Context, _ *optimizer.Report, recs []model.Recommendation) error {
	var errs []error
	for _, rec := range recs {
		if err := p.PublishRecommendation(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
