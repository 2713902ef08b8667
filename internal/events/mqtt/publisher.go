// Package mqtt publishes scheduler events to an MQTT broker.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/med-reminder/internal/events"
)

const (
	// DefaultTopicPrefix is prepended to the event kind to form the topic.
	DefaultTopicPrefix = "medreminder/events"
	// connectTimeout bounds the initial broker connection.
	connectTimeout = 10 * time.Second
	// publishTimeout bounds a single publish so a slow broker cannot stall firings.
	publishTimeout = 5 * time.Second
	// disconnectQuiesce is how long Close waits for in-flight work, in milliseconds.
	disconnectQuiesce = 1000
)

var (
	// errConnectTimeout is returned when the broker does not answer in time.
	errConnectTimeout = errors.New("mqtt connection timeout")
	// errPublishTimeout is returned when a publish is not acknowledged in time.
	errPublishTimeout = errors.New("mqtt publish timeout")
)

// Publisher publishes events to <prefix>/<kind>.
type Publisher struct {
	// client is the connected broker client.
	client paho.Client
	// prefix is the topic prefix without a trailing slash.
	prefix string
}

// NewPublisher connects to broker and returns a publisher.
func NewPublisher(broker, clientID, topicPrefix string) (*Publisher, error) {
	if clientID == "" {
		clientID = "med-reminder"
	}

	if topicPrefix == "" {
		topicPrefix = DefaultTopicPrefix
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errConnectTimeout
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &Publisher{
		client: client,
		prefix: strings.TrimSuffix(topicPrefix, "/"),
	}, nil
}

// Topic returns the topic an event kind is published to.
func Topic(prefix string, kind events.Kind) string {
	return strings.TrimSuffix(prefix, "/") + "/" + string(kind)
}

// Publish sends e with QoS 1 for fired events and QoS 0 otherwise.
func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	payload, err := events.FormatPayload(e)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	var qos byte
	if e.Kind == events.KindFired {
		qos = 1
	}

	token := p.client.Publish(Topic(p.prefix, e.Kind), qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errPublishTimeout
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	p.client.Disconnect(disconnectQuiesce)

	return nil
}
