package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/button-sensor/internal/press"
)

// OutboxSize is the number of messages kept while the broker is unreachable.
const OutboxSize = 256

const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker. Every message goes
// through the outbox and leaves it in publish order; messages published while
// disconnected wait there until the client reconnects.
type RealPublisher struct {
	client paho.Client

	mu       sync.Mutex
	outbox   *outbox
	draining bool
}

// NewRealPublisher creates a publisher for the given broker. The client keeps
// retrying in the background, so an unreachable broker is not an error.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{outbox: newOutbox(OutboxSize)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetOnConnectHandler(func(paho.Client) { p.reconnected() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, queueing messages", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a press event to the MQTT broker.
func (p *RealPublisher) Publish(event press.Event) error {
	msg, err := PressMessage(event)
	if err != nil {
		return err
	}
	return p.send(msg)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	msg, err := SystemMessage(event)
	if err != nil {
		return err
	}
	return p.send(msg)
}

func (p *RealPublisher) send(msg Message) error {
	p.mu.Lock()
	p.outbox.push(msg)
	p.mu.Unlock()

	if !p.client.IsConnectionOpen() {
		return nil
	}
	return p.drain()
}

func (p *RealPublisher) publish(msg Message) error {
	token := p.client.Publish(msg.Topic, msg.QoS, msg.Retained, msg.Payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", msg.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Topic, err)
	}
	return nil
}

// drain publishes queued messages oldest first until the outbox is empty or
// a publish fails. One goroutine drains at a time; a caller that finds a
// drain running leaves its message to that drain.
func (p *RealPublisher) drain() error {
	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		return nil
	}
	p.draining = true

	for {
		msg, ok := p.outbox.peek()
		if !ok {
			p.draining = false
			p.mu.Unlock()
			return nil
		}
		dropped := p.outbox.dropped
		p.mu.Unlock()

		err := p.publish(msg)

		p.mu.Lock()
		if err != nil {
			p.draining = false
			p.mu.Unlock()
			return err
		}
		// An overflow during the publish has already evicted msg.
		if p.outbox.dropped == dropped {
			p.outbox.pop()
		}
	}
}

func (p *RealPublisher) reconnected() {
	if n := p.Queued(); n > 0 {
		log.Printf("mqtt: connected, flushing %d queued messages", n)
	}
	if err := p.drain(); err != nil {
		log.Printf("mqtt: flush failed: %v", err)
	}
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Queued returns the number of messages waiting for the broker.
func (p *RealPublisher) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// Dropped returns the number of queued messages lost to overflow.
func (p *RealPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.dropped
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
