// Package events publishes build lifecycle notifications to NATS so
// downstream upload automation can react to fresh archives.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/gurupack/internal/logfields"
)

// BuildCompleted is the payload published after every packaging build.
type BuildCompleted struct {
	BuildID     string    `json:"build_id"`
	Outcome     string    `json:"outcome"`
	Cards       int       `json:"cards"`
	ArchivePath string    `json:"archive_path,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher publishes build events to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS. The connection reconnects automatically;
// publishing while disconnected buffers messages in the client.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("gurupack"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

// PublishBuildCompleted publishes a build-completed event. Failures are
// logged, not fatal: eventing must never break the build itself.
func (p *Publisher) PublishBuildCompleted(ev BuildCompleted) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Failed to marshal build event", logfields.Error(err))
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		slog.Warn("Failed to publish build event", slog.String("subject", p.subject), logfields.Error(err))
		return
	}
	slog.Debug("Build event published", slog.String("subject", p.subject), logfields.BuildID(ev.BuildID))
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
