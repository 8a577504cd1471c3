// Package realtime fans out outbox-derived events to live per-list
// subscriber connections. Nothing here is persisted: clients that are
// offline miss live events and reconcile through a normal read on
// reconnect.
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"listsync/internal/domain"
)

// Transport is a single client connection the gateway can write to. Send
// must respect the timeout so one stalled client cannot hold up fanout to
// the rest of a list's subscribers.
type Transport interface {
	Send(data []byte, timeout time.Duration) error
	Close() error
}

// Subscription is the caller-facing handle for one subscriber. Done is
// closed exactly once when the subscription is torn down, whether by
// transport error, explicit Close, or gateway shutdown.
type Subscription struct {
	listID    string
	userID    string
	transport Transport
	gateway   *Gateway

	once sync.Once
	done chan struct{}

	// writeMu serializes event writes with keep-alive writes on the same
	// transport.
	writeMu sync.Mutex
}

// Done is closed when the subscription has been removed from the gateway.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close tears the subscription down. Safe to call multiple times and
// concurrently with transport errors racing in from other paths.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.gateway.remove(s)
		if err := s.transport.Close(); err != nil {
			s.gateway.logger.Debug("transport close failed", "list_id", s.listID, "user_id", s.userID, "err", err)
		}
	})
}

func (s *Subscription) send(data []byte, timeout time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.transport.Send(data, timeout)
}

// Gateway owns the in-memory registry of live subscribers, keyed by list.
// It is shared between the transport layer (subscribe/disconnect) and the
// relay (publish); all registry access is guarded by mu.
type Gateway struct {
	logger       *slog.Logger
	keepAlive    time.Duration
	writeTimeout time.Duration

	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{}
	closed      bool
}

// NewGateway returns an empty gateway. keepAlive is the heartbeat interval
// for long-lived connections; writeTimeout bounds every single write.
func NewGateway(logger *slog.Logger, keepAlive, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		logger:       logger,
		keepAlive:    keepAlive,
		writeTimeout: writeTimeout,
		subscribers:  make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers the transport under listID, immediately sends the
// connection ack so the client can tell "connected, quiet" from "never
// connected", and starts the keep-alive loop.
func (g *Gateway) Subscribe(listID, userID string, transport Transport) (*Subscription, error) {
	if listID == "" || transport == nil {
		return nil, fmt.Errorf("%w: listID and transport are required", domain.ErrInvalidInput)
	}

	sub := &Subscription{
		listID:    listID,
		userID:    userID,
		transport: transport,
		gateway:   g,
		done:      make(chan struct{}),
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, fmt.Errorf("gateway is shut down")
	}
	set, ok := g.subscribers[listID]
	if !ok {
		set = make(map[*Subscription]struct{})
		g.subscribers[listID] = set
	}
	set[sub] = struct{}{}
	g.mu.Unlock()

	ack, err := json.Marshal(&domain.SyncEvent{
		ListID:    listID,
		Type:      domain.SyncEventConnection,
		Timestamp: time.Now(),
	})
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to marshal connection ack: %w", err)
	}
	if err := sub.send(ack, g.writeTimeout); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to send connection ack: %w", err)
	}

	go g.keepAliveLoop(sub)

	g.logger.Debug("subscriber registered", "list_id", listID, "user_id", userID)
	return sub, nil
}

func (g *Gateway) keepAliveLoop(sub *Subscription) {
	ticker := time.NewTicker(g.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-sub.done:
			return
		case <-ticker.C:
			beat, err := json.Marshal(&domain.SyncEvent{
				ListID:    sub.listID,
				Type:      domain.SyncEventKeepAlive,
				Timestamp: time.Now(),
			})
			if err != nil {
				g.logger.Error("failed to marshal keep-alive", "err", err)
				return
			}
			if err := sub.send(beat, g.writeTimeout); err != nil {
				g.logger.Debug("keep-alive write failed, dropping subscriber",
					"list_id", sub.listID, "user_id", sub.userID, "err", err)
				sub.Close()
				return
			}
		}
	}
}

// Publish fans the event out to every subscriber of its list. No
// subscribers is a normal state, not a fault. A failed write drops that
// subscriber and never affects delivery to the others or the publisher.
func (g *Gateway) Publish(event *domain.SyncEvent) error {
	if event == nil || event.ListID == "" {
		return fmt.Errorf("%w: event with listID is required", domain.ErrInvalidInput)
	}

	g.mu.RLock()
	set := g.subscribers[event.ListID]
	targets := make([]*Subscription, 0, len(set))
	for sub := range set {
		targets = append(targets, sub)
	}
	g.mu.RUnlock()

	if len(targets) == 0 {
		g.logger.Debug("no subscribers for event", "list_id", event.ListID, "type", event.Type)
		return nil
	}

	// Serialize once, write many.
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	for _, sub := range targets {
		if err := sub.send(data, g.writeTimeout); err != nil {
			g.logger.Debug("subscriber write failed, dropping",
				"list_id", sub.listID, "user_id", sub.userID, "err", err)
			sub.Close()
		}
	}
	return nil
}

// SubscriberCount reports the current number of live subscribers for a list.
func (g *Gateway) SubscriberCount(listID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.subscribers[listID])
}

func (g *Gateway) remove(sub *Subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.subscribers[sub.listID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(g.subscribers, sub.listID)
	}
}

// Shutdown closes every subscription and refuses new ones. Heartbeat
// goroutines exit through their subscription's done channel.
func (g *Gateway) Shutdown() {
	g.mu.Lock()
	g.closed = true
	all := make([]*Subscription, 0)
	for _, set := range g.subscribers {
		for sub := range set {
			all = append(all, sub)
		}
	}
	g.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
	g.logger.Info("sync gateway shut down", "closed_subscriptions", len(all))
}
