package websocket

import (
	"sync"

	"carpool/internal/matching"
	"carpool/internal/models"
	"carpool/internal/observability"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub owns the connection registry and the active ride index, and fans
// personalized ranked lists out to every subscriber whenever the index
// changes. It implements services.RideBroadcaster.
type Hub struct {
	register   chan *Client
	unregister chan *Client

	// subscribers maps a live connection to its current search
	// profile; nil until the connection completes the subscribe
	// handshake. Guarded by mutex.
	subscribers map[*Client]*matching.SearchProfile
	mutex       sync.RWMutex

	index     *matching.ActiveRideIndex
	jwtSecret string
	config    *Config
	logger    *logger.Logger
}

func NewHub(index *matching.ActiveRideIndex, jwtSecret string, config *Config, log *logger.Logger) *Hub {
	if config == nil {
		config = DefaultConfig()
	}
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribers: make(map[*Client]*matching.SearchProfile),
		index:       index,
		jwtSecret:   jwtSecret,
		config:      config,
		logger:      log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	// The subscribe handshake may land before the register message is
	// drained; a profile already stored for this connection must win.
	if _, ok := h.subscribers[client]; !ok {
		h.subscribers[client] = nil
	}
	observability.SubscribersConnected.Set(float64(len(h.subscribers)))
	h.logger.Debug("Subscriber connection opened")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.subscribers[client]; ok {
		delete(h.subscribers, client)
		close(client.send)
		observability.SubscribersConnected.Set(float64(len(h.subscribers)))
		h.logger.Debug("Subscriber connection closed")
	}
}

// subscribe records the connection's search profile; re-subscribing
// replaces the profile wholesale. The insert is unconditional so a
// subscribe racing its own registration is never lost.
func (h *Hub) subscribe(client *Client, profile *matching.SearchProfile) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.subscribers[client] = profile
}

// LoadActiveRides seeds the index at process start.
func (h *Hub) LoadActiveRides(rides []*models.Ride) {
	h.index.Load(rides)
	observability.ActiveRidesIndexed.Set(float64(h.index.Len()))
	h.logger.Infof("Loaded %d active rides into the index", len(rides))
}

// RideAdded, RideUpdated and RideRemoved are the lifecycle post-commit
// hooks. Each mutates the index and then recomputes every subscriber's
// ranked list against a fresh snapshot.

func (h *Hub) RideAdded(ride *models.Ride) {
	h.index.Add(ride)
	h.afterIndexMutation()
}

func (h *Hub) RideUpdated(ride *models.Ride) {
	h.index.Update(ride)
	h.afterIndexMutation()
}

func (h *Hub) RideRemoved(rideID primitive.ObjectID) {
	h.index.Remove(rideID)
	h.afterIndexMutation()
}

func (h *Hub) afterIndexMutation() {
	observability.ActiveRidesIndexed.Set(float64(h.index.Len()))
	h.broadcastRides()
}

type subscription struct {
	client  *Client
	profile *matching.SearchProfile
}

// broadcastRides pushes a personalized ranked list to every subscribed
// connection. Delivery is per-connection best-effort: the snapshot is
// taken up front so a slow consumer never blocks index mutations, and a
// failed send affects only that one connection.
func (h *Hub) broadcastRides() {
	snapshot := h.index.Snapshot()

	h.mutex.RLock()
	subs := make([]subscription, 0, len(h.subscribers))
	for client, profile := range h.subscribers {
		if profile != nil {
			subs = append(subs, subscription{client: client, profile: profile})
		}
	}
	h.mutex.RUnlock()

	for _, sub := range subs {
		ranked := matching.Rank(sub.profile, snapshot)
		sub.client.sendMessage(ServerMessage{Type: TypeRidesAvailable, Data: ranked})
	}

	observability.BroadcastsTotal.Inc()
}

// SubscriberCount reports connections that completed the subscribe
// handshake.
func (h *Hub) SubscriberCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for _, profile := range h.subscribers {
		if profile != nil {
			n++
		}
	}
	return n
}
