// Package player owns the media-player entity for one Noise Music System
// device: its observable state, the merge of inbound status records, and the
// encoding of outbound commands.
package player

import (
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bswanson58/NoiseHass/internal/pkg/metrics"
	"github.com/bswanson58/NoiseHass/internal/pkg/model"
	"github.com/bswanson58/NoiseHass/internal/pkg/status"
	"github.com/bswanson58/NoiseHass/internal/pkg/topic"
)

// publisher is the outbound side of the bus; publishes are fire-and-forget.
type publisher interface {
	Publish(topic string, payload []byte) error
}

// Notifier receives a fully-merged snapshot after every state change.
type Notifier func(snapshot model.EntitySnapshot)

// Options select between device protocol revisions.
type Options struct {
	// Namespace is the topic base namespace; defaults to topic.DefaultNamespace.
	Namespace string
	// StatusSegment is the command segment carrying status payloads,
	// "status" or "state" depending on device firmware.
	StatusSegment string
	// DeriveMute enables the older fallback rule: when a payload omits the
	// muted field, muted is derived from volume == 0.
	DeriveMute bool
}

type Entity struct {
	name       string
	deviceName string
	deviceID   string
	opts       Options
	bus        publisher
	notify     Notifier
	logger     *zap.Logger
	handlers   map[string]func(payload []byte)

	mu                sync.Mutex
	available         bool
	phase             model.PlayerPhase
	volume            float64
	muted             bool
	artist            string
	albumArtist       string
	album             string
	title             string
	trackNumber       int
	duration          int
	position          int
	positionUpdatedAt time.Time
}

// New constructs the entity for one device. The device id is normalized once
// here and immutable afterwards; deviceName is kept verbatim for outbound
// topic segments.
func New(name, deviceName string, bus publisher, notify Notifier, opts Options, logger *zap.Logger) *Entity {
	if opts.Namespace == "" {
		opts.Namespace = topic.DefaultNamespace
	}
	if opts.StatusSegment == "" {
		opts.StatusSegment = topic.SegmentStatus
	}
	if logger == nil {
		logger = zap.L()
	}
	e := &Entity{
		name:       name,
		deviceName: deviceName,
		deviceID:   topic.NormalizeDeviceID(deviceName),
		opts:       opts,
		bus:        bus,
		notify:     notify,
		logger:     logger,
		phase:      model.PhasePaused,
	}
	e.handlers = map[string]func([]byte){
		topic.SegmentAvailability: e.handleAvailability,
		opts.StatusSegment:        e.handleStatus,
	}
	return e
}

// DeviceID returns the normalized device identity.
func (e *Entity) DeviceID() string {
	return e.deviceID
}

// HandleMessage routes one inbound bus message. Topics that do not parse,
// address another device, or carry an unrecognized command segment are
// skipped silently. Payload validation failures are logged at debug level
// and never propagate to the subscription layer.
func (e *Entity) HandleMessage(t string, payload []byte) {
	addr, ok := topic.Parse(t)
	if !ok {
		return
	}
	if addr.DeviceID != e.deviceID {
		metrics.MessagesReceived.WithLabelValues(metrics.ResultForeign).Inc()
		return
	}
	handler, ok := e.handlers[addr.Command]
	if !ok {
		metrics.MessagesReceived.WithLabelValues(metrics.ResultIgnored).Inc()
		return
	}
	handler(payload)
}

func (e *Entity) handleAvailability(payload []byte) {
	online := string(payload) == "online"

	e.mu.Lock()
	e.available = online
	snap := e.snapshotLocked()
	e.mu.Unlock()

	metrics.MessagesReceived.WithLabelValues(metrics.ResultAvailability).Inc()
	e.notifyChange(snap)
}

func (e *Entity) handleStatus(payload []byte) {
	rec, err := status.Decode(payload)
	if err != nil {
		e.logger.Debug("skipping update because of malformed data", zap.Error(err))
		metrics.MessagesReceived.WithLabelValues(metrics.ResultDropped).Inc()
		return
	}

	snap := e.applyStatus(rec)
	metrics.MessagesReceived.WithLabelValues(metrics.ResultApplied).Inc()
	e.notifyChange(snap)
}

// applyStatus folds a valid status record into the entity state. The merge
// is field-wise sparse: absent fields keep their previous value. A device
// that is sending status is online, so availability flips true as well.
func (e *Entity) applyStatus(r *model.StatusRecord) model.EntitySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r.Artist != nil {
		e.artist = *r.Artist
	}
	if r.AlbumArtist != nil {
		e.albumArtist = *r.AlbumArtist
	}
	if r.Album != nil {
		e.album = *r.Album
	}
	if r.Track != nil {
		e.title = *r.Track
	}
	if r.TrackNumber != nil {
		e.trackNumber = *r.TrackNumber
	}
	if r.Duration != nil {
		e.duration = *r.Duration
	}
	if r.Position != nil {
		e.position = *r.Position
	}
	if r.PositionAt != nil {
		e.positionUpdatedAt = *r.PositionAt
	}
	if r.Volume != nil {
		e.volume = float64(*r.Volume) / wireVolumeScale
	}
	if r.Muted != nil {
		e.muted = *r.Muted
	} else if e.opts.DeriveMute {
		e.muted = e.volume == 0
	}
	if r.PlayState != nil {
		e.phase = lo.Ternary(*r.PlayState == model.PhasePlaying.String(), model.PhasePlaying, model.PhasePaused)
	}
	e.available = true

	return e.snapshotLocked()
}

// Snapshot returns a fully-merged copy of the entity state.
func (e *Entity) Snapshot() model.EntitySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Entity) snapshotLocked() model.EntitySnapshot {
	snap := model.EntitySnapshot{
		DeviceID:          e.deviceID,
		Name:              e.name,
		Available:         e.available,
		State:             e.phase.String(),
		Volume:            e.volume,
		Muted:             e.muted,
		Artist:            e.artist,
		AlbumArtist:       e.albumArtist,
		Album:             e.album,
		Title:             e.title,
		TrackNumber:       e.trackNumber,
		Duration:          e.duration,
		Position:          e.position,
		SupportedFeatures: model.SupportedFeatures,
	}
	if !e.positionUpdatedAt.IsZero() {
		at := e.positionUpdatedAt
		snap.PositionUpdatedAt = &at
	}
	return snap
}

func (e *Entity) notifyChange(snap model.EntitySnapshot) {
	metrics.StateNotifications.Inc()
	if e.notify != nil {
		e.notify(snap)
	}
}

// AnnounceMessage describes the entity for the retained bridge announcement.
func (e *Entity) AnnounceMessage() *model.AnnounceMessage {
	return &model.AnnounceMessage{
		Name:              e.name,
		ID:                e.deviceID,
		StateTopic:        topic.Entity(e.opts.Namespace, e.deviceName),
		CommandTopic:      topic.Command(e.opts.Namespace, e.deviceName),
		SupportedFeatures: model.SupportedFeatures,
		Device: model.AnnounceDevice{
			Name:         e.name,
			Identifiers:  []string{e.deviceID},
			Manufacturer: "Noise Music System",
		},
	}
}
