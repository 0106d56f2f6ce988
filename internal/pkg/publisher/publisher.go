// Package publisher fans entity snapshots out to registered sinks.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bswanson58/NoiseHass/internal/pkg/metrics"
	"github.com/bswanson58/NoiseHass/internal/pkg/model"
)

// ErrAlreadyRegistered is returned when a publisher name is reused.
var ErrAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]statePublisher)
	registryMu           sync.RWMutex
	lastSnapshots        sync.Map
)

type statePublisher interface {
	// WriteState publishes the merged entity snapshot to the sink.
	WriteState(ctx context.Context, snapshot model.EntitySnapshot) error
	// Announce publishes the retained entity description.
	Announce(msg *model.AnnounceMessage) error
}

func RegisterPublisher(name string, publisher statePublisher) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registeredPublishers[name]; ok {
		return ErrAlreadyRegistered
	}
	registeredPublishers[name] = publisher
	return nil
}

// UnregisterPublisher removes a previously registered publisher. Unknown
// names are a no-op.
func UnregisterPublisher(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registeredPublishers, name)
}

// PublishState writes the snapshot to every registered publisher. Identical
// consecutive snapshots for a device are skipped so retained topics and
// downstream sinks only see actual changes. A failing sink does not stop the
// fan-out; its error is joined into the returned error.
func PublishState(ctx context.Context, snapshot model.EntitySnapshot) error {
	if !shouldUpdate(snapshot) {
		return nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	var errs []error
	for name, publisher := range registeredPublishers {
		if err := publisher.WriteState(ctx, snapshot); err != nil {
			zap.L().Error("failed to publish entity state", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		metrics.SnapshotsPublished.WithLabelValues(name).Inc()
		zap.L().Debug("published entity state", zap.String("device", snapshot.DeviceID), zap.String("publisher", name))
	}
	return errors.Join(errs...)
}

// Announce writes the entity description to every registered publisher. As
// with PublishState, every sink is attempted and the failures are joined.
func Announce(msg *model.AnnounceMessage) error {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var errs []error
	for name, publisher := range registeredPublishers {
		if err := publisher.Announce(msg); err != nil {
			zap.L().Error("failed to announce entity", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		zap.L().Debug("announced entity", zap.String("device", msg.ID), zap.String("publisher", name))
	}
	return errors.Join(errs...)
}

func shouldUpdate(snapshot model.EntitySnapshot) bool {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return true
	}
	previous, exists := lastSnapshots.Load(snapshot.DeviceID)
	if exists && previous.(string) == string(encoded) {
		return false
	}
	lastSnapshots.Store(snapshot.DeviceID, string(encoded))
	return true
}
