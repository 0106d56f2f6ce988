package player

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bswanson58/NoiseHass/internal/pkg/model"
)

type fakeBus struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	topic   string
	payload []byte
}

func (f *fakeBus) Publish(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{topic: topic, payload: payload})
	return nil
}

func (f *fakeBus) last(t *testing.T) publishedMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.published)
	return f.published[len(f.published)-1]
}

type recorder struct {
	mu        sync.Mutex
	snapshots []model.EntitySnapshot
}

func (r *recorder) notify(snapshot model.EntitySnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func newTestEntity(t *testing.T, opts Options) (*Entity, *fakeBus, *recorder) {
	t.Helper()
	bus := &fakeBus{}
	rec := &recorder{}
	return New("Salt Mine", "SaltMine", bus, rec.notify, opts, zaptest.NewLogger(t)), bus, rec
}

func TestEntity_DefaultsUnavailablePaused(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{})
	snap := e.Snapshot()
	assert.False(t, snap.Available)
	assert.Equal(t, model.PhasePaused.String(), snap.State)
	assert.Equal(t, "SALTMINE", e.DeviceID())
}

func TestEntity_Availability(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		payload   string
		available bool
	}{
		{name: "online", payload: "online", available: true},
		{name: "offline", payload: "offline", available: false},
		{name: "empty", payload: "", available: false},
		{name: "garbage", payload: "ONLINE!", available: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, _, rec := newTestEntity(t, Options{})
			e.HandleMessage("noisemusicsystem/SaltMine/availability", []byte(tc.payload))
			assert.Equal(t, tc.available, e.Snapshot().Available)
			assert.Equal(t, 1, rec.count())
		})
	}
}

func TestEntity_StatusMerge(t *testing.T) {
	t.Parallel()
	e, _, rec := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine/status",
		[]byte(`{"artist":"Muse","tracknumber":3,"volume":50,"playstate":"playing"}`))

	snap := e.Snapshot()
	assert.True(t, snap.Available)
	assert.Equal(t, "Muse", snap.Artist)
	assert.Equal(t, 3, snap.TrackNumber)
	assert.Equal(t, 0.5, snap.Volume)
	assert.Equal(t, model.PhasePlaying.String(), snap.State)
	assert.Equal(t, 1, rec.count())
}

func TestEntity_SparseMergeKeepsDuration(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"duration":227,"playstate":"playing"}`))
	require.Equal(t, 227, e.Snapshot().Duration)

	// duration absent: previous value survives
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"position":42}`))
	assert.Equal(t, 227, e.Snapshot().Duration)
	assert.Equal(t, 42, e.Snapshot().Position)
	assert.Equal(t, model.PhasePlaying.String(), e.Snapshot().State)

	// duration present: overwritten
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"duration":180}`))
	assert.Equal(t, 180, e.Snapshot().Duration)
}

func TestEntity_PlayStateOtherMeansPaused(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"playstate":"playing"}`))
	require.Equal(t, model.PhasePlaying.String(), e.Snapshot().State)
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"playstate":"stopped"}`))
	assert.Equal(t, model.PhasePaused.String(), e.Snapshot().State)
}

func TestEntity_ExplicitMutedWins(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"volume":50,"muted":true}`))
	snap := e.Snapshot()
	assert.True(t, snap.Muted)
	assert.Equal(t, 0.5, snap.Volume)
}

func TestEntity_DeriveMuteFallback(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{DeriveMute: true})
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"volume":0}`))
	assert.True(t, e.Snapshot().Muted)

	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"volume":30}`))
	assert.False(t, e.Snapshot().Muted)
}

func TestEntity_DeriveMuteDisabledByDefault(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"muted":true}`))
	require.True(t, e.Snapshot().Muted)

	// without the fallback, a volume-only payload leaves muted untouched
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"volume":30}`))
	assert.True(t, e.Snapshot().Muted)
}

func TestEntity_MalformedPayloadMutatesNothing(t *testing.T) {
	t.Parallel()
	e, _, rec := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"artist":`))
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`null`))
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"volume":150}`))
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"artist":"Muse","duration":-3}`))

	snap := e.Snapshot()
	assert.False(t, snap.Available)
	assert.Empty(t, snap.Artist)
	assert.Zero(t, rec.count())
}

func TestEntity_ForeignDeviceIgnored(t *testing.T) {
	t.Parallel()
	e, _, rec := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/OtherDevice/status", []byte(`{"artist":"Muse"}`))
	e.HandleMessage("noisemusicsystem/OtherDevice/availability", []byte("online"))

	snap := e.Snapshot()
	assert.False(t, snap.Available)
	assert.Empty(t, snap.Artist)
	assert.Zero(t, rec.count())
}

func TestEntity_ShortAndUnknownTopicsIgnored(t *testing.T) {
	t.Parallel()
	e, _, rec := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine", []byte("online"))
	e.HandleMessage("noisemusicsystem/SaltMine/config", []byte(`{}`))
	e.HandleMessage("noisemusicsystem/SaltMine/command", []byte(`{"command":"play","parameter":""}`))

	assert.False(t, e.Snapshot().Available)
	assert.Zero(t, rec.count())
}

func TestEntity_StateSegmentRevision(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{StatusSegment: "state"})
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"artist":"Muse"}`))
	assert.Empty(t, e.Snapshot().Artist)

	e.HandleMessage("noisemusicsystem/SaltMine/state", []byte(`{"artist":"Muse"}`))
	assert.Equal(t, "Muse", e.Snapshot().Artist)
}

func TestEntity_DeviceNameNormalizationMatchesTopic(t *testing.T) {
	t.Parallel()
	// entity configured as "Salt Mine", device publishes as "salt_mine"
	bus := &fakeBus{}
	e := New("Salt Mine", "Salt Mine", bus, nil, Options{}, zaptest.NewLogger(t))
	e.HandleMessage("noisemusicsystem/salt_mine/status", []byte(`{"artist":"Muse"}`))
	assert.Equal(t, "Muse", e.Snapshot().Artist)
}

func TestEntity_AnnounceMessage(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{})
	msg := e.AnnounceMessage()
	assert.Equal(t, "Salt Mine", msg.Name)
	assert.Equal(t, "SALTMINE", msg.ID)
	assert.Equal(t, "noisemusicsystem/SaltMine/entity", msg.StateTopic)
	assert.Equal(t, "noisemusicsystem/SaltMine/command", msg.CommandTopic)
	assert.Equal(t, model.SupportedFeatures, msg.SupportedFeatures)
	assert.True(t, msg.SupportedFeatures.Has(model.FeaturePlay|model.FeatureVolumeSet))
	assert.Equal(t, []string{"SALTMINE"}, msg.Device.Identifiers)
}

func TestEntity_PositionTimestampMerge(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEntity(t, Options{})
	e.HandleMessage("noisemusicsystem/SaltMine/status",
		[]byte(`{"position":10,"positionupdated":"Mon, 31 Aug 2026 10:15:04 GMT"}`))
	first := e.Snapshot().PositionUpdatedAt
	require.NotNil(t, first)

	// empty timestamp leaves the previous value untouched
	e.HandleMessage("noisemusicsystem/SaltMine/status", []byte(`{"position":11,"positionupdated":""}`))
	snap := e.Snapshot()
	require.NotNil(t, snap.PositionUpdatedAt)
	assert.Equal(t, *first, *snap.PositionUpdatedAt)
	assert.Equal(t, 11, snap.Position)
}
