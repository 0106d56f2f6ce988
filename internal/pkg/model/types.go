package model

// PlayerPhase classifies playback. Devices do not report a distinct stopped
// phase; anything that is not playing is paused.
type PlayerPhase string

const (
	PhasePlaying PlayerPhase = "playing"
	PhasePaused  PlayerPhase = "paused"
)

func (p PlayerPhase) String() string {
	return string(p)
}

// Command is a command name understood by the device on its command topic.
type Command string

const (
	CommandPlay     Command = "play"
	CommandPause    Command = "pause"
	CommandStop     Command = "stop"
	CommandNext     Command = "next"
	CommandPrevious Command = "previous"
	CommandSeek     Command = "seek"
	CommandRepeat   Command = "repeat"
	CommandVolume   Command = "volume"
	CommandMute     Command = "mute"
)

func (c Command) String() string {
	return string(c)
}

// Feature is a bit in the supported-features set the external renderer
// queries. Values match the host platform's media-player feature flags.
type Feature uint32

const (
	FeaturePause         Feature = 1 << 0
	FeatureSeek          Feature = 1 << 1
	FeatureVolumeSet     Feature = 1 << 2
	FeatureVolumeMute    Feature = 1 << 3
	FeaturePreviousTrack Feature = 1 << 4
	FeatureNextTrack     Feature = 1 << 5
	FeatureStop          Feature = 1 << 12
	FeaturePlay          Feature = 1 << 14
	FeatureRepeatSet     Feature = 1 << 18
)

// SupportedFeatures is the full capability set of a Noise Music System device.
const SupportedFeatures = FeaturePause |
	FeatureSeek |
	FeatureVolumeSet |
	FeatureVolumeMute |
	FeaturePreviousTrack |
	FeatureNextTrack |
	FeatureStop |
	FeaturePlay |
	FeatureRepeatSet

func (f Feature) Has(other Feature) bool {
	return f&other == other
}
