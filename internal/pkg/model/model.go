package model

import "time"

// StatusRecord is the decoded form of one status payload. Every field is
// optional; nil means the payload carried no update for that field.
type StatusRecord struct {
	Artist      *string
	AlbumArtist *string
	Album       *string
	Track       *string
	TrackNumber *int
	Duration    *int
	Position    *int
	PositionAt  *time.Time
	Volume      *int // wire scale, 0-100
	Muted       *bool
	PlayState   *string
}

// EntitySnapshot is a fully-merged, read-only copy of the entity state,
// handed to publishers and the HTTP API.
type EntitySnapshot struct {
	DeviceID          string     `json:"device_id"`
	Name              string     `json:"name"`
	Available         bool       `json:"available"`
	State             string     `json:"state"`
	Volume            float64    `json:"volume"`
	Muted             bool       `json:"muted"`
	Artist            string     `json:"artist,omitempty"`
	AlbumArtist       string     `json:"albumartist,omitempty"`
	Album             string     `json:"album,omitempty"`
	Title             string     `json:"title,omitempty"`
	TrackNumber       int        `json:"tracknumber,omitempty"`
	Duration          int        `json:"duration,omitempty"`
	Position          int        `json:"position,omitempty"`
	PositionUpdatedAt *time.Time `json:"position_updated_at,omitempty"`
	SupportedFeatures Feature    `json:"supported_features"`
}
