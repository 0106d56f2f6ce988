// Package status decodes and validates device status payloads.
//
// A payload is a flat JSON object; unknown fields are ignored, known fields
// are type- and range-checked, and any single violation invalidates the
// whole message. Absent fields mean "no update", never "reset".
package status

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/bswanson58/NoiseHass/internal/pkg/model"
)

var (
	// ErrMalformedPayload indicates the payload is not a valid JSON object
	// of the expected shape.
	ErrMalformedPayload = errors.New("malformed status payload")
	// ErrInvalidField indicates a known field failed its range check.
	ErrInvalidField = errors.New("invalid status field")
)

// PositionTimeLayout is the fixed wire format of the position timestamp,
// always GMT.
const PositionTimeLayout = time.RFC1123

// wireStatus mirrors the status payload schema. Pointer fields distinguish
// absent from zero.
type wireStatus struct {
	Artist      *string `json:"artist"`
	AlbumArtist *string `json:"albumartist"`
	Album       *string `json:"album"`
	Track       *string `json:"track"`
	TrackNumber *int    `json:"tracknumber"`
	Duration    *int    `json:"duration"`
	Position    *int    `json:"position"`
	PositionAt  *string `json:"positionupdated"`
	Volume      *int    `json:"volume"`
	Muted       *bool   `json:"muted"`
	PlayState   *string `json:"playstate"`
}

// Decode parses a raw status payload into a StatusRecord. A non-nil error
// means the whole message must be dropped; no partial record is returned.
func Decode(payload []byte) (*model.StatusRecord, error) {
	// A bare `null` or other non-object literal unmarshals cleanly into an
	// empty struct, which would count as a valid (if vacuous) update.
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedPayload)
	}

	w := wireStatus{}
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if w.TrackNumber != nil && *w.TrackNumber < 1 {
		return nil, fmt.Errorf("%w: tracknumber %d is not positive", ErrInvalidField, *w.TrackNumber)
	}
	if w.Duration != nil && *w.Duration < 0 {
		return nil, fmt.Errorf("%w: duration %d is negative", ErrInvalidField, *w.Duration)
	}
	if w.Position != nil && *w.Position < 0 {
		return nil, fmt.Errorf("%w: position %d is negative", ErrInvalidField, *w.Position)
	}
	// Out-of-range volume is rejected rather than clamped; storing it would
	// leak a normalized volume outside 0..1 downstream.
	if w.Volume != nil && (*w.Volume < 0 || *w.Volume > 100) {
		return nil, fmt.Errorf("%w: volume %d outside 0-100", ErrInvalidField, *w.Volume)
	}

	rec := &model.StatusRecord{
		Artist:      w.Artist,
		AlbumArtist: w.AlbumArtist,
		Album:       w.Album,
		Track:       w.Track,
		TrackNumber: w.TrackNumber,
		Duration:    w.Duration,
		Position:    w.Position,
		Volume:      w.Volume,
		Muted:       w.Muted,
		PlayState:   w.PlayState,
	}

	// An empty timestamp string leaves the previous value untouched.
	if w.PositionAt != nil && *w.PositionAt != "" {
		// The wire format is fixed GMT; time.Parse would accept any zone
		// name at offset zero.
		if !strings.HasSuffix(*w.PositionAt, " GMT") {
			return nil, fmt.Errorf("%w: positionupdated zone is not GMT", ErrInvalidField)
		}
		at, err := time.Parse(PositionTimeLayout, *w.PositionAt)
		if err != nil {
			return nil, fmt.Errorf("%w: positionupdated: %v", ErrInvalidField, err)
		}
		rec.PositionAt = &at
	}

	return rec, nil
}
