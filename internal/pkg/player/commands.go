package player

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/bswanson58/NoiseHass/internal/pkg/metrics"
	"github.com/bswanson58/NoiseHass/internal/pkg/model"
	"github.com/bswanson58/NoiseHass/internal/pkg/topic"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadParameter   = errors.New("bad command parameter")
)

// wireVolumeScale converts between the bus's 0-100 volume and the entity's
// 0.0-1.0 level. Encoding must invert the decode scale.
const wireVolumeScale = 100.0

func (e *Entity) Play() error {
	return e.sendCommand(model.CommandPlay, "")
}

func (e *Entity) Pause() error {
	return e.sendCommand(model.CommandPause, "")
}

func (e *Entity) Stop() error {
	return e.sendCommand(model.CommandStop, "")
}

func (e *Entity) Next() error {
	return e.sendCommand(model.CommandNext, "")
}

func (e *Entity) Previous() error {
	return e.sendCommand(model.CommandPrevious, "")
}

// Seek requests playback at the given position in seconds.
func (e *Entity) Seek(position int) error {
	if position < 0 {
		return fmt.Errorf("%w: position %d is negative", ErrBadParameter, position)
	}
	return e.sendCommand(model.CommandSeek, strconv.Itoa(position))
}

func (e *Entity) SetRepeat(mode string) error {
	return e.sendCommand(model.CommandRepeat, mode)
}

// SetVolume takes the entity-scale level 0.0-1.0 and re-scales it to the
// wire's 0-100.
func (e *Entity) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return fmt.Errorf("%w: volume level %v outside 0-1", ErrBadParameter, level)
	}
	wire := int(math.Round(level * wireVolumeScale))
	return e.sendCommand(model.CommandVolume, strconv.Itoa(wire))
}

func (e *Entity) SetMute(mute bool) error {
	return e.sendCommand(model.CommandMute, lo.Ternary(mute, "true", "false"))
}

// Invoke maps a command name and string parameter onto the typed entry
// points; the HTTP API calls through here.
func (e *Entity) Invoke(command, parameter string) error {
	switch model.Command(command) {
	case model.CommandPlay:
		return e.Play()
	case model.CommandPause:
		return e.Pause()
	case model.CommandStop:
		return e.Stop()
	case model.CommandNext:
		return e.Next()
	case model.CommandPrevious:
		return e.Previous()
	case model.CommandSeek:
		position, err := strconv.Atoi(parameter)
		if err != nil {
			return fmt.Errorf("%w: seek position %q: %v", ErrBadParameter, parameter, err)
		}
		return e.Seek(position)
	case model.CommandRepeat:
		return e.SetRepeat(parameter)
	case model.CommandVolume:
		level, err := strconv.ParseFloat(parameter, 64)
		if err != nil {
			return fmt.Errorf("%w: volume level %q: %v", ErrBadParameter, parameter, err)
		}
		return e.SetVolume(level)
	case model.CommandMute:
		mute, err := strconv.ParseBool(parameter)
		if err != nil {
			return fmt.Errorf("%w: mute flag %q: %v", ErrBadParameter, parameter, err)
		}
		return e.SetMute(mute)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
}

// sendCommand publishes fire-and-forget; no response is awaited.
func (e *Entity) sendCommand(cmd model.Command, parameter string) error {
	payload, err := json.Marshal(model.CommandMessage{
		Command:   cmd.String(),
		Parameter: parameter,
	})
	if err != nil {
		return err
	}
	t := topic.Command(e.opts.Namespace, e.deviceName)
	e.logger.Debug("publishing command",
		zap.String("topic", t),
		zap.String("command", cmd.String()),
		zap.String("parameter", parameter))
	if err := e.bus.Publish(t, payload); err != nil {
		return err
	}
	metrics.CommandsPublished.WithLabelValues(cmd.String()).Inc()
	return nil
}
