// Package topic parses and builds Noise Music System bus topics.
//
// Topics follow the shape {namespace}/{device-name}/{command}[/...]. The
// device-name segment is normalized into a canonical device id so that
// "Salt Mine", "salt-mine" and "SALT_MINE" all address the same device.
package topic

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// DefaultNamespace is the base namespace the device family publishes under.
const DefaultNamespace = "noisemusicsystem"

// Recognized command segments.
const (
	SegmentAvailability = "availability"
	SegmentStatus       = "status"
	SegmentState        = "state"
	SegmentConfig       = "config"
	SegmentCommand      = "command"
	SegmentEntity       = "entity"
)

// Address is a parsed topic: the normalized device identity plus the
// command segment verbatim.
type Address struct {
	DeviceID string
	Command  string
}

// NormalizeDeviceID derives the canonical device identity from a
// human-readable device name: slugified, dashes unified to underscores,
// then upper-cased. "Salt Mine", "salt-mine" and "SALT_MINE" all yield
// "SALT_MINE".
func NormalizeDeviceID(name string) string {
	return strings.ToUpper(strings.ReplaceAll(slug.Make(name), "-", "_"))
}

// Parse splits a topic into an Address. A topic with fewer than 3 segments
// is not a valid address; the second return is false and the caller must
// skip the message, not fail.
func Parse(topic string) (Address, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return Address{}, false
	}
	return Address{
		DeviceID: NormalizeDeviceID(parts[1]),
		Command:  parts[2],
	}, true
}

// Subscription returns the topic filter covering every device in the
// namespace. Per-device filtering happens after Parse.
func Subscription(namespace string) string {
	return namespace + "/#"
}

// Command returns the outbound command topic for a device.
func Command(namespace, deviceName string) string {
	return fmt.Sprintf("%s/%s/%s", namespace, deviceName, SegmentCommand)
}

// Availability returns the availability topic for a device.
func Availability(namespace, deviceName string) string {
	return fmt.Sprintf("%s/%s/%s", namespace, deviceName, SegmentAvailability)
}

// Status returns the status topic for a device. The segment is "status" or
// "state" depending on the device's protocol revision.
func Status(namespace, deviceName, segment string) string {
	return fmt.Sprintf("%s/%s/%s", namespace, deviceName, segment)
}

// Entity returns the retained entity-snapshot topic the bridge publishes to.
func Entity(namespace, deviceName string) string {
	return fmt.Sprintf("%s/%s/%s", namespace, deviceName, SegmentEntity)
}

// Announce returns the retained announce topic for the bridge's entity.
func Announce(namespace, deviceName string) string {
	return fmt.Sprintf("%s/%s/bridge/%s", namespace, deviceName, SegmentConfig)
}
