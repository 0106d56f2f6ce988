package model

// CommandMessage is the outbound body published on the device command topic.
type CommandMessage struct {
	Command   string `json:"command"`
	Parameter string `json:"parameter"`
}

type AnnounceDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer"`
}

// AnnounceMessage is the retained message describing the entity to consumers.
type AnnounceMessage struct {
	Name              string         `json:"name"`
	ID                string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	CommandTopic      string         `json:"command_topic"`
	SupportedFeatures Feature        `json:"supported_features"`
	Device            AnnounceDevice `json:"device"`
}
