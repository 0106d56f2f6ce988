package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/bswanson58/NoiseHass/cmd"
)

func main() {
	app := &cli.App{
		Name:   "noisehass",
		Usage:  "mqtt bridge exposing a Noise Music System device as a media-player entity",
		Action: cmd.BridgeCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mqtt-broker",
				EnvVars: []string{"MQTT_BROKER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-client-id",
				EnvVars: []string{"MQTT_CLIENT_ID"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "device-name",
				EnvVars: []string{"DEVICE_NAME"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "device-id",
				EnvVars: []string{"DEVICE_ID"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "namespace",
				EnvVars: []string{"TOPIC_NAMESPACE"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "status-segment",
				EnvVars: []string{"STATUS_SEGMENT"},
				Value:   "",
			},
			&cli.BoolFlag{
				Name:    "derive-mute",
				EnvVars: []string{"DERIVE_MUTE"},
				Value:   false,
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
