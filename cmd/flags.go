package cmd

import "github.com/urfave/cli/v2"

// Flags override the matching environment variables when set.
var Flags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:  "env-file",
		Usage: "dotenv files to load before reading the environment",
	},
	&cli.StringFlag{
		Name:  "api-base-url",
		Usage: "base url of the remote dashboard api",
	},
	&cli.DurationFlag{
		Name:  "devices-poll-interval",
		Usage: "how often devices are fetched",
	},
	&cli.DurationFlag{
		Name:  "events-poll-interval",
		Usage: "how often events are fetched",
	},
	&cli.DurationFlag{
		Name:  "fetch-timeout",
		Usage: "upper bound for a single fetch",
	},
	&cli.StringFlag{
		Name:  "listen-addr",
		Usage: "address the presentation bridge listens on",
	},
	&cli.StringFlag{
		Name:  "fallback-mode",
		Usage: "seed or last_known_good",
	},
	&cli.StringFlag{
		Name: "mqtt-host",
	},
	&cli.StringFlag{
		Name: "mqtt-user",
	},
	&cli.StringFlag{
		Name: "mqtt-pass",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "DEBUG, INFO, WARN or ERROR",
	},
}
