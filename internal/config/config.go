// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/telegauge/telegauge/internal/logger"
	"github.com/telegauge/telegauge/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	Serial  Serial        `group:"Serial Options" namespace:"serial" env-namespace:"TELEGAUGE_SERIAL"`
	Display Display       `group:"Display Options" namespace:"display" env-namespace:"TELEGAUGE_DISPLAY"`
	Network Network       `group:"Network Options" namespace:"net" env-namespace:"TELEGAUGE_NET"`
	Weather Weather       `group:"Weather Options" namespace:"weather" env-namespace:"TELEGAUGE_WEATHER"`
	Storage Storage       `group:"Storage Options" namespace:"db" env-namespace:"TELEGAUGE_DB"`
	Logger  logger.Config `group:"Logger Options" namespace:"log" env-namespace:"TELEGAUGE_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Serial holds telemetry link configuration.
type Serial struct {
	Port    string        `short:"p" long:"port" env:"PORT" description:"Serial port device path, or 'auto' to probe" default:"auto"`
	Baud    int           `long:"baud" env:"BAUD" description:"Serial baud rate" default:"115200"`
	MaxLine int           `long:"max-line" env:"MAX_LINE" description:"Max accumulated line length before the buffer is dropped" default:"512"`
	Timeout time.Duration `long:"timeout" env:"TIMEOUT" description:"Telemetry staleness window" default:"5s"`
	Demo    bool          `long:"demo" env:"DEMO" description:"Generate synthetic telemetry instead of reading the port"`
}

// Display holds tick loop and render configuration.
type Display struct {
	Tick           time.Duration `long:"tick" env:"TICK" description:"Main loop tick interval" default:"50ms"`
	GamingCooldown time.Duration `long:"gaming-cooldown" env:"GAMING_COOLDOWN" description:"How long a zero FPS reading is tolerated before leaving the gaming screen" default:"3s"`
	Debounce       time.Duration `long:"debounce" env:"DEBOUNCE" description:"Button debounce window" default:"250ms"`
	Headless       bool          `long:"headless" env:"HEADLESS" description:"Log frames instead of drawing the terminal panel"`
}

// Network holds connectivity and time-sync configuration.
type Network struct {
	Provisioning   bool          `long:"provisioning" env:"PROVISIONING" description:"Require a stored network identity before normal operation"`
	TimeSync       bool          `long:"time-sync" env:"TIME_SYNC" description:"Enable network clock synchronization"`
	TimeURL        string        `long:"time-url" env:"TIME_URL" description:"Network time endpoint" default:"https://worldtimeapi.org/api/ip"`
	SyncInterval   time.Duration `long:"sync-interval" env:"SYNC_INTERVAL" description:"Network clock refresh interval" default:"1m"`
	ConnectTimeout time.Duration `long:"connect-timeout" env:"CONNECT_TIMEOUT" description:"Timeout for a single network attempt" default:"5s"`
	RetryEvery     time.Duration `long:"retry-every" env:"RETRY_EVERY" description:"Minimum interval between reconnect attempts" default:"10s"`
}

// Weather holds weather fetch configuration.
type Weather struct {
	Enable    bool          `long:"enable" env:"ENABLE" description:"Enable the ambient weather display"`
	URL       string        `long:"url" env:"URL" description:"Weather endpoint (open-meteo compatible)" default:"https://api.open-meteo.com/v1/forecast"`
	Latitude  float64       `long:"lat" env:"LAT" description:"Latitude for the weather query" default:"0"`
	Longitude float64       `long:"lon" env:"LON" description:"Longitude for the weather query" default:"0"`
	Interval  time.Duration `long:"interval" env:"INTERVAL" description:"Weather refresh interval" default:"15m"`
	Timeout   time.Duration `long:"timeout" env:"TIMEOUT" description:"Weather request timeout" default:"5s"`
}

// Storage holds settings database configuration and one-shot maintenance flags.
type Storage struct {
	Path          string `short:"d" long:"path" env:"PATH" description:"Path to SQLite settings database" default:"telegauge.db"`
	SetIdentity   string `long:"set-identity" description:"Store the network identity and exit"`
	ResetIdentity bool   `long:"reset-identity" description:"Clear the stored network identity and exit"`
	ForgetWeather bool   `long:"forget-weather" description:"Drop the persisted weather snapshot and exit"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	if cfg.Weather.Enable && cfg.Weather.Latitude == 0 && cfg.Weather.Longitude == 0 {
		fmt.Fprintln(os.Stderr,
			"Weather is enabled but no location is set, use `--weather-lat` and `--weather-lon` or `TELEGAUGE_WEATHER_LAT`/`TELEGAUGE_WEATHER_LON`!")
		os.Exit(1)
	}

	return &cfg
}
