// Package config loads the cuevox configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file.
const (
	EnvOpenHABURL   = "CUEVOX_OPENHAB_URL"
	EnvOpenHABToken = "CUEVOX_OPENHAB_TOKEN"
)

// Sources, sinks and journals.
const (
	SourceFile    = "file"
	SourceOpenHAB = "openhab"

	SinkLog     = "log"
	SinkOpenHAB = "openhab"
	SinkMQTT    = "mqtt"
	SinkRedis   = "redis"

	JournalNone   = "none"
	JournalMemory = "memory"
	JournalBolt   = "bolt"
	JournalRedis  = "redis"
)

// Config is the content of cuevox.yaml.
type Config struct {
	LogLevel      string `yaml:"log_level" json:"log_level"`
	Language      string `yaml:"language" json:"language"`
	Rules         string `yaml:"rules" json:"rules"`
	CompleteMatch bool   `yaml:"complete_match" json:"complete_match"`

	Items   ItemsConfig   `yaml:"items" json:"items"`
	Sink    string        `yaml:"sink" json:"sink"`
	Journal JournalConfig `yaml:"journal" json:"journal"`

	OpenHAB OpenHABConfig `yaml:"openhab" json:"openhab"`
	MQTT    MQTTConfig    `yaml:"mqtt" json:"mqtt"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
}

// ItemsConfig selects where entities come from.
type ItemsConfig struct {
	Source string `yaml:"source" json:"source"`
	File   string `yaml:"file" json:"file"`
}

// JournalConfig selects where annotations are recorded.
type JournalConfig struct {
	Type string `yaml:"type" json:"type"`
	Path string `yaml:"path" json:"path"`
	Size int    `yaml:"size" json:"size"`
}

// OpenHABConfig points to the openHAB REST API.
type OpenHABConfig struct {
	URL     string        `yaml:"url" json:"url"`
	Token   string        `yaml:"token" json:"token"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// MQTTConfig configures the MQTT command sink.
type MQTTConfig struct {
	Broker   string `yaml:"broker" json:"broker"`
	ClientID string `yaml:"client_id" json:"client_id"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	QoS      byte   `yaml:"qos" json:"qos"`
}

// RedisConfig configures the Redis command bus and journal.
type RedisConfig struct {
	Addr       string `yaml:"addr" json:"addr"`
	Channel    string `yaml:"channel" json:"channel"`
	JournalKey string `yaml:"journal_key" json:"journal_key"`
}

// HTTPConfig configures the REST server.
type HTTPConfig struct {
	Addr    string `yaml:"addr" json:"addr"`
	Metrics bool   `yaml:"metrics" json:"metrics"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Language: "en",
		Items:    ItemsConfig{Source: SourceFile, File: "items.yaml"},
		Sink:     SinkLog,
		Journal:  JournalConfig{Type: JournalMemory, Path: "cuevox.db", Size: 100},
		OpenHAB:  OpenHABConfig{URL: "http://localhost:8080", Timeout: 5 * time.Second},
		MQTT:     MQTTConfig{Broker: "tcp://localhost:1883", ClientID: "cuevox", Prefix: "cuevox"},
		Redis:    RedisConfig{Addr: "localhost:6379", Channel: "cuevox:commands", JournalKey: "cuevox:journal"},
		HTTP:     HTTPConfig{Addr: ":8080", Metrics: true},
	}
}

// Load reads the configuration at path (YAML, or JSON by extension) on top
// of the defaults and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		case strings.EqualFold(filepath.Ext(path), ".json"):
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvOpenHABURL); v != "" {
		c.OpenHAB.URL = v
	}
	if v := os.Getenv(EnvOpenHABToken); v != "" {
		c.OpenHAB.Token = v
	}
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if err := oneOf("items.source", c.Items.Source, SourceFile, SourceOpenHAB); err != nil {
		return err
	}
	if err := oneOf("sink", c.Sink, SinkLog, SinkOpenHAB, SinkMQTT, SinkRedis); err != nil {
		return err
	}
	if err := oneOf("journal.type", c.Journal.Type, JournalNone, JournalMemory, JournalBolt, JournalRedis); err != nil {
		return err
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid config: mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid config: %s must be one of [%s], got %q", key, strings.Join(allowed, ", "), value)
}
