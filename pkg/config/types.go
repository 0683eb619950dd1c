/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so it can be written as "6h" in config files.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errInvalidDuration
	}

	if n, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}

	dur, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}

	*d = Duration(dur)

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Header represents a custom HTTP header.
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"` // sqlite3 or postgres
	DSN    string `json:"dsn" yaml:"dsn"`
}

// BalenaConfig holds the fleet API credentials and client tuning.
type BalenaConfig struct {
	APIURL      string   `json:"api_url" yaml:"api_url"`
	AppID       string   `json:"app_id" yaml:"app_id"`
	BearerToken string   `json:"bearer_token" yaml:"bearer_token"`
	Timeout     Duration `json:"timeout" yaml:"timeout"`
	RateLimit   float64  `json:"rate_limit" yaml:"rate_limit"` // requests per second
	Burst       int      `json:"burst" yaml:"burst"`
}

// SlackConfig represents the Slack incoming webhook.
type SlackConfig struct {
	WebhookURL string   `json:"webhook_url" yaml:"webhook_url"`
	Timeout    Duration `json:"timeout" yaml:"timeout"`
	Headers    []Header `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// AlertingConfig controls which devices are reported as chronically offline.
type AlertingConfig struct {
	IgnoreList []string `json:"ignore_list" yaml:"ignore_list"`
	Threshold  int64    `json:"threshold" yaml:"threshold"`
	Window     Duration `json:"window" yaml:"window"`
}

// HeartbeatConfig sets how often a snapshot batch may be written.
type HeartbeatConfig struct {
	Interval Duration `json:"interval" yaml:"interval"`
}

// ScheduleConfig holds optional cron expressions for in-process jobs.
type ScheduleConfig struct {
	Check string `json:"check,omitempty" yaml:"check,omitempty"`
	Prune string `json:"prune,omitempty" yaml:"prune,omitempty"`
}

// ArchiveConfig points at the S3 bucket pruned snapshots are copied to.
type ArchiveConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Region    string `json:"region" yaml:"region"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
	Bucket    string `json:"bucket" yaml:"bucket"`
}

// RetentionConfig controls pruning of the snapshot log.
type RetentionConfig struct {
	Period  Duration       `json:"period" yaml:"period"`
	Archive *ArchiveConfig `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// Config represents the configuration for the fleetwatch service.
type Config struct {
	ListenAddr     string          `json:"listen_addr" yaml:"listen_addr"`
	GrpcAddr       string          `json:"grpc_addr,omitempty" yaml:"grpc_addr,omitempty"`
	MaxConnections int             `json:"max_connections" yaml:"max_connections"`
	AllowedOrigins []string        `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	Database       DatabaseConfig  `json:"database" yaml:"database"`
	Balena         BalenaConfig    `json:"balena" yaml:"balena"`
	Slack          SlackConfig     `json:"slack" yaml:"slack"`
	Alerting       AlertingConfig  `json:"alerting" yaml:"alerting"`
	Heartbeat      HeartbeatConfig `json:"heartbeat" yaml:"heartbeat"`
	Schedule       ScheduleConfig  `json:"schedule" yaml:"schedule"`
	Retention      RetentionConfig `json:"retention" yaml:"retention"`
}
