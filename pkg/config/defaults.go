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
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultListenAddr     = ":8080"
	defaultMaxConnections = 256
	defaultDSN            = "fleetwatch.db"
	defaultBalenaURL      = "https://api.balena-cloud.com"
	defaultBalenaTimeout  = 30 * time.Second
	defaultRateLimit      = 1.0
	defaultBurst          = 2
	defaultSlackTimeout   = 10 * time.Second
	defaultThreshold      = 3
	defaultWindow         = 36 * time.Hour
	defaultHeartbeat      = 6 * time.Hour
	defaultRetention      = 30 * 24 * time.Hour
)

var (
	errMissingAppID       = errors.New("balena app_id is required")
	errMissingToken       = errors.New("balena bearer_token is required")
	errUnknownDriver      = errors.New("unknown database driver")
	errInvalidThreshold   = errors.New("alerting threshold must be at least 1")
	errInvalidWindow      = errors.New("alerting window must be positive")
	errInvalidHeartbeat   = errors.New("heartbeat interval must be positive")
	errRetentionTooShort  = errors.New("retention period must be longer than the alerting window")
	errMissingBucket      = errors.New("retention archive bucket is required")
	errMissingArchiveHost = errors.New("retention archive endpoint is required")
)

// DefaultIgnoreList holds the devices that are known to be decommissioned.
func DefaultIgnoreList() []string {
	return []string{"nameless-zombie", "morning-apple", "frosty-desert"}
}

// ApplyEnv overrides file values with the deployment environment. The
// variable names match the ones the dashboard has always been deployed with.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("BALENA_APP_ID"); v != "" {
		c.Balena.AppID = v
	}

	if v := getenv("BALENA_API_BEARER"); v != "" {
		c.Balena.BearerToken = v
	}

	if v := getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.Slack.WebhookURL = v
	}

	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			c.Database.Driver = DriverPostgres
		}
	}

	if v := getenv("FLEETWATCH_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.MaxConnections == 0 {
		c.MaxConnections = defaultMaxConnections
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}

	if c.Database.DSN == "" && c.Database.Driver == DriverSQLite {
		c.Database.DSN = defaultDSN
	}

	c.Balena.applyDefaults()

	if c.Slack.Timeout == 0 {
		c.Slack.Timeout = Duration(defaultSlackTimeout)
	}

	if c.Alerting.IgnoreList == nil {
		c.Alerting.IgnoreList = DefaultIgnoreList()
	}

	if c.Alerting.Threshold == 0 {
		c.Alerting.Threshold = defaultThreshold
	}

	if c.Alerting.Window == 0 {
		c.Alerting.Window = Duration(defaultWindow)
	}

	if c.Heartbeat.Interval == 0 {
		c.Heartbeat.Interval = Duration(defaultHeartbeat)
	}

	if c.Retention.Period == 0 {
		c.Retention.Period = Duration(defaultRetention)
	}
}

func (b *BalenaConfig) applyDefaults() {
	if b.APIURL == "" {
		b.APIURL = defaultBalenaURL
	}

	if b.Timeout == 0 {
		b.Timeout = Duration(defaultBalenaTimeout)
	}

	if b.RateLimit == 0 {
		b.RateLimit = defaultRateLimit
	}

	if b.Burst == 0 {
		b.Burst = defaultBurst
	}
}

// Validate implements Validator.
func (c *Config) Validate() error {
	if c.Balena.AppID == "" {
		return errMissingAppID
	}

	if c.Balena.BearerToken == "" {
		return errMissingToken
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, c.Database.Driver)
	}

	if c.Alerting.Threshold < 1 {
		return errInvalidThreshold
	}

	if c.Alerting.Window <= 0 {
		return errInvalidWindow
	}

	if c.Heartbeat.Interval <= 0 {
		return errInvalidHeartbeat
	}

	if c.Retention.Period <= c.Alerting.Window {
		return errRetentionTooShort
	}

	if a := c.Retention.Archive; a != nil {
		if a.Endpoint == "" {
			return errMissingArchiveHost
		}

		if a.Bucket == "" {
			return errMissingBucket
		}
	}

	return nil
}
