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

package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

const (
	DefaultThreshold = 3
	DefaultWindow    = 36 * time.Hour
)

// DispatcherConfig controls which devices are reported.
type DispatcherConfig struct {
	// IgnoreList holds device ids that never alert.
	IgnoreList []string
	// Threshold is the minimum offline count that alerts.
	Threshold int64
	// Window is the span the counts cover, used in the message text.
	Window time.Duration
}

// DispatchResult reports what a Dispatch call did.
type DispatchResult struct {
	// Alerted is the filtered selection, set even when nothing was sent.
	Alerted    []models.OfflineFrequency
	Sent       bool
	Suppressed bool

	// Cooldown is set with Suppressed when the webhook cooldown held the
	// alert back. Otherwise no snapshot was written this run.
	Cooldown bool
	Err      error
}

// Dispatcher turns an offline report into at most one notification per run.
type Dispatcher struct {
	ignore    map[string]struct{}
	threshold int64
	window    time.Duration
	alerter   AlertService
}

func NewDispatcher(cfg DispatcherConfig, alerter AlertService) *Dispatcher {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	ignore := make(map[string]struct{}, len(cfg.IgnoreList))
	for _, id := range cfg.IgnoreList {
		ignore[id] = struct{}{}
	}

	return &Dispatcher{
		ignore:    ignore,
		threshold: threshold,
		window:    window,
		alerter:   alerter,
	}
}

// Select drops ignored devices and keeps those at or above the threshold.
func (d *Dispatcher) Select(report []models.OfflineFrequency) []models.OfflineFrequency {
	selected := make([]models.OfflineFrequency, 0, len(report))

	for _, r := range report {
		if _, ignored := d.ignore[r.DeviceID]; ignored {
			continue
		}

		if r.OfflineCount >= d.threshold {
			selected = append(selected, r)
		}
	}

	return selected
}

// Dispatch sends one notification listing every selected device, but only
// when this run wrote a snapshot batch. Notification failures are returned
// in the result and never abort the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, report []models.OfflineFrequency, snapshotWritten bool) DispatchResult {
	result := DispatchResult{Alerted: d.Select(report)}

	if len(result.Alerted) == 0 {
		return result
	}

	if !snapshotWritten {
		log.Printf("alerts: %d devices over threshold, suppressed until the next snapshot", len(result.Alerted))

		result.Suppressed = true

		return result
	}

	if d.alerter == nil || !d.alerter.IsEnabled() {
		log.Printf("alerts: %d devices over threshold, no webhook configured", len(result.Alerted))

		return result
	}

	if err := d.alerter.Alert(ctx, d.buildAlert(result.Alerted)); err != nil {
		if errors.Is(err, ErrWebhookCooldown) {
			result.Suppressed = true
			result.Cooldown = true

			return result
		}

		log.Printf("alerts: failed to send notification: %v", err)

		result.Err = fmt.Errorf("%w: %w", ErrNotification, err)

		return result
	}

	result.Sent = true

	return result
}

func (d *Dispatcher) buildAlert(devices []models.OfflineFrequency) *WebhookAlert {
	window := formatWindow(d.window)

	alert := &WebhookAlert{
		Title: fmt.Sprintf("The following devices have been offline in the last %s:", window),
		Color: SlackColorDanger,
		Lines: make([]string, 0, len(devices)),
	}

	for _, dev := range devices {
		alert.Lines = append(alert.Lines,
			fmt.Sprintf("%s has been offline %d times in the last %s", dev.DeviceID, dev.OfflineCount, window))
	}

	return alert
}

func formatWindow(w time.Duration) string {
	if w%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int64(w/time.Hour))
	}

	return w.String()
}
