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

// Package style holds the terminal styles used by the fleetwatch CLI.
package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

var (
	// Colors
	Primary = lipgloss.Color("#7C3AED")
	Green   = lipgloss.Color("#10B981")
	Red     = lipgloss.Color("#EF4444")
	Yellow  = lipgloss.Color("#F59E0B")
	Dim     = lipgloss.Color("#6B7280")
	White   = lipgloss.Color("#F9FAFB")

	Banner = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
		Foreground(Dim).
		Italic(true)

	Bold      = lipgloss.NewStyle().Bold(true).Foreground(White)
	Healthy   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Unhealthy = lipgloss.NewStyle().Foreground(Red).Bold(true)
	Warning   = lipgloss.NewStyle().Foreground(Yellow)
	DimText   = lipgloss.NewStyle().Foreground(Dim)

	DotHealthy   = Healthy.Render("●")
	DotUnhealthy = Unhealthy.Render("●")

	TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Dim).
		PaddingRight(2)

	ErrorBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Red).
		Foreground(Red).
		Padding(0, 1).
		MarginTop(1)

	SuccessBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Green).
		Foreground(Green).
		Padding(0, 1).
		MarginTop(1)

	Key = lipgloss.NewStyle().Foreground(Dim).Width(14)
	Val = lipgloss.NewStyle().Foreground(White)
)

func StatusDot(online bool) string {
	if online {
		return DotHealthy
	}

	return DotUnhealthy
}

// KeyValue renders one aligned "key value" line.
func KeyValue(key, value string) string {
	return Key.Render(key) + Val.Render(value)
}

// DeviceTable renders the fleet as one row per device, offline devices first.
func DeviceTable(devices []models.DeviceObservation) string {
	var b strings.Builder

	b.WriteString(TableHeader.Render(fmt.Sprintf("  %-2s  %-32s %s", "", "DEVICE", "STATUS")))
	b.WriteString("\n")

	for _, online := range []bool{false, true} {
		for _, d := range devices {
			if d.IsOnline != online {
				continue
			}

			status := Unhealthy.Render(string(models.StatusOffline))
			if online {
				status = Healthy.Render(string(models.StatusOnline))
			}

			fmt.Fprintf(&b, "  %s  %-32s %s\n", StatusDot(online), d.DeviceID, status)
		}
	}

	return b.String()
}

// OfflineReport renders the offline counts, highlighting those at or over
// threshold.
func OfflineReport(report []models.OfflineFrequency, threshold int64) string {
	if len(report) == 0 {
		return DimText.Render("No offline snapshots in the window.") + "\n"
	}

	var b strings.Builder

	b.WriteString(TableHeader.Render(fmt.Sprintf("  %-32s %s", "DEVICE", "OFFLINE")))
	b.WriteString("\n")

	for _, r := range report {
		count := fmt.Sprintf("%d", r.OfflineCount)
		if r.OfflineCount >= threshold {
			count = Unhealthy.Render(count)
		} else {
			count = Warning.Render(count)
		}

		fmt.Fprintf(&b, "  %-32s %s\n", r.DeviceID, count)
	}

	return b.String()
}
