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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfreeman451/fleetwatch/pkg/alerts"
	"github.com/mfreeman451/fleetwatch/pkg/health"
	"github.com/mfreeman451/fleetwatch/pkg/snapshot"
	"github.com/mfreeman451/fleetwatch/pkg/style"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one health check and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeApp(a)

			res, err := a.checker.Run(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), style.ErrorBox.Render(err.Error()))

				return err
			}

			printResult(cmd.OutOrStdout(), res, cfg.Alerting.Threshold)

			return nil
		},
	}
}

func newPruneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete snapshots older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeApp(a)

			res, err := a.pruner.Prune(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), style.ErrorBox.Render(err.Error()))

				return err
			}

			printPrune(cmd.OutOrStdout(), res)

			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

func closeApp(a *app) {
	if err := a.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func printResult(w io.Writer, res *health.Result, threshold int64) {
	offline := 0

	for _, d := range res.Devices {
		if !d.IsOnline {
			offline++
		}
	}

	fmt.Fprintln(w, style.Banner.Render("FLEETWATCH")+
		style.Subtitle.Render(fmt.Sprintf("  %d device(s), %d offline", len(res.Devices), offline)))
	fmt.Fprintln(w, style.KeyValue("run", res.RunID))
	fmt.Fprintln(w, style.KeyValue("took", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond).String()))
	fmt.Fprintln(w, style.KeyValue("snapshot", snapshotState(res)))
	fmt.Fprintln(w)
	fmt.Fprint(w, style.DeviceTable(res.Devices))
	fmt.Fprintln(w)
	fmt.Fprint(w, style.OfflineReport(res.Report, threshold))

	if state := dispatchState(res.Dispatch); state != "" {
		fmt.Fprintln(w, state)
	}
}

func dispatchState(d alerts.DispatchResult) string {
	switch {
	case d.Err != nil:
		return style.ErrorBox.Render("alert failed: " + d.Err.Error())
	case d.Sent:
		return style.SuccessBox.Render(fmt.Sprintf("alerted on %d device(s)", len(d.Alerted)))
	case d.Cooldown:
		return style.Warning.Render("alert suppressed by webhook cooldown")
	case d.Suppressed:
		return style.Warning.Render("alert suppressed until the next snapshot is written")
	default:
		return ""
	}
}

func snapshotState(res *health.Result) string {
	switch {
	case res.Persist.Err != nil:
		return style.Unhealthy.Render("failed: " + res.Persist.Err.Error())
	case res.Persist.Written:
		return style.Healthy.Render(fmt.Sprintf("written (%d rows)", res.Persist.Rows))
	default:
		return style.DimText.Render("skipped, heartbeat is recent")
	}
}

func printPrune(w io.Writer, res snapshot.PruneResult) {
	fmt.Fprintln(w, style.KeyValue("cutoff", res.Cutoff.Format(time.RFC3339)))
	fmt.Fprintln(w, style.KeyValue("deleted", fmt.Sprintf("%d", res.Deleted)))

	if res.ArchiveKey != "" {
		fmt.Fprintln(w, style.KeyValue("archived", fmt.Sprintf("%d to %s", res.Archived, res.ArchiveKey)))
	}
}
