// Copyright 2026 SEQSENSE, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/seqsense/webmrepair"
)

func newRepairCmd() *cobra.Command {
	var (
		duration   string
		events     string
		unit       string
		output     string
		writingApp string
		noVerify   bool
	)
	cmd := &cobra.Command{
		Use:   "repair (--duration D | --events FILE) -o OUTPUT [CHUNK...]",
		Short: "Join recorder chunks and rewrite Duration and Cues",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("output file must be specified")
			}
			var rec *webmrepair.Recording
			switch {
			case duration != "" && events != "":
				return errors.New("--duration and --events are exclusive")
			case events != "":
				if len(args) > 0 {
					return errors.New("chunks are listed in the event log")
				}
				var err error
				if rec, err = loadRecording(events); err != nil {
					return err
				}
			case duration != "":
				if len(args) == 0 {
					return errors.New("no chunk specified")
				}
				measured, err := webmrepair.ParseMeasuredDuration(duration, webmrepair.DurationUnit(unit))
				if err != nil {
					return err
				}
				rec = &webmrepair.Recording{MeasuredDuration: measured}
				for i, file := range args {
					b, err := os.ReadFile(file)
					if err != nil {
						return err
					}
					rec.Chunks = append(rec.Chunks, webmrepair.Chunk{Data: b, SequenceIndex: i})
				}
			default:
				return errors.New("either --duration or --events must be specified")
			}

			res := rec.Repair(
				webmrepair.WithWritingApp(writingApp),
				webmrepair.WithVerify(!noVerify),
			)
			if err := os.WriteFile(output, res.Data, 0644); err != nil {
				return err
			}
			w := &reportWriter{Writer: cmd.OutOrStdout()}
			w.JSON(res.Summary)
			return w.Err()
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&duration, "duration", "", "Measured duration (\"4.2s\", or a number in --unit)")
	fl.StringVar(&events, "events", "", "Recorder event log (NDJSON)")
	fl.StringVar(&unit, "unit", string(webmrepair.DurationUnitSeconds), "Unit of a bare --duration number (ms or s)")
	fl.StringVarP(&output, "output", "o", "", "Repaired output file")
	fl.StringVar(&writingApp, "writing-app", "webmtool", "WritingApp of a synthesized Info")
	fl.BoolVar(&noVerify, "no-verify", false, "Skip rescanning the repaired recording")
	return cmd
}

// loadRecording reads an event log. Chunk paths are relative to the log.
func loadRecording(events string) (*webmrepair.Recording, error) {
	b, err := os.ReadFile(events)
	if err != nil {
		return nil, err
	}
	evs, err := webmrepair.ParseRecorderEvents(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(events)
	return webmrepair.NewRecording(evs, func(path string) ([]byte, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return os.ReadFile(path)
	})
}
