// Copyright 2021 SEQSENSE, Inc.
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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/seqsense/webmrepair"
	"github.com/seqsense/webmrepair/webmtest"
)

const eventLogName = "events.ndjson"

func newSampleCmd() *cobra.Command {
	var (
		output    string
		chunkDir  string
		chunkSize int
		clusters  int
		interval  uint64
		frames    int
		frameSize int
		knownSize bool
		duration  time.Duration
		codec     string
		width     uint64
		height    uint64
	)
	cmd := &cobra.Command{
		Use:   "sample [-o FILE] [--chunks DIR]",
		Short: "Write a synthetic recorder-style WebM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" && chunkDir == "" {
				return errors.New("either --output or --chunks must be specified")
			}
			opts := []webmtest.BuildOption{
				webmtest.WithVideo(codec, width, height),
				webmtest.WithClusters(webmtest.EvenClusters(clusters, interval, frames, frameSize)...),
			}
			if knownSize {
				opts = append(opts, webmtest.WithKnownSize())
			}
			b, err := webmtest.Build(opts...)
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, b, 0644); err != nil {
					return err
				}
			}
			if chunkDir != "" {
				if err := writeChunks(chunkDir, b, chunkSize, time.Now(), duration); err != nil {
					return err
				}
			}
			webmrepair.Logger().Infof("Wrote sample recording (bytes:%d clusters:%d)", len(b), clusters)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&output, "output", "o", "", "Output file")
	fl.StringVar(&chunkDir, "chunks", "", "Directory to write the recording as chunks and an event log")
	fl.IntVar(&chunkSize, "chunk-size", 64*1024, "Chunk size in bytes")
	fl.IntVar(&clusters, "clusters", 5, "Number of Clusters")
	fl.Uint64Var(&interval, "interval", 1000, "Cluster interval in ticks")
	fl.IntVar(&frames, "frames", 30, "Frames per Cluster")
	fl.IntVar(&frameSize, "frame-size", 1024, "Frame size in bytes")
	fl.BoolVar(&knownSize, "known-size", false, "Write sized Segment and Clusters")
	fl.DurationVar(&duration, "duration", 5*time.Second, "Recording duration written to the event log")
	fl.StringVar(&codec, "codec", "V_VP9", "Codec ID")
	fl.Uint64Var(&width, "width", 1280, "Pixel width")
	fl.Uint64Var(&height, "height", 720, "Pixel height")
	return cmd
}

// writeChunks splits b into chunk files and writes the event log a browser
// recorder would produce for them.
func writeChunks(dir string, b []byte, size int, start time.Time, duration time.Duration) error {
	if size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, eventLogName))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	events := []webmrepair.RecorderEvent{{
		EventType: webmrepair.RecorderEventStart,
		Timestamp: webmrepair.ToTimestamp(start),
	}}
	for i, chunk := range webmtest.Split(b, size) {
		name := fmt.Sprintf("chunk-%03d.webm", i)
		if err := os.WriteFile(filepath.Join(dir, name), chunk, 0644); err != nil {
			return err
		}
		events = append(events, webmrepair.RecorderEvent{
			EventType:     webmrepair.RecorderEventChunk,
			SequenceIndex: i,
			Path:          name,
		})
	}
	events = append(events, webmrepair.RecorderEvent{
		EventType: webmrepair.RecorderEventStop,
		Timestamp: webmrepair.ToTimestamp(start.Add(duration)),
	})
	for _, ev := range events {
		if err := enc.Encode(&ev); err != nil {
			return err
		}
	}
	return f.Close()
}
