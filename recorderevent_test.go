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

package webmrepair

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const eventLog = `{"EventType":"START","Timestamp":"1700000000.100"}
{"EventType":"CHUNK","SequenceIndex":1,"Path":"chunk-1.webm"}
{"EventType":"CHUNK","Path":"chunk-0.webm"}
{"EventType":"CHUNK","SequenceIndex":2,"Path":"chunk-2.webm"}
{"EventType":"STOP","Timestamp":"1700000004.300"}
`

func openMap(files map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		s, ok := files[path]
		if !ok {
			return nil, errors.New("no such file")
		}
		return []byte(s), nil
	}
}

func TestRecorderEvents(t *testing.T) {
	t.Run("Recording", func(t *testing.T) {
		events, err := ParseRecorderEvents(strings.NewReader(eventLog))
		if err != nil {
			t.Fatal(err)
		}
		if n := len(events); n != 5 {
			t.Fatalf("Expected 5 RecorderEvents, got %d", n)
		}
		rec, err := NewRecording(events, openMap(map[string]string{
			"chunk-0.webm": "a",
			"chunk-1.webm": "b",
			"chunk-2.webm": "c",
		}))
		if err != nil {
			t.Fatal(err)
		}
		if rec.MeasuredDuration != 4200*time.Millisecond {
			t.Errorf("Expected 4.2s, got %v", rec.MeasuredDuration)
		}
		expected := []Chunk{
			{Data: []byte("b"), SequenceIndex: 1},
			{Data: []byte("a"), SequenceIndex: 0},
			{Data: []byte("c"), SequenceIndex: 2},
		}
		if diff := cmp.Diff(expected, rec.Chunks); diff != "" {
			t.Errorf("Unexpected chunks (-want +got):\n%s", diff)
		}
		if s := string(concatChunks(rec.Chunks)); s != "abc" {
			t.Errorf("Expected chunks joined in sequence order, got '%s'", s)
		}
	})
	t.Run("ParseError", func(t *testing.T) {
		_, err := ParseRecorderEvents(strings.NewReader(`{"EventType":"START"}` + "\n{"))
		if err != io.ErrUnexpectedEOF {
			t.Fatalf("Expected error: '%v', got: '%v'", io.ErrUnexpectedEOF, err)
		}
	})
	t.Run("InvalidRecording", func(t *testing.T) {
		start := RecorderEvent{EventType: RecorderEventStart, Timestamp: "10"}
		stop := RecorderEvent{EventType: RecorderEventStop, Timestamp: "12.5"}
		chunk := RecorderEvent{EventType: RecorderEventChunk, Path: "chunk"}
		open := openMap(map[string]string{"chunk": "x"})

		testCases := map[string][]RecorderEvent{
			"NoStart": {chunk, stop},
			"NoStop":  {start, chunk},
			"StopBeforeStart": {
				{EventType: RecorderEventStart, Timestamp: "12"}, chunk,
				{EventType: RecorderEventStop, Timestamp: "11.999"},
			},
			"DuplicatedIndex": {start, chunk, chunk, stop},
			"UnknownEvent":    {start, {EventType: "PAUSE"}, stop},
			"MissingChunk":    {start, {EventType: RecorderEventChunk, Path: "lost"}, stop},
			"BadTimestamp":    {{EventType: RecorderEventStart, Timestamp: "yesterday"}, stop},
		}
		for name, events := range testCases {
			events := events
			t.Run(name, func(t *testing.T) {
				if _, err := NewRecording(events, open); err == nil {
					t.Error("Expected error")
				}
			})
		}

		rec, err := NewRecording([]RecorderEvent{start, chunk, stop}, open)
		if err != nil {
			t.Fatal(err)
		}
		if rec.MeasuredDuration != 2500*time.Millisecond {
			t.Errorf("Expected 2.5s, got %v", rec.MeasuredDuration)
		}
	})
}
