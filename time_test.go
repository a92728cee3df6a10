// Copyright 2020 SEQSENSE, Inc.
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
	"testing"
	"time"
)

func Test_ToTimestamp(t *testing.T) {
	testCases := map[string]struct {
		input    time.Time
		expected string
	}{
		"MillisIsZero": {
			time.Unix(1, int64(time.Millisecond-1)),
			"1",
		},
		"MillisIsOneDigit": {
			time.Unix(0, int64(time.Millisecond)),
			"0.001",
		},
		"MillisIsThreeDigits": {
			time.Unix(1700000000, 123*int64(time.Millisecond)),
			"1700000000.123",
		},
	}
	for n, c := range testCases {
		c := c
		t.Run(n, func(t *testing.T) {
			ts := ToTimestamp(c.input)
			if ts != c.expected {
				t.Errorf("Expected timestamp: '%v', got: '%v'", c.expected, ts)
			}
		})
	}
}

func Test_ParseTimestamp(t *testing.T) {
	testCases := map[string]struct {
		input    string
		expected time.Time
		err      bool
	}{
		"MillisIsZero": {
			input:    "1",
			expected: time.Unix(1, 0),
		},
		"MillisIsTwoDigits": {
			input:    "0.012",
			expected: time.Unix(0, 12*int64(time.Millisecond)),
		},
		"ConsiderFloatingPointError": {
			input:    "1000000000.607",
			expected: time.Unix(1000000000, 607*int64(time.Millisecond)),
		},
		"Nanos": {
			input:    "1.000000001",
			expected: time.Unix(1, 1),
		},
		"EmptyFraction": {
			input: "1.",
			err:   true,
		},
		"TooFine": {
			input: "1.0000000001",
			err:   true,
		},
		"NotANumber": {
			input: "now",
			err:   true,
		},
	}
	for n, c := range testCases {
		c := c
		t.Run(n, func(t *testing.T) {
			ts, err := ParseTimestamp(c.input)
			if c.err {
				if err == nil {
					t.Errorf("Expected error, got %v", ts)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to parseTimestamp: %v", err)
			}
			if !ts.Equal(c.expected) {
				t.Errorf("Expected timestamp: '%v', got: '%v'", c.expected, ts)
			}
		})
	}
}

func TestParseMeasuredDuration(t *testing.T) {
	testCases := map[string]struct {
		input    string
		unit     DurationUnit
		expected time.Duration
		err      bool
	}{
		"GoDuration":   {input: "4.2s", expected: 4200 * time.Millisecond},
		"GoDurationMs": {input: "4200ms", unit: DurationUnitSeconds, expected: 4200 * time.Millisecond},
		"BareSeconds":  {input: "4.2", expected: 4200 * time.Millisecond},
		"BareMillis":   {input: "4200", unit: DurationUnitMilliseconds, expected: 4200 * time.Millisecond},
		"UnknownUnit":  {input: "4", unit: "min", err: true},
		"Invalid":      {input: "four", err: true},
		"NaN":          {input: "NaN", err: true},
	}
	for n, c := range testCases {
		c := c
		t.Run(n, func(t *testing.T) {
			d, err := ParseMeasuredDuration(c.input, c.unit)
			if c.err {
				if err == nil {
					t.Errorf("Expected error, got %v", d)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d != c.expected {
				t.Errorf("Expected %v, got %v", c.expected, d)
			}
		})
	}
}

func TestTicks(t *testing.T) {
	testCases := map[string]struct {
		seconds float64
		scale   uint64
		ticks   float64
	}{
		"Millisecond": {seconds: 4.5, scale: 1000000, ticks: 4500},
		"Microsecond": {seconds: 0.5, scale: 1000, ticks: 500000},
	}
	for n, c := range testCases {
		c := c
		t.Run(n, func(t *testing.T) {
			if ticks := secondsToTicks(c.seconds, c.scale); ticks != c.ticks {
				t.Errorf("Expected %f ticks, got %f", c.ticks, ticks)
			}
			if s := ticksToSeconds(c.ticks, c.scale); s != c.seconds {
				t.Errorf("Expected %f seconds, got %f", c.seconds, s)
			}
		})
	}
}
