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
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const nanosPerSecond = 1e9

// ToTimestamp formats t as "<unix seconds>[.<millis>]", the format of
// recorder event timestamps.
func ToTimestamp(t time.Time) string {
	unix := strconv.FormatInt(t.Unix(), 10)
	if millis := t.Nanosecond() / int(time.Millisecond); millis > 0 {
		return fmt.Sprintf("%s.%03d", unix, millis)
	}
	return unix
}

// ParseTimestamp parses a timestamp formatted by ToTimestamp. Fractions
// finer than milliseconds are accepted up to nanoseconds.
func ParseTimestamp(timestamp string) (time.Time, error) {
	sec, frac, hasFrac := strings.Cut(timestamp, ".")
	seconds, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", timestamp, err)
	}
	if !hasFrac {
		return time.Unix(seconds, 0), nil
	}
	if frac == "" || len(frac) > 9 {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: bad fraction", timestamp)
	}
	nanos, err := strconv.ParseInt((frac + "000000000")[:9], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", timestamp, err)
	}
	return time.Unix(seconds, nanos), nil
}

// ParseMeasuredDuration parses a Go duration ("4.2s", "4200ms") or a bare
// number interpreted in unit.
func ParseMeasuredDuration(s string, unit DurationUnit) (time.Duration, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return unit.Duration(v)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	return d, nil
}

// DurationFromSeconds converts fractional seconds, rounding to nanoseconds.
func DurationFromSeconds(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * nanosPerSecond))
}

func secondsToTicks(seconds float64, timecodeScaleNs uint64) float64 {
	return seconds * nanosPerSecond / float64(timecodeScaleNs)
}

func ticksToSeconds(ticks float64, timecodeScaleNs uint64) float64 {
	return ticks * float64(timecodeScaleNs) / nanosPerSecond
}
