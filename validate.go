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

package webmrepair

import (
	"errors"
	"fmt"
	"strings"
)

// QuickReport is the result of QuickCheck.
type QuickReport struct {
	OK              bool    `json:"ok"`
	DurationSeconds float64 `json:"duration_s"`
	CuePointCount   int     `json:"cue_points"`
}

// QuickCheck verifies that buf declares a positive Duration and has at least
// one cue point. It is meant as a sanity probe right after Repair.
func QuickCheck(buf []byte) (*QuickReport, error) {
	doc, err := Scan(buf)
	if err != nil {
		return nil, err
	}
	r := &QuickReport{CuePointCount: len(doc.CuePoints)}
	if d, ok := doc.Duration(); ok {
		r.DurationSeconds = d
	}
	r.OK = r.DurationSeconds > 0 && r.CuePointCount > 0
	return r, nil
}

// Report is the result of FullValidate. Optional values are nil when the
// recording doesn't declare them.
type Report struct {
	OK              bool     `json:"ok"`
	Errors          []string `json:"errors"`
	DocType         string   `json:"doc_type"`
	DurationSeconds *float64 `json:"duration_s"`
	FPS             *float64 `json:"fps"`
	Width           *uint64  `json:"width"`
	Height          *uint64  `json:"height"`
	Codec           *string  `json:"codec"`
	CuePointCount   int      `json:"cue_points"`
}

// Err returns the violations as an error matching ErrPolicyViolation,
// or nil if the report is OK.
func (r *Report) Err() error {
	var errs multiError
	for _, e := range r.Errors {
		errs.Add(fmt.Errorf("%w: %s", ErrPolicyViolation, e))
	}
	return errs.ErrorOrNil()
}

// FullValidate checks buf against policy. Every violation is collected in
// the report; an error is returned only if buf can't be scanned.
func FullValidate(buf []byte, policy Policy) (*Report, error) {
	doc, err := Scan(buf)
	if err != nil {
		return nil, err
	}
	return ValidateDocument(doc, policy), nil
}

// ValidateDocument checks an already scanned document against policy.
func ValidateDocument(doc *Document, policy Policy) *Report {
	r := &Report{
		Errors:        []string{},
		DocType:       doc.DocType,
		CuePointCount: len(doc.CuePoints),
	}
	violation := func(format string, args ...interface{}) {
		r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	}

	if !strings.EqualFold(doc.DocType, policy.ExpectedDocType) {
		violation("DocType must be '%s', got '%s'", policy.ExpectedDocType, doc.DocType)
	}

	switch track, ok := doc.VideoTrack(); {
	case !ok:
		violation("Missing video track")
	default:
		if n := len(doc.Tracks); n > 1 {
			violation("Expected exactly one video track, got %d", n)
		}
		codec, width, height := track.CodecID, track.PixelWidth, track.PixelHeight
		r.Codec, r.Width, r.Height = &codec, &width, &height

		if !policy.acceptsCodec(track.CodecID) {
			violation("Unexpected codec %s", track.CodecID)
		}
		if width != policy.TargetWidth || height != policy.TargetHeight {
			violation("Resolution must be %dx%d, got %dx%d",
				policy.TargetWidth, policy.TargetHeight, width, height)
		}
		if track.DefaultDurationNs == 0 {
			violation("Unable to determine FPS")
			break
		}
		fps := nanosPerSecond / float64(track.DefaultDurationNs)
		r.FPS = &fps
		if fps < policy.TargetFPS-policy.FPSTolerance || fps > policy.TargetFPS+policy.FPSTolerance {
			violation("FPS must be close to %g, got %.2f", policy.TargetFPS, fps)
		}
	}

	if d, ok := doc.Duration(); ok {
		r.DurationSeconds = &d
		if d <= policy.MinDurationSeconds {
			violation("Duration must be > %gs, got %g", policy.MinDurationSeconds, d)
		}
	} else {
		violation("Duration must be > %gs, got none", policy.MinDurationSeconds)
	}

	r.OK = len(r.Errors) == 0
	return r
}

// IsStructural reports whether err is a structural parse error returned by Scan.
func IsStructural(err error) bool {
	return errors.Is(err, ErrMissingHeader) ||
		errors.Is(err, ErrMissingSegment) ||
		errors.Is(err, ErrTruncatedElement) ||
		errors.Is(err, ErrMalformedVint)
}
