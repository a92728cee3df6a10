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
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/seqsense/webmrepair/webmtest"
)

func repaired(t *testing.T, measured time.Duration, opts ...webmtest.BuildOption) []byte {
	t.Helper()
	res := RepairBuffer(webmtest.MustBuild(opts...), measured)
	if !res.Summary.Repaired {
		t.Fatalf("Repair failed: %v", res.Summary.Warnings)
	}
	return res.Data
}

func TestFullValidate(t *testing.T) {
	testCases := map[string]struct {
		input  []byte
		errors []string
	}{
		"OK": {
			input: repaired(t, 3*time.Second),
		},
		"DocTypeCaseInsensitive": {
			input: repaired(t, 3*time.Second, webmtest.WithDocType("WebM")),
		},
		"Matroska": {
			input:  repaired(t, 3*time.Second, webmtest.WithDocType("matroska")),
			errors: []string{"DocType must be 'webm', got 'matroska'"},
		},
		"MissingVideoTrack": {
			input:  repaired(t, 3*time.Second, webmtest.WithoutVideo(), webmtest.WithAudio()),
			errors: []string{"Missing video track"},
		},
		"CodecAndResolution": {
			input: repaired(t, 3*time.Second, webmtest.WithVideo("V_AV1", 640, 480)),
			errors: []string{
				"Unexpected codec V_AV1",
				"Resolution must be 1280x720, got 640x480",
			},
		},
		"FPS": {
			input:  repaired(t, 3*time.Second, webmtest.WithDefaultDuration(40000000)),
			errors: []string{"FPS must be close to 30, got 25.00"},
		},
		"UnknownFPS": {
			input:  repaired(t, 3*time.Second, webmtest.WithDefaultDuration(0)),
			errors: []string{"Unable to determine FPS"},
		},
		"ShortDuration": {
			input:  repaired(t, 500*time.Millisecond),
			errors: []string{"Duration must be > 0.5s, got 0.5"},
		},
		"NoDuration": {
			input:  webmtest.MustBuild(),
			errors: []string{"Duration must be > 0.5s, got none"},
		},
		"Everything": {
			input: webmtest.MustBuild(webmtest.WithDocType("mkv"), webmtest.WithoutVideo()),
			errors: []string{
				"DocType must be 'webm', got 'mkv'",
				"Missing video track",
				"Duration must be > 0.5s, got none",
			},
		},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			r, err := FullValidate(testCase.input, DefaultPolicy())
			if err != nil {
				t.Fatal(err)
			}
			expected := testCase.errors
			if expected == nil {
				expected = []string{}
			}
			if diff := cmp.Diff(expected, r.Errors); diff != "" {
				t.Errorf("Unexpected errors (-want +got):\n%s", diff)
			}
			if r.OK != (len(expected) == 0) {
				t.Errorf("Expected OK: %t, got %t", len(expected) == 0, r.OK)
			}
			err = r.Err()
			if r.OK {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrPolicyViolation) {
				t.Errorf("Expected ErrPolicyViolation, got %v", err)
			}
		})
	}
}

func TestFullValidate_report(t *testing.T) {
	r, err := FullValidate(repaired(t, 4200*time.Millisecond), DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	expected := map[string]interface{}{
		"ok":         true,
		"errors":     []interface{}{},
		"doc_type":   "webm",
		"duration_s": 4.2,
		"fps":        1e9 / 33333333.0,
		"width":      1280.0,
		"height":     720.0,
		"codec":      "V_VP9",
		"cue_points": 2.0,
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Unexpected report (-want +got):\n%s", diff)
	}

	missing, err := FullValidate(webmtest.MustBuild(webmtest.WithoutVideo()), DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if missing.Width != nil || missing.Codec != nil || missing.FPS != nil || missing.DurationSeconds != nil {
		t.Errorf("Expected absent values to be nil, got %+v", missing)
	}
}

func TestFullValidate_unscannable(t *testing.T) {
	if _, err := FullValidate([]byte{0x1A, 0x45}, DefaultPolicy()); !IsStructural(err) {
		t.Errorf("Expected structural error, got %v", err)
	}
	if IsStructural(ErrPolicyViolation) {
		t.Error("ErrPolicyViolation is not structural")
	}
}

func TestQuickCheck(t *testing.T) {
	testCases := map[string]struct {
		input    []byte
		expected QuickReport
	}{
		"Repaired": {
			input:    repaired(t, 3*time.Second),
			expected: QuickReport{OK: true, DurationSeconds: 3, CuePointCount: 2},
		},
		"Raw": {
			input:    webmtest.MustBuild(),
			expected: QuickReport{},
		},
		"StaleCuesWithoutDuration": {
			input:    webmtest.MustBuild(webmtest.WithStaleCues(false)),
			expected: QuickReport{CuePointCount: 2},
		},
		"DurationWithoutCues": {
			input:    webmtest.MustBuild(webmtest.WithDuration(3000)),
			expected: QuickReport{DurationSeconds: 3},
		},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			r, err := QuickCheck(testCase.input)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(testCase.expected, *r); diff != "" {
				t.Errorf("Unexpected report (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	testCases := map[string]struct {
		input    string
		expected Policy
		err      string
	}{
		"Empty": {
			input:    "",
			expected: DefaultPolicy(),
		},
		"Override": {
			input: "acceptedCodecs: [V_AV1]\ntargetWidth: 1920\ntargetHeight: 1080\ntargetFps: 60\n",
			expected: Policy{
				ExpectedDocType:    "webm",
				AcceptedCodecs:     []string{"V_AV1"},
				TargetWidth:        1920,
				TargetHeight:       1080,
				TargetFPS:          60,
				FPSTolerance:       2,
				MinDurationSeconds: 0.5,
			},
		},
		"UnknownField": {
			input: "targetDepth: 8\n",
			err:   "unmarshal policy",
		},
		"Invalid": {
			input: "expectedDocType: \"\"\ntargetFps: -1\n",
			err:   "multiple errors",
		},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			p, err := ParsePolicy([]byte(testCase.input))
			if testCase.err != "" {
				if err == nil || !strings.Contains(err.Error(), testCase.err) {
					t.Fatalf("Expected error containing '%s', got '%v'", testCase.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(testCase.expected, p); diff != "" {
				t.Errorf("Unexpected policy (-want +got):\n%s", diff)
			}
		})
	}
}
