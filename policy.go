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

	"gopkg.in/yaml.v2"
)

// Policy is the set of constraints a finished recording must satisfy.
type Policy struct {
	ExpectedDocType    string   `yaml:"expectedDocType" json:"expectedDocType"`
	AcceptedCodecs     []string `yaml:"acceptedCodecs" json:"acceptedCodecs"`
	TargetWidth        uint64   `yaml:"targetWidth" json:"targetWidth"`
	TargetHeight       uint64   `yaml:"targetHeight" json:"targetHeight"`
	TargetFPS          float64  `yaml:"targetFps" json:"targetFps"`
	FPSTolerance       float64  `yaml:"fpsTolerance" json:"fpsTolerance"`
	MinDurationSeconds float64  `yaml:"minDurationSeconds" json:"minDurationSeconds"`
}

// DefaultPolicy returns the policy of exported clips:
// VP8 or VP9 WebM, 1280x720, 30±2 fps, longer than half a second.
func DefaultPolicy() Policy {
	return Policy{
		ExpectedDocType:    "webm",
		AcceptedCodecs:     []string{"V_VP8", "V_VP9"},
		TargetWidth:        1280,
		TargetHeight:       720,
		TargetFPS:          30,
		FPSTolerance:       2,
		MinDurationSeconds: 0.5,
	}
}

// ParsePolicy reads a YAML policy. Omitted fields keep the DefaultPolicy values.
func ParsePolicy(b []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.UnmarshalStrict(b, &p); err != nil {
		return Policy{}, fmt.Errorf("unmarshal policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	var errs multiError
	if p.ExpectedDocType == "" {
		errs.Add(errors.New("expectedDocType must not be empty"))
	}
	if len(p.AcceptedCodecs) == 0 {
		errs.Add(errors.New("acceptedCodecs must not be empty"))
	}
	if p.TargetFPS <= 0 {
		errs.Add(fmt.Errorf("targetFps must be positive, got %v", p.TargetFPS))
	}
	if p.FPSTolerance < 0 {
		errs.Add(fmt.Errorf("fpsTolerance must not be negative, got %v", p.FPSTolerance))
	}
	if p.MinDurationSeconds < 0 {
		errs.Add(fmt.Errorf("minDurationSeconds must not be negative, got %v", p.MinDurationSeconds))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}

func (p Policy) acceptsCodec(codec string) bool {
	for _, c := range p.AcceptedCodecs {
		if c == codec {
			return true
		}
	}
	return false
}
