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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seqsense/webmrepair"
)

type validateFlags struct {
	json         bool
	policyFile   string
	codecs       []string
	width        uint64
	height       uint64
	fps          float64
	fpsTolerance float64
	minDuration  float64
}

func newValidateCmd() *cobra.Command {
	f := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate [flags] FILE...",
		Short: "Verify WebM container constraints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := f.policy(cmd)
			if err != nil {
				return err
			}
			return runValidate(cmd, f.json, policy, args)
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&f.json, "json", false, "Output machine-readable JSON")
	fl.StringVar(&f.policyFile, "policy", "", "YAML policy file")
	fl.StringSliceVar(&f.codecs, "codec", nil, "Accepted codec IDs")
	fl.Uint64Var(&f.width, "width", 0, "Expected pixel width")
	fl.Uint64Var(&f.height, "height", 0, "Expected pixel height")
	fl.Float64Var(&f.fps, "fps", 0, "Expected frame rate")
	fl.Float64Var(&f.fpsTolerance, "fps-tolerance", 0, "Accepted frame rate deviation")
	fl.Float64Var(&f.minDuration, "min-duration", 0, "Duration in seconds the recording must exceed")
	return cmd
}

// policy loads the policy file if given and applies the flags set explicitly.
func (f *validateFlags) policy(cmd *cobra.Command) (webmrepair.Policy, error) {
	policy := webmrepair.DefaultPolicy()
	if f.policyFile != "" {
		b, err := os.ReadFile(f.policyFile)
		if err != nil {
			return webmrepair.Policy{}, err
		}
		if policy, err = webmrepair.ParsePolicy(b); err != nil {
			return webmrepair.Policy{}, err
		}
	}
	fl := cmd.Flags()
	if fl.Changed("codec") {
		policy.AcceptedCodecs = f.codecs
	}
	if fl.Changed("width") {
		policy.TargetWidth = f.width
	}
	if fl.Changed("height") {
		policy.TargetHeight = f.height
	}
	if fl.Changed("fps") {
		policy.TargetFPS = f.fps
	}
	if fl.Changed("fps-tolerance") {
		policy.FPSTolerance = f.fpsTolerance
	}
	if fl.Changed("min-duration") {
		policy.MinDurationSeconds = f.minDuration
	}
	if err := policy.Validate(); err != nil {
		return webmrepair.Policy{}, err
	}
	return policy, nil
}

type fileError struct {
	Error string `json:"error"`
}

func runValidate(cmd *cobra.Command, asJSON bool, policy webmrepair.Policy, files []string) error {
	w := &reportWriter{Writer: cmd.OutOrStdout()}
	results := make(map[string]interface{}, len(files))
	failed := false
	for _, file := range files {
		report, err := validateFile(file, policy)
		switch {
		case err != nil:
			failed = true
			results[file] = fileError{Error: err.Error()}
			if !asJSON {
				w.Printf("%s: ERROR %v\n", file, err)
			}
		case !report.OK:
			failed = true
			results[file] = report
			if !asJSON {
				w.Printf("%s: ERROR %s\n", file, strings.Join(report.Errors, "; "))
			}
		default:
			results[file] = report
			if !asJSON {
				w.Printf("%s: codec=%s size=%dx%d fps=%.2f duration=%.3fs\n",
					file, *report.Codec, *report.Width, *report.Height, *report.FPS, *report.DurationSeconds)
			}
		}
	}
	if asJSON {
		w.JSON(results)
	}
	if err := w.Err(); err != nil {
		return err
	}
	if failed {
		return errFailed
	}
	return nil
}

func validateFile(file string, policy webmrepair.Policy) (*webmrepair.Report, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return webmrepair.FullValidate(b, policy)
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check that recordings declare a Duration and have cue points",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := &reportWriter{Writer: cmd.OutOrStdout()}
			failed := false
			for _, file := range args {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				r, err := webmrepair.QuickCheck(b)
				if err != nil {
					failed = true
					w.Printf("%s: ERROR %v\n", file, err)
					continue
				}
				if !r.OK {
					failed = true
				}
				w.Printf("%s: ok=%t duration=%.3fs cue_points=%d\n", file, r.OK, r.DurationSeconds, r.CuePointCount)
			}
			if err := w.Err(); err != nil {
				return err
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the structure of a recording as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := webmrepair.Scan(b)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			w := &reportWriter{Writer: cmd.OutOrStdout()}
			w.JSON(doc)
			return w.Err()
		},
	}
}
