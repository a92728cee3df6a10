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

// Package webmrepair reads, repairs and validates WebM (Matroska/EBML)
// recordings produced by browser-side media recorders.
//
// Recorders stream the container while encoding, so the file they hand over
// has no Duration and no Cues. Repair rewrites both from the recorded
// Clusters and a wall-clock duration measured by the caller, and
// FullValidate certifies the result against a Policy.
package webmrepair

const (
	// MuxingApp is written to synthesized Info elements.
	MuxingApp = "webmrepair"
	// DefaultTimecodeScale is the Matroska default TimecodeScale in nanoseconds.
	DefaultTimecodeScale = 1000000
)
