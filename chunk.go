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
	"sort"
	"time"
)

// Chunk is a piece of a recording as handed over by the recorder.
// SequenceIndex orders the chunks; the recorder's own event order is not trusted.
type Chunk struct {
	Data          []byte
	SequenceIndex int
}

// Recording is a set of chunks and the wall-clock time between record start
// and record stop, measured independently of the container contents.
type Recording struct {
	Chunks           []Chunk
	MeasuredDuration time.Duration
}

// Repair is shorthand of Repair(r.Chunks, r.MeasuredDuration, opts...).
func (r *Recording) Repair(opts ...RepairOption) *Result {
	return Repair(r.Chunks, r.MeasuredDuration, opts...)
}

// concatChunks joins the chunks ordered by SequenceIndex into a new buffer.
func concatChunks(chunks []Chunk) []byte {
	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SequenceIndex < sorted[j].SequenceIndex
	})
	var n int
	for _, c := range sorted {
		n += len(c.Data)
	}
	buf := make([]byte, 0, n)
	for _, c := range sorted {
		buf = append(buf, c.Data...)
	}
	return buf
}
