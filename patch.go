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
	"fmt"
	"sort"
)

// Patch replaces the source bytes [Start, End) with Replacement.
// Offsets always refer to the original, unpatched buffer.
type Patch struct {
	Start       int
	End         int
	Replacement []byte
}

// Delta returns the change of buffer length caused by the patch.
func (p Patch) Delta() int {
	return len(p.Replacement) - (p.End - p.Start)
}

func (p Patch) overlaps(q Patch) bool {
	if p.Start == q.Start {
		// Two insertions at the same offset have no defined order.
		return true
	}
	return p.Start < q.End && q.Start < p.End
}

type patchSet []Patch

func (s *patchSet) add(p Patch) (int, error) {
	if p.Start < 0 || p.End < p.Start {
		return 0, fmt.Errorf("invalid patch range [%d, %d)", p.Start, p.End)
	}
	for _, q := range *s {
		if p.overlaps(q) {
			return 0, fmt.Errorf("patch [%d, %d) overlaps [%d, %d)", p.Start, p.End, q.Start, q.End)
		}
	}
	*s = append(*s, p)
	return len(*s) - 1, nil
}

// replace swaps the replacement of a placeholder patch. The length must not
// change since other replacements were computed with its delta.
func (s patchSet) replace(i int, b []byte) error {
	if len(b) != len(s[i].Replacement) {
		return fmt.Errorf("replacement of patch at %d changed length from %d to %d",
			s[i].Start, len(s[i].Replacement), len(b))
	}
	s[i].Replacement = b
	return nil
}

// adjust maps an offset of the original buffer into the patched buffer,
// counting every patch starting at or before it.
func (s patchSet) adjust(offset int) int {
	ret := offset
	for _, p := range s {
		if p.Start <= offset {
			ret += p.Delta()
		}
	}
	return ret
}

// adjustBefore counts only the patches starting strictly before offset.
func (s patchSet) adjustBefore(offset int) int {
	ret := offset
	for _, p := range s {
		if p.Start < offset {
			ret += p.Delta()
		}
	}
	return ret
}

// relocate returns the new offset of the element starting at offset.
// An element replaced by a patch starts where its replacement starts.
func (s patchSet) relocate(offset int) int {
	for _, p := range s {
		if p.Start == offset && p.End > p.Start {
			return s.adjustBefore(offset)
		}
	}
	return s.adjust(offset)
}

func (s patchSet) delta() int {
	var d int
	for _, p := range s {
		d += p.Delta()
	}
	return d
}

// applyPatches returns a patched copy of src. Patches are spliced from the
// highest start to the lowest so that pending offsets stay valid.
func applyPatches(src []byte, patches []Patch) []byte {
	sorted := make([]Patch, len(patches))
	copy(sorted, patches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	var grow int
	for _, p := range sorted {
		if d := p.Delta(); d > 0 {
			grow += d
		} else {
			grow -= d
		}
	}
	out := make([]byte, len(src), len(src)+grow)
	copy(out, src)

	for _, p := range sorted {
		n, d := len(out), p.Delta()
		switch {
		case d > 0:
			out = out[:n+d]
			copy(out[p.End+d:], out[p.End:n])
		case d < 0:
			copy(out[p.End+d:], out[p.End:n])
			out = out[:n+d]
		}
		copy(out[p.Start:], p.Replacement)
	}
	return out
}
