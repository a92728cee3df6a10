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
)

// Element IDs of the Matroska subset handled by this package.
const (
	IDEBML               = 0x1A45DFA3
	IDDocType            = 0x4282
	IDSegment            = 0x18538067
	IDSeekHead           = 0x114D9B74
	IDSeek               = 0x4DBB
	IDSeekID             = 0x53AB
	IDSeekPosition       = 0x53AC
	IDInfo               = 0x1549A966
	IDTimecodeScale      = 0x2AD7B1
	IDDuration           = 0x4489
	IDMuxingApp          = 0x4D80
	IDWritingApp         = 0x5741
	IDTracks             = 0x1654AE6B
	IDTrackEntry         = 0xAE
	IDTrackNumber        = 0xD7
	IDTrackType          = 0x83
	IDCodecID            = 0x86
	IDDefaultDuration    = 0x23E383
	IDVideo              = 0xE0
	IDPixelWidth         = 0xB0
	IDPixelHeight        = 0xBA
	IDCues               = 0x1C53BB6B
	IDCuePoint           = 0xBB
	IDCueTime            = 0xB3
	IDCueTrackPositions  = 0xB7
	IDCueTrack           = 0xF7
	IDCueClusterPosition = 0xF1
	IDCluster            = 0x1F43B675
	IDTimecode           = 0xE7
	IDTags               = 0x1254C367
	IDChapters           = 0x1043A770
	IDAttachments        = 0x1941A469
	IDVoid               = 0xEC
)

// TrackTypeVideo is the TrackType value of video tracks.
const TrackTypeVideo = 1

// segmentLevel lists the IDs which may appear as direct children of a Segment.
// An unknown-size Segment child ends where the next one of these starts.
var segmentLevel = map[uint32]bool{
	IDSeekHead:    true,
	IDInfo:        true,
	IDTracks:      true,
	IDCues:        true,
	IDCluster:     true,
	IDTags:        true,
	IDChapters:    true,
	IDAttachments: true,
}

// Size is the declared data size of an element.
type Size struct {
	Value   uint64
	Unknown bool
}

// Element describes the position of an element in a buffer.
// Offsets are absolute; the payload is buf[DataStart:End].
type Element struct {
	ID        uint32
	Size      Size
	Start     int
	DataStart int
	End       int
}

// HeaderLen returns the number of bytes taken by the ID and the size vint.
func (e Element) HeaderLen() int {
	return e.DataStart - e.Start
}

// Payload returns the element data in buf.
func (e Element) Payload(buf []byte) []byte {
	return buf[e.DataStart:e.End]
}

// Bytes returns the whole element, header included.
func (e Element) Bytes(buf []byte) []byte {
	return buf[e.Start:e.End]
}

func (e Element) String() string {
	if e.Size.Unknown {
		return fmt.Sprintf("0x%X@%d(unknown size, end %d)", e.ID, e.Start, e.End)
	}
	return fmt.Sprintf("0x%X@%d(%d bytes)", e.ID, e.Start, e.Size.Value)
}

// readElement reads the element header at offset. bound is the end of the
// enclosing scope; unknown-size elements extend to it.
func readElement(buf []byte, offset, bound int) (Element, error) {
	id, idLen, _, err := ReadVint(buf, offset, false)
	if err != nil {
		return Element{}, err
	}
	if idLen > 4 {
		return Element{}, fmt.Errorf("%w: %d byte element ID at offset %d", ErrMalformedVint, idLen, offset)
	}
	size, sizeLen, unknown, err := ReadVint(buf, offset+idLen, true)
	if err != nil {
		return Element{}, err
	}
	e := Element{
		ID:        uint32(id),
		Size:      Size{Value: size, Unknown: unknown},
		Start:     offset,
		DataStart: offset + idLen + sizeLen,
	}
	if e.DataStart > bound {
		return Element{}, fmt.Errorf("%w: header of %v overruns its parent ending at %d", ErrTruncatedElement, e, bound)
	}
	if unknown {
		e.End = bound
		return e, nil
	}
	if size > uint64(len(buf)-e.DataStart) {
		return Element{}, fmt.Errorf("%w: %v ends past the buffer (%d bytes)", ErrTruncatedElement, e, len(buf))
	}
	e.End = e.DataStart + int(size)
	if e.End > bound {
		return Element{}, fmt.Errorf("%w: %v overruns its parent ending at %d", ErrTruncatedElement, e, bound)
	}
	return e, nil
}

var errStopWalk = errors.New("stop walking")

// walk calls fn for each element in buf[start:end], advancing by element end.
// fn may return errStopWalk to finish early without error.
func walk(buf []byte, start, end int, fn func(Element) error) error {
	for offset := start; offset < end; {
		e, err := readElement(buf, offset, end)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			if err == errStopWalk {
				return nil
			}
			return err
		}
		offset = e.End
	}
	return nil
}

// walkChildren walks the payload of parent.
func walkChildren(buf []byte, parent Element, fn func(Element) error) error {
	return walk(buf, parent.DataStart, parent.End, fn)
}
