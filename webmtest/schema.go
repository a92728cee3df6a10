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

package webmtest

import (
	"github.com/at-wat/ebml-go"
)

// WebM schema marshalled by ebml-go. Optional master elements are slices so
// that they can be left out.

type EBMLHeader struct {
	EBMLVersion            uint64
	EBMLReadVersion        uint64
	EBMLMaxIDLength        uint64
	EBMLMaxSizeLength      uint64
	EBMLDocType            string
	EBMLDocTypeVersion     uint64
	EBMLDocTypeReadVersion uint64
}

type Seek struct {
	SeekID       []byte
	SeekPosition uint64
}

type SeekHead struct {
	Seek []Seek
}

type Info struct {
	TimecodeScale uint64
	SegmentUID    []byte
	MuxingApp     string
	WritingApp    string
	Duration      float64 `ebml:",omitempty"`
}

type Video struct {
	PixelWidth  uint64
	PixelHeight uint64
}

type TrackEntry struct {
	TrackNumber     uint64
	TrackUID        uint64
	CodecID         string
	TrackType       uint64
	DefaultDuration uint64  `ebml:",omitempty"`
	Video           []Video `ebml:",omitempty"`
}

type Tracks struct {
	TrackEntry []TrackEntry
}

type Cluster struct {
	Timecode    uint64
	SimpleBlock []ebml.Block
}

type CueTrackPositions struct {
	CueTrack           uint64
	CueClusterPosition uint64
}

type CuePoint struct {
	CueTime           uint64
	CueTrackPositions []CueTrackPositions
}

type Cues struct {
	CuePoint []CuePoint
}

type segment struct {
	SeekHead  []SeekHead `ebml:",omitempty"`
	Info      []Info     `ebml:",omitempty"`
	Tracks    Tracks
	CuesFront []Cues    `ebml:"Cues,omitempty"`
	Cluster   []Cluster `ebml:",omitempty"`
	Cues      []Cues    `ebml:",omitempty"`
}

// streamSegment is the layout written by browser recorders: Segment and
// Clusters of unknown size.
type streamSegment struct {
	SeekHead  []SeekHead `ebml:",omitempty"`
	Info      []Info     `ebml:",omitempty"`
	Tracks    Tracks
	CuesFront []Cues    `ebml:"Cues,omitempty"`
	Cluster   []Cluster `ebml:",size=unknown,omitempty"`
	Cues      []Cues    `ebml:",omitempty"`
}

type container struct {
	Header  EBMLHeader `ebml:"EBML"`
	Segment segment
}

type streamContainer struct {
	Header  EBMLHeader    `ebml:"EBML"`
	Segment streamSegment `ebml:",size=unknown"`
}

// Container is the decoding schema of a whole file, used to check files
// with an independent EBML implementation.
type Container struct {
	Header  EBMLHeader `ebml:"EBML"`
	Segment Segment
}

type Segment struct {
	SeekHead []SeekHead
	Info     []Info
	Tracks   Tracks
	Cluster  []Cluster
	Cues     []Cues
}
