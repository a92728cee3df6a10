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

// Package webmtest builds synthetic WebM recordings shaped like the output
// of browser media recorders.
package webmtest

import (
	"bytes"

	"github.com/at-wat/ebml-go"
	"github.com/google/uuid"
)

const (
	trackNumberVideo = 1
	trackNumberAudio = 2
)

// ClusterSpec describes a Cluster of the recording.
type ClusterSpec struct {
	Timecode  uint64
	Frames    int
	FrameSize int
}

// SeekSpec is a SeekHead entry.
type SeekSpec struct {
	ID       uint32
	Position uint64
}

type buildOptions struct {
	docType         string
	codecID         string
	width, height   uint64
	defaultDuration uint64
	timecodeScale   uint64
	duration        float64
	segmentUID      []byte
	clusters        []ClusterSpec
	seeks           []SeekSpec
	noInfo          bool
	noVideo         bool
	audio           bool
	knownSize       bool
	staleCues       bool
	staleCuesFront  bool
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

func WithDocType(docType string) BuildOption {
	return func(o *buildOptions) {
		o.docType = docType
	}
}

func WithVideo(codecID string, width, height uint64) BuildOption {
	return func(o *buildOptions) {
		o.codecID = codecID
		o.width, o.height = width, height
	}
}

// WithDefaultDuration sets the frame duration of the video track in nanoseconds.
// Zero leaves DefaultDuration out.
func WithDefaultDuration(ns uint64) BuildOption {
	return func(o *buildOptions) {
		o.defaultDuration = ns
	}
}

func WithTimecodeScale(ns uint64) BuildOption {
	return func(o *buildOptions) {
		o.timecodeScale = ns
	}
}

// WithDuration writes a Duration of the given TimecodeScale ticks.
func WithDuration(ticks float64) BuildOption {
	return func(o *buildOptions) {
		o.duration = ticks
	}
}

func WithSegmentUID(uid []byte) BuildOption {
	return func(o *buildOptions) {
		o.segmentUID = uid
	}
}

func WithClusters(clusters ...ClusterSpec) BuildOption {
	return func(o *buildOptions) {
		o.clusters = clusters
	}
}

// WithSeekHead writes a SeekHead in front of Info.
func WithSeekHead(seeks ...SeekSpec) BuildOption {
	return func(o *buildOptions) {
		o.seeks = seeks
	}
}

func WithoutInfo() BuildOption {
	return func(o *buildOptions) {
		o.noInfo = true
	}
}

func WithoutVideo() BuildOption {
	return func(o *buildOptions) {
		o.noVideo = true
	}
}

// WithAudio adds an Opus track after the video track.
func WithAudio() BuildOption {
	return func(o *buildOptions) {
		o.audio = true
	}
}

// WithKnownSize writes Segment and Clusters with their sizes instead of the
// unknown size used by live recorders.
func WithKnownSize() BuildOption {
	return func(o *buildOptions) {
		o.knownSize = true
	}
}

// WithStaleCues writes a Cues element whose positions are all zero.
// If front is true, Cues are placed before the Clusters.
func WithStaleCues(front bool) BuildOption {
	return func(o *buildOptions) {
		o.staleCues = true
		o.staleCuesFront = front
	}
}

// EvenClusters returns n Clusters spaced by interval ticks.
func EvenClusters(n int, interval uint64, frames, frameSize int) []ClusterSpec {
	ret := make([]ClusterSpec, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, ClusterSpec{
			Timecode:  uint64(i) * interval,
			Frames:    frames,
			FrameSize: frameSize,
		})
	}
	return ret
}

// Build marshals a recording. Without options it is a recorder style
// VP9 1280x720 30fps WebM with two Clusters, no Duration and no Cues.
func Build(opts ...BuildOption) ([]byte, error) {
	options := &buildOptions{
		docType:         "webm",
		codecID:         "V_VP9",
		width:           1280,
		height:          720,
		defaultDuration: 33333333,
		timecodeScale:   1000000,
		clusters:        EvenClusters(2, 1000, 3, 1024),
	}
	for _, o := range opts {
		o(options)
	}
	if options.segmentUID == nil {
		var err error
		if options.segmentUID, err = uuid.New().MarshalBinary(); err != nil {
			return nil, err
		}
	}

	seg := segment{
		Tracks:  tracks(options),
		Cluster: clusters(options),
	}
	if !options.noInfo {
		seg.Info = []Info{{
			TimecodeScale: options.timecodeScale,
			SegmentUID:    options.segmentUID,
			MuxingApp:     "webmtest",
			WritingApp:    "webmtest",
			Duration:      options.duration,
		}}
	}
	if len(options.seeks) > 0 {
		sh := SeekHead{}
		for _, s := range options.seeks {
			sh.Seek = append(sh.Seek, Seek{SeekID: idBytes(s.ID), SeekPosition: s.Position})
		}
		seg.SeekHead = []SeekHead{sh}
	}
	if options.staleCues {
		cues := []Cues{staleCues(options)}
		if options.staleCuesFront {
			seg.CuesFront = cues
		} else {
			seg.Cues = cues
		}
	}

	header := EBMLHeader{
		EBMLVersion:            1,
		EBMLReadVersion:        1,
		EBMLMaxIDLength:        4,
		EBMLMaxSizeLength:      8,
		EBMLDocType:            options.docType,
		EBMLDocTypeVersion:     4,
		EBMLDocTypeReadVersion: 2,
	}

	buf := &bytes.Buffer{}
	var data interface{}
	if options.knownSize {
		data = &container{Header: header, Segment: seg}
	} else {
		data = &streamContainer{Header: header, Segment: streamSegment(seg)}
	}
	if err := ebml.Marshal(data, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustBuild is Build for fixtures which are known to marshal.
func MustBuild(opts ...BuildOption) []byte {
	b, err := Build(opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Split cuts data into chunks of size bytes, as a recorder's timeslice would.
func Split(data []byte, size int) [][]byte {
	var ret [][]byte
	for len(data) > size {
		ret = append(ret, data[:size])
		data = data[size:]
	}
	return append(ret, data)
}

func tracks(o *buildOptions) Tracks {
	var t Tracks
	if !o.noVideo {
		t.TrackEntry = append(t.TrackEntry, TrackEntry{
			TrackNumber:     trackNumberVideo,
			TrackUID:        trackNumberVideo,
			CodecID:         o.codecID,
			TrackType:       1,
			DefaultDuration: o.defaultDuration,
			Video:           []Video{{PixelWidth: o.width, PixelHeight: o.height}},
		})
	}
	if o.audio {
		t.TrackEntry = append(t.TrackEntry, TrackEntry{
			TrackNumber: trackNumberAudio,
			TrackUID:    trackNumberAudio,
			CodecID:     "A_OPUS",
			TrackType:   2,
		})
	}
	return t
}

func clusters(o *buildOptions) []Cluster {
	ret := make([]Cluster, 0, len(o.clusters))
	for ci, spec := range o.clusters {
		c := Cluster{Timecode: spec.Timecode}
		for i := 0; i < spec.Frames; i++ {
			frame := bytes.Repeat([]byte{byte(ci*16 + i)}, spec.FrameSize)
			c.SimpleBlock = append(c.SimpleBlock, ebml.Block{
				TrackNumber: trackNumberVideo,
				Timecode:    int16(i * 33),
				Keyframe:    i == 0,
				Lacing:      ebml.LacingNo,
				Data:        [][]byte{frame},
			})
		}
		ret = append(ret, c)
	}
	return ret
}

func staleCues(o *buildOptions) Cues {
	var cues Cues
	for _, spec := range o.clusters {
		cues.CuePoint = append(cues.CuePoint, CuePoint{
			CueTime: spec.Timecode,
			CueTrackPositions: []CueTrackPositions{
				{CueTrack: trackNumberVideo, CueClusterPosition: 0},
			},
		})
	}
	return cues
}

func idBytes(id uint32) []byte {
	var b []byte
	for shift := 24; shift >= 0; shift -= 8 {
		if v := byte(id >> uint(shift)); v != 0 || len(b) > 0 {
			b = append(b, v)
		}
	}
	return b
}
