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
	"time"
)

const (
	// Offsets stored in front of the data they point to are written with a
	// fixed width, so that their own length doesn't depend on their values.
	fixedOffsetWidth = 8
	defaultCueTrack  = 1
)

type repairOptions struct {
	cueTrack   uint64
	writingApp string
	verify     bool
}

// RepairOption configures Repair.
type RepairOption func(*repairOptions)

// WithCueTrack sets CueTrack of the generated cue points.
// By default the number of the video track is used, or 1 if unknown.
func WithCueTrack(track uint64) RepairOption {
	return func(o *repairOptions) {
		o.cueTrack = track
	}
}

// WithWritingApp sets WritingApp of a synthesized Info element.
func WithWritingApp(app string) RepairOption {
	return func(o *repairOptions) {
		o.writingApp = app
	}
}

// WithVerify enables rescanning the repaired buffer before returning it.
// Enabled by default.
func WithVerify(verify bool) RepairOption {
	return func(o *repairOptions) {
		o.verify = verify
	}
}

// Summary describes what Repair did.
type Summary struct {
	Repaired               bool     `json:"repaired"`
	AppliedDurationSeconds float64  `json:"appliedDurationSeconds"`
	CuePointCount          int      `json:"cuePointCount"`
	Warnings               []string `json:"warnings"`
}

// Result is the recording returned by Repair and what was done to it.
type Result struct {
	Data    []byte
	Summary Summary
}

// Repair joins the chunks and rewrites the Duration and Cues of the
// recording. It never fails: if the recording can't be repaired, the joined
// chunks are returned unmodified and the reason is added to the warnings.
func Repair(chunks []Chunk, measured time.Duration, opts ...RepairOption) *Result {
	options := &repairOptions{
		writingApp: MuxingApp,
		verify:     true,
	}
	for _, o := range opts {
		o(options)
	}

	src := concatChunks(chunks)
	res := &Result{Data: src, Summary: Summary{Warnings: []string{}}}
	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		Logger().Warnf("Repair: %s", msg)
		res.Summary.Warnings = append(res.Summary.Warnings, msg)
	}

	if measured <= 0 {
		warn("measured duration must be positive, got %v", measured)
		return res
	}
	doc, err := Scan(src)
	if err != nil {
		warn("%v: %v", ErrMalformedInput, err)
		return res
	}
	Logger().Debugf(
		"Repairing recording (bytes:%d chunks:%d clusters:%d info:%t cues:%t duration:%v)",
		len(src), len(chunks), len(doc.Clusters), doc.Info != nil, doc.Cues != nil, measured,
	)

	r := &repairer{
		src:     src,
		doc:     doc,
		seconds: measured.Seconds(),
		opts:    options,
	}
	out, err := r.run()
	for _, w := range r.warnings {
		warn("%s", w)
	}
	if err != nil {
		warn("repair failed, returning the recording unmodified: %v", err)
		return res
	}

	res.Data = out
	res.Summary.Repaired = true
	res.Summary.AppliedDurationSeconds = r.seconds
	res.Summary.CuePointCount = r.cuePoints
	Logger().Debugf("Repaired recording (bytes:%d->%d cuePoints:%d)", len(src), len(out), r.cuePoints)
	return res
}

// RepairBuffer repairs a recording already joined into one buffer.
// buf is not modified.
func RepairBuffer(buf []byte, measured time.Duration, opts ...RepairOption) *Result {
	return Repair([]Chunk{{Data: buf}}, measured, opts...)
}

type repairer struct {
	src     []byte
	doc     *Document
	seconds float64
	opts    *repairOptions

	patches   patchSet
	cuePoints int
	warnings  []string
}

func (r *repairer) run() (out []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic while patching: %v", v)
		}
	}()

	seg := r.doc.Segment
	info, err := r.buildInfo()
	if err != nil {
		return nil, fmt.Errorf("building Info: %w", err)
	}
	infoAt := seg.DataStart
	if r.doc.Info != nil {
		_, err = r.patches.add(Patch{Start: r.doc.Info.Start, End: r.doc.Info.End, Replacement: info})
	} else {
		if sh := r.doc.SeekHead; sh != nil && sh.Start == seg.DataStart {
			infoAt = sh.End
		}
		_, err = r.patches.add(Patch{Start: infoAt, End: infoAt, Replacement: info})
	}
	if err != nil {
		return nil, err
	}

	cuesAt := seg.End
	if r.doc.Cues != nil {
		cuesAt = r.doc.Cues.Start
	}
	generateCues := len(r.doc.Clusters) > 0
	if !generateCues {
		r.warnings = append(r.warnings, "no clusters found, cues not generated")
	}

	// SeekHead positions depend on every other patch; reserve its space first.
	var seeks []seekTarget
	seekHeadIdx := -1
	if r.doc.SeekHead != nil {
		seeks = r.seekTargets(infoAt, cuesAt, generateCues)
		placeholder, err := buildSeekHead(seeks, func(seekTarget) uint64 { return 0 })
		if err != nil {
			return nil, fmt.Errorf("building SeekHead: %w", err)
		}
		sh := r.doc.SeekHead
		if seekHeadIdx, err = r.patches.add(Patch{Start: sh.Start, End: sh.End, Replacement: placeholder}); err != nil {
			return nil, err
		}
	}

	if generateCues {
		if err := r.addCues(); err != nil {
			return nil, fmt.Errorf("building Cues: %w", err)
		}
	}

	origin := r.patches.adjustBefore(seg.DataStart)
	if seekHeadIdx >= 0 {
		seekHead, err := buildSeekHead(seeks, func(t seekTarget) uint64 {
			if t.inserted {
				return uint64(r.patches.adjustBefore(t.offset) - origin)
			}
			return uint64(r.patches.relocate(t.offset) - origin)
		})
		if err != nil {
			return nil, fmt.Errorf("building SeekHead: %w", err)
		}
		if err := r.patches.replace(seekHeadIdx, seekHead); err != nil {
			return nil, err
		}
	}

	if !seg.Size.Unknown {
		if err := r.addSegmentSize(); err != nil {
			return nil, fmt.Errorf("resizing Segment: %w", err)
		}
	}

	out = applyPatches(r.src, r.patches)
	if r.opts.verify {
		if err := r.verify(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// buildInfo copies the existing Info children except Duration and appends
// the measured Duration, or synthesizes a new Info.
func (r *repairer) buildInfo() ([]byte, error) {
	duration, err := encodeFloatElement(IDDuration, secondsToTicks(r.seconds, r.doc.TimecodeScaleNs))
	if err != nil {
		return nil, err
	}
	if r.doc.Info == nil {
		scale, err := encodeUintElement(IDTimecodeScale, r.doc.TimecodeScaleNs)
		if err != nil {
			return nil, err
		}
		muxingApp, err := encodeStringElement(IDMuxingApp, MuxingApp)
		if err != nil {
			return nil, err
		}
		writingApp, err := encodeStringElement(IDWritingApp, r.opts.writingApp)
		if err != nil {
			return nil, err
		}
		return encodeMaster(IDInfo, scale, muxingApp, writingApp, duration)
	}

	var children [][]byte
	err = walkChildren(r.src, *r.doc.Info, func(e Element) error {
		if e.ID != IDDuration {
			children = append(children, e.Bytes(r.src))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return encodeMaster(IDInfo, append(children, duration)...)
}

func (r *repairer) cueTrack() uint64 {
	if r.opts.cueTrack != 0 {
		return r.opts.cueTrack
	}
	if t, ok := r.doc.VideoTrack(); ok && t.TrackNumber != 0 {
		return t.TrackNumber
	}
	return defaultCueTrack
}

// addCues replaces the existing Cues or appends new Cues at the end of the
// Segment, with one cue point per Cluster.
func (r *repairer) addCues() error {
	start, end := r.doc.Segment.End, r.doc.Segment.End
	if r.doc.Cues != nil {
		start, end = r.doc.Cues.Start, r.doc.Cues.End
	}
	width := 0
	for _, c := range r.doc.Clusters {
		if c.Start >= start {
			width = fixedOffsetWidth
			break
		}
	}
	track := r.cueTrack()
	origin := r.patches.adjustBefore(r.doc.Segment.DataStart)

	if width == 0 {
		cues, err := r.buildCues(track, width, func(c ClusterRef) uint64 {
			return uint64(r.patches.relocate(c.Start) - origin)
		})
		if err != nil {
			return err
		}
		_, err = r.patches.add(Patch{Start: start, End: end, Replacement: cues})
		return err
	}

	// Cues precede some Clusters: their own delta shifts the positions.
	placeholder, err := r.buildCues(track, width, func(ClusterRef) uint64 { return 0 })
	if err != nil {
		return err
	}
	idx, err := r.patches.add(Patch{Start: start, End: end, Replacement: placeholder})
	if err != nil {
		return err
	}
	cues, err := r.buildCues(track, width, func(c ClusterRef) uint64 {
		return uint64(r.patches.relocate(c.Start) - origin)
	})
	if err != nil {
		return err
	}
	return r.patches.replace(idx, cues)
}

func (r *repairer) buildCues(track uint64, width int, position func(ClusterRef) uint64) ([]byte, error) {
	points := make([][]byte, 0, len(r.doc.Clusters))
	for _, c := range r.doc.Clusters {
		cueTime, err := encodeUintElement(IDCueTime, c.Timecode)
		if err != nil {
			return nil, err
		}
		cueTrack, err := encodeUintElement(IDCueTrack, track)
		if err != nil {
			return nil, err
		}
		pos := position(c)
		var cuePos []byte
		if width == 0 {
			cuePos, err = EncodeElement(IDCueClusterPosition, EncodeUint(pos))
		} else {
			cuePos, err = EncodeElement(IDCueClusterPosition, encodeUintWidth(pos, width))
		}
		if err != nil {
			return nil, err
		}
		positions, err := encodeMaster(IDCueTrackPositions, cueTrack, cuePos)
		if err != nil {
			return nil, err
		}
		point, err := encodeMaster(IDCuePoint, cueTime, positions)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	r.cuePoints = len(points)
	return encodeMaster(IDCues, points...)
}

// addSegmentSize patches the size of a known-size Segment by the total delta.
func (r *repairer) addSegmentSize() error {
	seg := r.doc.Segment
	size := int64(seg.Size.Value) + int64(r.patches.delta())
	if size < 0 {
		return fmt.Errorf("negative Segment size %d", size)
	}
	sizeAt := seg.Start + len(ElementIDBytes(IDSegment))
	b, err := EncodeVint(uint64(size), seg.DataStart-sizeAt)
	if err != nil {
		return err
	}
	_, err = r.patches.add(Patch{Start: sizeAt, End: seg.DataStart, Replacement: b})
	return err
}

type seekTarget struct {
	id       uint32
	offset   int
	inserted bool
}

// seekTargets lists the SeekHead entries to write: the existing ones, plus
// Info and Cues when they are inserted and not referenced yet.
func (r *repairer) seekTargets(infoAt, cuesAt int, generateCues bool) []seekTarget {
	var ret []seekTarget
	referenced := make(map[uint32]bool)
	for _, s := range r.doc.Seeks {
		referenced[s.TargetID] = true
		ret = append(ret, seekTarget{
			id:     s.TargetID,
			offset: r.doc.Segment.DataStart + int(s.Position),
		})
	}
	if r.doc.Info == nil && !referenced[IDInfo] {
		ret = append(ret, seekTarget{id: IDInfo, offset: infoAt, inserted: true})
	}
	if generateCues && !referenced[IDCues] {
		ret = append(ret, seekTarget{id: IDCues, offset: cuesAt, inserted: r.doc.Cues == nil})
	}
	return ret
}

func buildSeekHead(targets []seekTarget, position func(seekTarget) uint64) ([]byte, error) {
	seeks := make([][]byte, 0, len(targets))
	for _, t := range targets {
		id, err := EncodeElement(IDSeekID, ElementIDBytes(t.id))
		if err != nil {
			return nil, err
		}
		pos, err := EncodeElement(IDSeekPosition, encodeUintWidth(position(t), fixedOffsetWidth))
		if err != nil {
			return nil, err
		}
		seek, err := encodeMaster(IDSeek, id, pos)
		if err != nil {
			return nil, err
		}
		seeks = append(seeks, seek)
	}
	return encodeMaster(IDSeekHead, seeks...)
}

// verify rescans the patched buffer and checks that every generated cue
// point lands on a Cluster.
func (r *repairer) verify(out []byte) error {
	doc, err := Scan(out)
	if err != nil {
		return fmt.Errorf("repaired recording doesn't scan: %w", err)
	}
	if len(doc.Clusters) != len(r.doc.Clusters) {
		return fmt.Errorf("repaired recording has %d clusters, expected %d", len(doc.Clusters), len(r.doc.Clusters))
	}
	if r.cuePoints == 0 {
		return nil
	}
	if len(doc.CuePoints) != r.cuePoints {
		return fmt.Errorf("repaired recording has %d cue points, expected %d", len(doc.CuePoints), r.cuePoints)
	}
	clusters := make(map[uint64]bool, len(doc.Clusters))
	for _, c := range doc.Clusters {
		clusters[uint64(c.Start-doc.Segment.DataStart)] = true
	}
	for _, cp := range doc.CuePoints {
		for _, p := range cp.Positions {
			if !clusters[p.ClusterPosition] {
				return fmt.Errorf("cue point at %d refers to %d which is not a Cluster", cp.Time, p.ClusterPosition)
			}
		}
	}
	return nil
}
