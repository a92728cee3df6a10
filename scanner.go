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
	"strings"
)

// Track is a video track descriptor.
type Track struct {
	TrackNumber uint64 `json:"trackNumber"`
	TrackType   uint64 `json:"trackType"`
	CodecID     string `json:"codecId"`
	PixelWidth  uint64 `json:"pixelWidth"`
	PixelHeight uint64 `json:"pixelHeight"`
	// DefaultDurationNs is zero when the track doesn't declare a frame duration.
	DefaultDurationNs uint64 `json:"defaultDurationNs,omitempty"`
}

// ClusterRef is a Cluster and its own Timecode in TimecodeScale ticks.
type ClusterRef struct {
	Element
	Timecode uint64
}

// CueTrackPosition is the Cluster position of a cue point for one track.
type CueTrackPosition struct {
	Track           uint64 `json:"track"`
	ClusterPosition uint64 `json:"clusterPosition"`
}

// CuePoint is a decoded CuePoint element.
type CuePoint struct {
	Time      uint64             `json:"time"`
	Positions []CueTrackPosition `json:"positions"`
}

// SeekEntry is a Seek element of the SeekHead.
type SeekEntry struct {
	Element
	TargetID uint32
	Position uint64
}

// Document is the structural index of a WebM buffer.
type Document struct {
	DocType         string       `json:"docType"`
	Segment         Element      `json:"segment"`
	Info            *Element     `json:"info,omitempty"`
	DurationTicks   *float64     `json:"durationTicks,omitempty"`
	TimecodeScaleNs uint64       `json:"timecodeScaleNs"`
	Tracks          []Track      `json:"tracks"`
	Cues            *Element     `json:"cues,omitempty"`
	CuePoints       []CuePoint   `json:"cuePoints,omitempty"`
	Clusters        []ClusterRef `json:"clusters"`
	SeekHead        *Element     `json:"seekHead,omitempty"`
	Seeks           []SeekEntry  `json:"seeks,omitempty"`
}

// Duration returns the declared duration in seconds.
func (d *Document) Duration() (float64, bool) {
	if d.DurationTicks == nil {
		return 0, false
	}
	return ticksToSeconds(*d.DurationTicks, d.TimecodeScaleNs), true
}

// VideoTrack returns the first video track.
func (d *Document) VideoTrack() (Track, bool) {
	if len(d.Tracks) == 0 {
		return Track{}, false
	}
	return d.Tracks[0], true
}

// Scan builds the structural index of buf. buf is not modified.
func Scan(buf []byte) (*Document, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrMissingHeader)
	}
	if id, _, _, err := ReadVint(buf, 0, false); err != nil || id != IDEBML {
		return nil, fmt.Errorf("%w: buffer doesn't start with an EBML element", ErrMissingHeader)
	}
	header, err := readElement(buf, 0, len(buf))
	if err != nil {
		return nil, fmt.Errorf("EBML header: %w", err)
	}

	d := &Document{TimecodeScaleNs: DefaultTimecodeScale}
	err = walkChildren(buf, header, func(e Element) error {
		if e.ID == IDDocType {
			d.DocType = readString(e.Payload(buf))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("EBML header: %w", err)
	}

	offset := header.End
	for {
		if offset >= len(buf) {
			return nil, fmt.Errorf("%w: nothing follows the EBML header", ErrMissingSegment)
		}
		id, _, _, err := ReadVint(buf, offset, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingSegment, err)
		}
		if id != IDVoid {
			if id != IDSegment {
				return nil, fmt.Errorf("%w: found 0x%X at offset %d", ErrMissingSegment, id, offset)
			}
			break
		}
		void, err := readElement(buf, offset, len(buf))
		if err != nil {
			return nil, err
		}
		offset = void.End
	}
	if d.Segment, err = readElement(buf, offset, len(buf)); err != nil {
		return nil, fmt.Errorf("Segment: %w", err)
	}
	if err := d.scanSegment(buf); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) scanSegment(buf []byte) error {
	seg := d.Segment
	for offset := seg.DataStart; offset < seg.End; {
		e, err := readElement(buf, offset, seg.End)
		if err != nil {
			return err
		}
		if e.Size.Unknown {
			if e.End, err = unknownSizeEnd(buf, e); err != nil {
				return err
			}
		}
		switch e.ID {
		case IDInfo:
			if d.Info == nil {
				info := e
				d.Info = &info
				if err := d.scanInfo(buf, e); err != nil {
					return fmt.Errorf("Info: %w", err)
				}
			}
		case IDTracks:
			if err := d.scanTracks(buf, e); err != nil {
				return fmt.Errorf("Tracks: %w", err)
			}
		case IDCues:
			if d.Cues == nil {
				cues := e
				d.Cues = &cues
				if err := d.scanCues(buf, e); err != nil {
					return fmt.Errorf("Cues: %w", err)
				}
			}
		case IDCluster:
			c, err := scanCluster(buf, e)
			if err != nil {
				return fmt.Errorf("Cluster at %d: %w", e.Start, err)
			}
			d.Clusters = append(d.Clusters, c)
		case IDSeekHead:
			if d.SeekHead == nil {
				sh := e
				d.SeekHead = &sh
				if err := d.scanSeekHead(buf, e); err != nil {
					return fmt.Errorf("SeekHead: %w", err)
				}
			}
		}
		offset = e.End
	}
	return nil
}

// unknownSizeEnd finds where an unknown-size Segment child really ends:
// at the next Segment level element or at the end of the Segment.
func unknownSizeEnd(buf []byte, e Element) (int, error) {
	end := e.End
	err := walkChildren(buf, e, func(c Element) error {
		if segmentLevel[c.ID] {
			end = c.Start
			return errStopWalk
		}
		return nil
	})
	return end, err
}

func (d *Document) scanInfo(buf []byte, info Element) error {
	return walkChildren(buf, info, func(e Element) error {
		switch e.ID {
		case IDTimecodeScale:
			v, err := ReadUint(e.Payload(buf))
			if err != nil {
				return fmt.Errorf("TimecodeScale: %w", err)
			}
			if v > 0 {
				d.TimecodeScaleNs = v
			}
		case IDDuration:
			v, err := ReadFloat(e.Payload(buf))
			if err != nil {
				return fmt.Errorf("Duration: %w", err)
			}
			d.DurationTicks = &v
		}
		return nil
	})
}

func (d *Document) scanTracks(buf []byte, tracks Element) error {
	return walkChildren(buf, tracks, func(e Element) error {
		if e.ID != IDTrackEntry {
			return nil
		}
		t, err := parseTrackEntry(buf, e)
		if err != nil {
			return err
		}
		if t.TrackType == TrackTypeVideo {
			d.Tracks = append(d.Tracks, t)
		}
		return nil
	})
}

func parseTrackEntry(buf []byte, entry Element) (Track, error) {
	var t Track
	err := walkChildren(buf, entry, func(e Element) error {
		var err error
		switch e.ID {
		case IDTrackNumber:
			t.TrackNumber, err = ReadUint(e.Payload(buf))
		case IDTrackType:
			t.TrackType, err = ReadUint(e.Payload(buf))
		case IDCodecID:
			t.CodecID = readString(e.Payload(buf))
		case IDDefaultDuration:
			t.DefaultDurationNs, err = ReadUint(e.Payload(buf))
		case IDVideo:
			err = walkChildren(buf, e, func(v Element) error {
				var err error
				switch v.ID {
				case IDPixelWidth:
					t.PixelWidth, err = ReadUint(v.Payload(buf))
				case IDPixelHeight:
					t.PixelHeight, err = ReadUint(v.Payload(buf))
				}
				return err
			})
		}
		return err
	})
	return t, err
}

func (d *Document) scanCues(buf []byte, cues Element) error {
	return walkChildren(buf, cues, func(e Element) error {
		if e.ID != IDCuePoint {
			return nil
		}
		var cp CuePoint
		err := walkChildren(buf, e, func(c Element) error {
			switch c.ID {
			case IDCueTime:
				var err error
				cp.Time, err = ReadUint(c.Payload(buf))
				return err
			case IDCueTrackPositions:
				var pos CueTrackPosition
				err := walkChildren(buf, c, func(p Element) error {
					var err error
					switch p.ID {
					case IDCueTrack:
						pos.Track, err = ReadUint(p.Payload(buf))
					case IDCueClusterPosition:
						pos.ClusterPosition, err = ReadUint(p.Payload(buf))
					}
					return err
				})
				if err != nil {
					return err
				}
				cp.Positions = append(cp.Positions, pos)
			}
			return nil
		})
		if err != nil {
			return err
		}
		d.CuePoints = append(d.CuePoints, cp)
		return nil
	})
}

// scanCluster reads the Cluster Timecode without descending into blocks.
func scanCluster(buf []byte, cluster Element) (ClusterRef, error) {
	c := ClusterRef{Element: cluster}
	err := walkChildren(buf, cluster, func(e Element) error {
		if e.ID != IDTimecode {
			return nil
		}
		var err error
		if c.Timecode, err = ReadUint(e.Payload(buf)); err != nil {
			return fmt.Errorf("Timecode: %w", err)
		}
		return errStopWalk
	})
	return c, err
}

func (d *Document) scanSeekHead(buf []byte, seekHead Element) error {
	return walkChildren(buf, seekHead, func(e Element) error {
		if e.ID != IDSeek {
			return nil
		}
		s := SeekEntry{Element: e}
		err := walkChildren(buf, e, func(c Element) error {
			switch c.ID {
			case IDSeekID:
				id, _, _, err := ReadVint(c.Payload(buf), 0, false)
				if err != nil {
					return fmt.Errorf("SeekID: %w", err)
				}
				s.TargetID = uint32(id)
			case IDSeekPosition:
				var err error
				if s.Position, err = ReadUint(c.Payload(buf)); err != nil {
					return fmt.Errorf("SeekPosition: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		d.Seeks = append(d.Seeks, s)
		return nil
	})
}

func readString(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
