package webmrepair

import (
	"encoding/json"
	"fmt"
	"io"
)

type RecorderEventType string

const (
	RecorderEventStart RecorderEventType = "START"
	RecorderEventChunk RecorderEventType = "CHUNK"
	RecorderEventStop  RecorderEventType = "STOP"
)

// RecorderEvent is a line of the recorder event log written next to the chunks.
// Timestamp uses the ToTimestamp format.
type RecorderEvent struct {
	EventType     RecorderEventType
	SequenceIndex int    `json:",omitempty"`
	Path          string `json:",omitempty"`
	Timestamp     string `json:",omitempty"`
}

// ParseRecorderEvents reads a stream of JSON encoded RecorderEvents.
func ParseRecorderEvents(r io.Reader) ([]RecorderEvent, error) {
	dec := json.NewDecoder(r)
	var ret []RecorderEvent
	for {
		var ev RecorderEvent
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		ret = append(ret, ev)
	}
	return ret, nil
}

// NewRecording pairs the CHUNK events with their data loaded by open and
// measures the time between the first START and the last STOP event.
func NewRecording(events []RecorderEvent, open func(path string) ([]byte, error)) (*Recording, error) {
	var start, stop string
	rec := &Recording{}
	seen := make(map[int]bool)
	for _, ev := range events {
		switch ev.EventType {
		case RecorderEventStart:
			if start == "" {
				start = ev.Timestamp
			}
		case RecorderEventStop:
			stop = ev.Timestamp
		case RecorderEventChunk:
			if seen[ev.SequenceIndex] {
				return nil, fmt.Errorf("duplicated chunk sequence index %d", ev.SequenceIndex)
			}
			seen[ev.SequenceIndex] = true
			data, err := open(ev.Path)
			if err != nil {
				return nil, fmt.Errorf("loading chunk %d: %w", ev.SequenceIndex, err)
			}
			rec.Chunks = append(rec.Chunks, Chunk{Data: data, SequenceIndex: ev.SequenceIndex})
		default:
			return nil, fmt.Errorf("unknown recorder event %q", string(ev.EventType))
		}
	}
	if start == "" || stop == "" {
		return nil, fmt.Errorf("recorder events must contain %s and %s timestamps", RecorderEventStart, RecorderEventStop)
	}
	tStart, err := ParseTimestamp(start)
	if err != nil {
		return nil, err
	}
	tStop, err := ParseTimestamp(stop)
	if err != nil {
		return nil, err
	}
	if !tStop.After(tStart) {
		return nil, fmt.Errorf("recorder stopped (%s) before it started (%s)", stop, start)
	}
	rec.MeasuredDuration = tStop.Sub(tStart)
	return rec, nil
}
