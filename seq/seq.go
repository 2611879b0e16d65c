// Package seq holds the beat pattern model: named tracks of sparse steps on
// a fixed 16-slot grid, as produced by the generator and consumed by both
// live playback and offline rendering.
package seq

import (
	"encoding/json"
	"fmt"
)

// GridBeats is the number of steps in the fixed 4-bar grid.
const GridBeats = 16

// Step places a sample on the grid. An empty File means a rest.
type Step struct {
	Beat int    `json:"beat"`
	File string `json:"file,omitempty"`
}

type Track struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// StepAt returns the first step in declaration order whose beat matches.
// First match is the authoritative tie-break for duplicated beats; playback
// and rendering both rely on it.
func (t Track) StepAt(beat int) (Step, bool) {
	for _, s := range t.Steps {
		if s.Beat == beat {
			return s, true
		}
	}
	return Step{}, false
}

// Sequence is the full generated pattern, one track per voice. Sequences
// are replaced wholesale, never mutated in place.
type Sequence []Track

// Files returns the distinct sample filenames referenced by the sequence,
// for cache prefetching. Rests are skipped.
func (s Sequence) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, t := range s {
		for _, step := range t.Steps {
			if step.File == "" || seen[step.File] {
				continue
			}
			seen[step.File] = true
			files = append(files, step.File)
		}
	}
	return files
}

// ValidationError reports a malformed sequence. Raw carries the offending
// input verbatim so it can be shown to the user for diagnosis.
type ValidationError struct {
	Reason string
	Raw    string
}

func (e *ValidationError) Error() string {
	return "invalid sequence: " + e.Reason
}

// Parse validates raw generator output into a Sequence. It accepts either a
// bare array of tracks or an object wrapping them under a "tracks" key; the
// generator is unreliable about which it returns. A track without a steps
// list is rejected. Steps with out-of-range beats or missing files are kept
// as-is: they are filtered at playback time, since an omitted file
// legitimately means a rest.
func Parse(raw []byte) (Sequence, error) {
	var top interface{}
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &ValidationError{Reason: err.Error(), Raw: string(raw)}
	}

	var tracks []interface{}
	switch v := top.(type) {
	case []interface{}:
		tracks = v
	case map[string]interface{}:
		t, ok := v["tracks"].([]interface{})
		if !ok {
			return nil, &ValidationError{Reason: `"tracks" is missing or not an array`, Raw: string(raw)}
		}
		tracks = t
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("top-level value is %T, not an array of tracks", top), Raw: string(raw)}
	}

	var sequence Sequence
	for i, t := range tracks {
		obj, ok := t.(map[string]interface{})
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("track %d is not an object", i), Raw: string(raw)}
		}
		steps, ok := obj["steps"].([]interface{})
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("track %d has no steps list", i), Raw: string(raw)}
		}
		track := Track{Steps: []Step{}}
		track.Name, _ = obj["name"].(string)
		for _, s := range steps {
			step, ok := s.(map[string]interface{})
			if !ok {
				continue
			}
			beat, ok := step["beat"].(float64)
			if !ok {
				continue
			}
			file, _ := step["file"].(string)
			track.Steps = append(track.Steps, Step{Beat: int(beat), File: file})
		}
		sequence = append(sequence, track)
	}
	return sequence, nil
}
