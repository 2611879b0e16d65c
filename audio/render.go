package audio

import "math"

// Render replays a sequence through a fresh machine without real-time
// pacing and returns the finished interleaved stereo buffer. The output is
// exactly round(totalBeats * 60/bpm * SampleRate) frames long; voices still
// sounding at the end are cut off at the buffer boundary. Because the same
// machine code drives live playback, offline output matches what the live
// stream produced for the same request.
func Render(req Request, cache *Cache) ([]float64, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	frames := int(math.Round(float64(req.TotalBeats) * 60.0 / req.BPM * SampleRate))
	out := make([]float64, frames*nChannels)

	m := &machine{cache: cache}
	m.start(req)

	chunk := make([]float64, bufferSize*nChannels)
	for off := 0; off < frames; off += bufferSize {
		n := frames - off
		if n > bufferSize {
			n = bufferSize
		}
		m.process(chunk[:n*nChannels])
		copy(out[off*nChannels:], chunk[:n*nChannels])
	}
	return out, nil
}
