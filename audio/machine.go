// Package audio owns the sequencing and rendering core: the sample cache,
// the playback machine driving a live portaudio stream, the offline
// renderer and the WAV encoder. Live playback and offline rendering run the
// same machine code, so what you hear is what you export.
package audio

import (
	"fmt"
	"math"

	"github.com/mrdg/animal/seq"
)

const (
	SampleRate = 44100
	nChannels  = 2
	bufferSize = 256
)

const maxVoices = 32

// Request is the read-only input shared by live playback and offline
// rendering. Both must see the identical value to guarantee identical
// output.
type Request struct {
	Sequence   seq.Sequence
	BPM        float64
	TotalBeats int
}

func (r Request) validate() error {
	// The tick clock fires at most once per processing chunk, so a beat
	// must be longer than one buffer. At 44100/256 that allows over 10000
	// BPM; 500 is the musical ceiling.
	if r.BPM <= 0 || r.BPM > 500 {
		return fmt.Errorf("bpm out of range 0-500: %v", r.BPM)
	}
	if r.TotalBeats <= 0 {
		return fmt.Errorf("total beats must be positive: %d", r.TotalBeats)
	}
	if len(r.Sequence) == 0 {
		return fmt.Errorf("empty sequence")
	}
	return nil
}

// clock counts samples seen since playback started and places beat ticks on
// the sample timeline. Tick k lands at round(k * samplesPerBeat), so tick
// positions are exact and do not drift with the buffer size.
type clock struct {
	samplesPerBeat float64
	samples        uint64 // total frames processed
	ticks          uint64 // beats fired so far
}

// tick is called once per processing chunk. If the next beat falls inside
// the chunk, its frame offset within the chunk is returned, otherwise -1.
func (c *clock) tick(frames int) int {
	next := uint64(math.Round(float64(c.ticks) * c.samplesPerBeat))
	offset := -1
	if next >= c.samples && next < c.samples+uint64(frames) {
		offset = int(next - c.samples)
		c.ticks++
	}
	c.samples += uint64(frames)
	return offset
}

// voice is one playing instance of a sound. pos tracks the position in buf;
// a voice with a nil buf is free.
type voice struct {
	buf []float64
	pos int
}

// machine advances the beat counter and mixes active voices into an
// interleaved stereo float64 buffer. It is not safe for concurrent use; the
// live engine serializes access with a mutex, the offline renderer owns its
// machine exclusively.
type machine struct {
	cache   *Cache
	req     Request
	clock   clock
	beat    int
	running bool
	voices  [maxVoices]voice
}

func (m *machine) start(req Request) {
	m.req = req
	m.clock = clock{samplesPerBeat: SampleRate * 60.0 / req.BPM}
	m.beat = 0
	m.running = true
}

// stop halts the tick clock. Voices already playing ring out naturally.
func (m *machine) stop() {
	m.running = false
}

// process renders one chunk of interleaved stereo output. At most one beat
// tick fires per chunk; steps triggered by the tick start at the tick's
// exact frame offset within the chunk.
func (m *machine) process(out []float64) {
	for i := range out {
		out[i] = 0
	}

	tick := -1
	if m.running {
		tick = m.clock.tick(len(out) / nChannels)
	}

	// continue voices already in progress
	for i := range m.voices {
		v := &m.voices[i]
		if v.buf == nil {
			continue
		}
		v.pos = mix(out, v.buf, v.pos)
		if v.pos == 0 {
			v.buf = nil
		}
	}

	if tick < 0 {
		return
	}
	for _, track := range m.req.Sequence {
		step, ok := track.StepAt(m.beat)
		if !ok || step.File == "" {
			continue
		}
		snd := m.cache.Get(step.File)
		if snd == nil {
			// not resident, skip the step rather than wait
			continue
		}
		v := m.freeVoice()
		if v == nil {
			continue
		}
		v.buf = snd.buf
		v.pos = mix(out[tick*nChannels:], v.buf, 0)
		if v.pos == 0 {
			v.buf = nil
		}
	}
	m.beat = (m.beat + 1) % m.req.TotalBeats
}

func (m *machine) freeVoice() *voice {
	for i := range m.voices {
		if m.voices[i].buf == nil {
			return &m.voices[i]
		}
	}
	return nil
}

// mix adds samples from src to dst, starting at offset into src, and
// returns the new src offset. It returns 0 when src is exhausted.
func mix(dst, src []float64, offset int) int {
	n := len(src) - offset
	if len(dst) < n {
		n = len(dst)
	}
	for i, sample := range src[offset : offset+n] {
		dst[i] += sample
	}
	offset += n
	if offset >= len(src) {
		offset = 0
	}
	return offset
}
