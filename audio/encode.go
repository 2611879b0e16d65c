package audio

import (
	"bytes"
	"fmt"

	wav "github.com/youpy/go-wav"
)

// wavHeaderSize is the fixed RIFF + fmt + data chunk preamble for a
// single-data-chunk PCM file.
const wavHeaderSize = 44

// EncodeWAV serializes an interleaved stereo float buffer as an
// uncompressed 16-bit PCM WAV file. Samples are clamped to [-1, 1] and
// quantized on the asymmetric signed-16 scale: negative values by 32768,
// positive by 32767. The result is always exactly 44 + frames*2*2 bytes.
func EncodeWAV(buf []float64) ([]byte, error) {
	if len(buf)%nChannels != 0 {
		return nil, fmt.Errorf("buffer length %d is not a whole number of stereo frames", len(buf))
	}
	frames := len(buf) / nChannels

	samples := make([]wav.Sample, frames)
	for i := range samples {
		samples[i].Values[0] = quantize(buf[i*nChannels])
		samples[i].Values[1] = quantize(buf[i*nChannels+1])
	}

	var b bytes.Buffer
	b.Grow(wavHeaderSize + frames*nChannels*2)
	w := wav.NewWriter(&b, uint32(frames), nChannels, SampleRate, 16)
	if err := w.WriteSamples(samples); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func quantize(v float64) int {
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	if v < 0 {
		return int(v * 32768)
	}
	return int(v * 32767)
}
