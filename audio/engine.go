package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Engine drives live playback: a persistent portaudio output stream pulling
// from a machine. The stream keeps running while stopped so that triggered
// samples ring out after the tick clock is halted.
type Engine struct {
	stream *portaudio.Stream

	mu  sync.Mutex
	m   machine
	buf []float64
}

func NewEngine(cache *Cache) (*Engine, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	e := &Engine{
		m:   machine{cache: cache},
		buf: make([]float64, bufferSize*nChannels),
	}
	stream, err := portaudio.OpenDefaultStream(0, nChannels, SampleRate, bufferSize, e.process)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	e.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	return e, nil
}

func (e *Engine) process(out [][]float32) {
	e.mu.Lock()
	e.m.process(e.buf)
	e.mu.Unlock()

	for i := range out[0] {
		out[0][i] = float32(e.buf[i*nChannels])
		out[1][i] = float32(e.buf[i*nChannels+1])
	}
}

// Play starts the request from beat 0. Calling it while already running
// restarts: the tempo is re-captured and the beat counter resets.
func (e *Engine) Play(req Request) error {
	if err := req.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.m.start(req)
	e.mu.Unlock()
	return nil
}

// Stop halts ticking before the next scheduled beat. In-flight samples are
// not cut off.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.m.stop()
	e.mu.Unlock()
}

func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.running
}

func (e *Engine) Close() error {
	e.stream.Close()
	return portaudio.Terminate()
}
