package audio

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	wav "github.com/youpy/go-wav"
	"golang.org/x/sync/errgroup"
)

// Sound is a decoded sample: stereo-interleaved float64 PCM. Once loaded it
// is immutable and shared between playback voices.
type Sound struct {
	file string
	buf  []float64
}

// Cache holds decoded samples keyed by filename, loading them from the
// library root on demand. Loads are best-effort: a file that fails to load
// is logged and skipped, and playback skips steps whose sample never made
// it into the cache. Sounds are never evicted.
type Cache struct {
	root string

	mu     sync.Mutex
	sounds map[string]*Sound
}

func NewCache(root string) *Cache {
	return &Cache{
		root:   root,
		sounds: make(map[string]*Sound),
	}
}

const maxConcurrentLoads = 4

// EnsureLoaded fetches and decodes every filename not already resident.
// Failures are per-file and do not abort sibling loads; a failed file stays
// absent until a later EnsureLoaded retries it.
func (c *Cache) EnsureLoaded(ctx context.Context, files []string) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for _, file := range files {
		if c.Get(file) != nil {
			continue
		}
		file := file
		g.Go(func() error {
			snd, err := loadSound(filepath.Join(c.root, file))
			if err != nil {
				log.Printf("cache: load %s: %v", file, err)
				return nil
			}
			c.mu.Lock()
			c.sounds[file] = snd
			c.mu.Unlock()
			return nil
		})
	}
	g.Wait()
}

// Get returns the decoded sample for file, or nil when it isn't resident.
// It never blocks on loading; the audio callback calls it on every tick.
func (c *Cache) Get(file string) *Sound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sounds[file]
}

// Len reports the number of resident sounds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sounds)
}

func loadSound(path string) (*Sound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := wav.NewReader(f)
	format, err := r.Format()
	if err != nil {
		return nil, err
	}
	stereo := format.NumChannels > 1

	snd := Sound{file: path}
	for {
		samples, err := r.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, sample := range samples {
			l := r.FloatValue(sample, 0)
			right := l
			if stereo {
				right = r.FloatValue(sample, 1)
			}
			snd.buf = append(snd.buf, l, right)
		}
	}
	return &snd, nil
}
