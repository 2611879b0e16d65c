package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mrdg/animal/audio"
	"github.com/mrdg/animal/catalog"
	"github.com/mrdg/animal/gen"
	"github.com/mrdg/animal/seq"
)

func main() {
	var (
		bpm         = flag.Float64("bpm", 120, "initial tempo, quarter note beats per minute")
		catalogPath = flag.String("catalog", "sample_database.csv", "sample library index file")
		samples     = flag.String("samples", "samples", "sample library root directory")
		ollamaURL   = flag.String("ollama", "http://localhost:11434", "base URL of the generator service")
		model       = flag.String("model", "llama3.1", "model name")
		run         = flag.String("run", "", "file with commands to run at startup")
	)
	flag.Parse()

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("catalog: %d samples", cat.Len())

	cache := audio.NewCache(*samples)
	engine, err := audio.NewEngine(cache)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	session := &session{
		player: engine,
		cache:  cache,
		gen:    gen.NewGenerator(gen.NewClient(*ollamaURL, *model), cat),
		bpm:    *bpm,
	}

	if *run != "" {
		f, err := os.Open(*run)
		if err != nil {
			log.Fatal(err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := session.exec(line); err != nil {
				log.Fatal(err)
			}
		}
		if err := scanner.Err(); err != nil {
			log.Fatal(err)
		}
		f.Close()
	}

	if err := repl(session); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// player is the live playback surface of the audio engine.
type player interface {
	Play(audio.Request) error
	Stop()
	Playing() bool
}

// session owns the current pattern and tempo. The REPL runs commands one at
// a time, so a generation in flight blocks further commands and two
// generations can never race; the previous sequence stays playable until a
// new one replaces it wholesale.
type session struct {
	player player
	cache  *audio.Cache
	gen    *gen.Generator

	bpm      float64
	sequence seq.Sequence
}

func (s *session) request() audio.Request {
	return audio.Request{
		Sequence:   s.sequence,
		BPM:        s.bpm,
		TotalBeats: seq.GridBeats,
	}
}
