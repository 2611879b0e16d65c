package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrdg/animal/audio"
	"github.com/mrdg/animal/seq"
)

type fakePlayer struct {
	playing bool
	lastReq audio.Request
	calls   []string
}

func (f *fakePlayer) Play(req audio.Request) error {
	f.playing = true
	f.lastReq = req
	f.calls = append(f.calls, "play")
	return nil
}

func (f *fakePlayer) Stop() {
	f.playing = false
	f.calls = append(f.calls, "stop")
}

func (f *fakePlayer) Playing() bool { return f.playing }

func testSequence() seq.Sequence {
	return seq.Sequence{
		{Name: "Kick", Steps: []seq.Step{{Beat: 0, File: "k.wav"}, {Beat: 8, File: "k.wav"}}},
		{Name: "Hat", Steps: []seq.Step{{Beat: 2}}},
	}
}

func TestExecUnknownCommand(t *testing.T) {
	s := &session{player: &fakePlayer{}, bpm: 120}
	if err := s.exec("wobble"); err == nil {
		t.Error("want error for unknown command")
	}
	if err := s.exec("bpm"); err == nil {
		t.Error("want error for missing arguments")
	}
}

func TestPlayWithoutSequence(t *testing.T) {
	s := &session{player: &fakePlayer{}, bpm: 120}
	if err := s.exec("play"); err == nil {
		t.Error("want error when no sequence has been generated")
	}
}

func TestPlayAndStop(t *testing.T) {
	p := &fakePlayer{}
	s := &session{player: p, bpm: 120, sequence: testSequence()}

	if err := s.exec("play"); err != nil {
		t.Fatal(err)
	}
	if p.lastReq.BPM != 120 || p.lastReq.TotalBeats != seq.GridBeats {
		t.Errorf("wrong request: %+v", p.lastReq)
	}
	if err := s.exec("stop"); err != nil {
		t.Fatal(err)
	}
	if p.playing {
		t.Error("still playing after stop")
	}
}

func TestBpmRestartsWhilePlaying(t *testing.T) {
	p := &fakePlayer{}
	s := &session{player: p, bpm: 120, sequence: testSequence()}
	s.exec("play")

	if err := s.exec("bpm 140"); err != nil {
		t.Fatal(err)
	}
	want := []string{"play", "stop", "play"}
	if strings.Join(p.calls, ",") != strings.Join(want, ",") {
		t.Errorf("tempo change while playing must stop and restart, got %v", p.calls)
	}
	if p.lastReq.BPM != 140 {
		t.Errorf("restart uses bpm %v, want 140", p.lastReq.BPM)
	}
}

func TestBpmWhileStopped(t *testing.T) {
	p := &fakePlayer{}
	s := &session{player: p, bpm: 120, sequence: testSequence()}
	if err := s.exec("bpm 90"); err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 0 {
		t.Errorf("tempo change while stopped must not touch the player: %v", p.calls)
	}
	if err := s.exec("bpm 9000"); err == nil {
		t.Error("want error for out-of-range tempo")
	}
}

func TestRenderGrid(t *testing.T) {
	var buf bytes.Buffer
	renderGrid(&buf, testSequence())
	out := buf.String()

	if got := strings.Count(out, "⬛️"); got != 2 {
		t.Errorf("%d filled cells, want 2 (the step without a file is a rest)", got)
	}
	if got := strings.Count(out, "⬜️"); got != 2*seq.GridBeats-2 {
		t.Errorf("%d empty cells, want %d", got, 2*seq.GridBeats-2)
	}
	for _, name := range []string{"Kick", "Hat"} {
		if !strings.Contains(out, name) {
			t.Errorf("grid is missing track %s", name)
		}
	}

	buf.Reset()
	renderGrid(&buf, nil)
	if !strings.Contains(buf.String(), "no pattern") {
		t.Errorf("empty sequence should say so, got %q", buf.String())
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	s := &session{
		player:   &fakePlayer{},
		cache:    audio.NewCache(dir),
		bpm:      120,
		sequence: testSequence(),
	}
	path := filepath.Join(dir, "out.wav")
	if err := s.exec("export " + path); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// 16 beats at 120 bpm: 8 seconds of stereo 16-bit PCM plus the header
	if want := int64(44 + 8*44100*2*2); info.Size() != want {
		t.Errorf("exported file is %d bytes, want %d", info.Size(), want)
	}
}
