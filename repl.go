package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/mrdg/animal/audio"
	"github.com/mrdg/animal/seq"
)

var errQuit = errors.New("quit")

func repl(s *session) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := s.exec(line); err == errQuit {
			return nil
		} else if err != nil {
			fmt.Println(err)
		}
	}
}

func (s *session) exec(line string) error {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return nil
	}
	name, args := parts[0], parts[1:]

	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if len(args) < cmd.minArgs {
			return fmt.Errorf("%s: not enough arguments, usage: %s", cmd.name, cmd.usage)
		}
		return cmd.run(s, args)
	}
	return fmt.Errorf("unknown command: %s (try help)", name)
}

type command struct {
	name    string
	usage   string
	help    string
	run     func(s *session, args []string) error
	minArgs int
}

// commands is assigned in init rather than initialized directly: helpCommand
// iterates commands, which would otherwise be an initialization cycle.
var commands []command

func init() {
	commands = []command{
		{
			name:  "gen",
			usage: "gen <prompt>",
			help:  "generate a new pattern from a text prompt",
			run:   genCommand, minArgs: 1,
		},
		{
			name:  "play",
			usage: "play",
			help:  "start the loop from beat 0",
			run:   playCommand,
		},
		{
			name:  "stop",
			usage: "stop",
			help:  "stop the loop; sounding samples ring out",
			run:   stopCommand,
		},
		{
			name:  "bpm",
			usage: "bpm <tempo>",
			help:  "set the tempo; restarts the loop if playing",
			run:   bpmCommand, minArgs: 1,
		},
		{
			name:  "show",
			usage: "show",
			help:  "print the current pattern grid",
			run:   showCommand,
		},
		{
			name:  "export",
			usage: "export [file]",
			help:  "render the loop offline and write a wav file",
			run:   exportCommand,
		},
		{
			name:  "help",
			usage: "help",
			run:   helpCommand,
		},
		{
			name:  "exit",
			usage: "exit",
			run:   func(*session, []string) error { return errQuit },
		},
	}
}

func genCommand(s *session, args []string) error {
	prompt := strings.Join(args, " ")
	sequence, err := s.gen.Generate(context.Background(), prompt)
	if err != nil {
		var verr *seq.ValidationError
		if errors.As(err, &verr) {
			// show the model's output verbatim so the user can see
			// what went wrong
			fmt.Println(verr.Raw)
		}
		return err
	}

	s.sequence = sequence
	s.cache.EnsureLoaded(context.Background(), sequence.Files())
	renderGrid(os.Stdout, s.sequence)
	return nil
}

func playCommand(s *session, args []string) error {
	if len(s.sequence) == 0 {
		return errors.New("nothing to play; use gen first")
	}
	return s.player.Play(s.request())
}

func stopCommand(s *session, args []string) error {
	s.player.Stop()
	return nil
}

func bpmCommand(s *session, args []string) error {
	bpm, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("not a tempo: %s", args[0])
	}
	if bpm <= 0 || bpm > 500 {
		return fmt.Errorf("bpm out of range 0-500: %v", bpm)
	}
	s.bpm = bpm

	// the tick interval is captured at start time, so a tempo change
	// while playing restarts the loop from beat 0
	if s.player.Playing() {
		s.player.Stop()
		return s.player.Play(s.request())
	}
	return nil
}

func showCommand(s *session, args []string) error {
	renderGrid(os.Stdout, s.sequence)
	return nil
}

func exportCommand(s *session, args []string) error {
	if len(s.sequence) == 0 {
		return errors.New("nothing to export; use gen first")
	}
	path := fmt.Sprintf("beat_%gbpm.wav", s.bpm)
	if len(args) > 0 {
		path = args[0]
	}

	buf, err := audio.Render(s.request(), s.cache)
	if err != nil {
		return err
	}
	data, err := audio.EncodeWAV(buf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Printf("wrote %s (%d bytes)", path, len(data))
	return nil
}

func helpCommand(s *session, args []string) error {
	for _, cmd := range commands {
		if cmd.help == "" {
			fmt.Printf("  %s\n", cmd.usage)
			continue
		}
		fmt.Printf("  %-16s %s\n", cmd.usage, cmd.help)
	}
	return nil
}
