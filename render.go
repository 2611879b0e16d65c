package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrdg/animal/seq"
)

func renderGrid(w io.Writer, sequence seq.Sequence) {
	if len(sequence) == 0 {
		fmt.Fprintln(w, "no pattern; use gen to create one")
		return
	}

	var maxNameLen int
	for i, track := range sequence {
		if len(trackName(track, i)) > maxNameLen {
			maxNameLen = len(trackName(track, i))
		}
	}
	maxNameLen++

	var numbers string
	for beat := 1; beat <= seq.GridBeats; beat++ {
		space := 2
		if beat < 10 {
			space++
		}
		numbers += strconv.Itoa(beat) + strings.Repeat(" ", space)
	}
	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", maxNameLen), colorize(numbers, colorMagenta))

	for i, track := range sequence {
		var steps string
		for beat := 0; beat < seq.GridBeats; beat++ {
			cell := "⬜️"
			if step, ok := track.StepAt(beat); ok && step.File != "" {
				cell = "⬛️"
			}
			steps += cell + "  "
		}
		name := formatTrackName(trackName(track, i), maxNameLen)
		fmt.Fprintf(w, "%s %s\n", name, steps)
	}
}

func trackName(track seq.Track, i int) string {
	if track.Name != "" {
		return track.Name
	}
	return "track " + strconv.Itoa(i+1)
}

func formatTrackName(name string, max int) string {
	if len(name) > max {
		name = name[:max-1] + "…"
	}
	if len(name) < max {
		name += strings.Repeat(" ", max-len(name))
	}
	return colorize(name, colorBlue)
}

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
)

func colorize(text string, color int) string {
	return fmt.Sprintf("\033[%dm%s\033[0m", color, text)
}
