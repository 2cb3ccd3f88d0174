package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fetzsav/dice/internal/config"
)

const (
	promptWidth  = 1920
	promptHeight = 1080
)

// promptSettings asks for the handful of settings the interactive mode
// exposes. Unparsable numbers fall back to the defaults; anything but
// "y"/"yes" answers no.
func promptSettings(in io.Reader, out io.Writer, s config.Config) config.Config {
	r := bufio.NewScanner(in)
	ask := func(q string) string {
		fmt.Fprint(out, q)
		if !r.Scan() {
			return ""
		}
		return strings.TrimSpace(r.Text())
	}
	yes := func(q string) bool {
		switch strings.ToLower(ask(q + " (y/n): ")) {
		case "y", "yes":
			return true
		}
		return false
	}
	number := func(q string, def int) int {
		n, err := strconv.Atoi(ask(q))
		if err != nil || n <= 0 {
			fmt.Fprintf(out, "invalid input, using %d\n", def)
			return def
		}
		return n
	}

	s.InvertSource = yes("Invert the source image?")
	s.InvertTiles = yes("Invert the dice colors?")
	s.TileSize = number("Dice size in pixels: ", config.DefaultTileSize)
	s.Caption = yes("Add dice size/count caption?")
	if yes("Fit to a custom resolution?") {
		s.Output.Width = number("Width: ", promptWidth)
		s.Output.Height = number("Height: ", promptHeight)
	} else {
		s.Output.Width, s.Output.Height = 0, 0
	}
	return s
}
