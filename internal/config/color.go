package config

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
)

var (
	FORCE_COLOR           bool
	TRUECOLOR_COLORTERM   bool
	TERM_256COLOR_CAPABLE bool
	NO_COLOR              bool
	SHOULD_COLORIZE       bool
)

func init() {
	detectColorSupport(os.LookupEnv, termenv.EnvColorProfile)
}

func detectColorSupport(lookupEnv func(string) (string, bool), profile func() termenv.Profile) {
	// FORCE COLOR

	FORCE_COLOR = false
	if s, ok := lookupEnv("FORCE_COLOR"); ok {
		FORCE_COLOR = len(s) != 0 && s != "false" && s != "0"
	}

	//TERMCOLOR

	colorterm, _ := lookupEnv("COLORTERM")
	TRUECOLOR_COLORTERM = colorterm == "truecolor"

	//NO_COLOR

	NO_COLOR = false
	if s, ok := lookupEnv("NO_COLOR"); ok {
		NO_COLOR = len(s) != 0 && s != "false" && s != "0"
	}

	//TERM

	term, _ := lookupEnv("TERM")
	TERM_256COLOR_CAPABLE = strings.Contains(term, "256color")

	//

	SHOULD_COLORIZE = !NO_COLOR && (FORCE_COLOR || TRUECOLOR_COLORTERM || TERM_256COLOR_CAPABLE || profile() != termenv.Ascii)
}
