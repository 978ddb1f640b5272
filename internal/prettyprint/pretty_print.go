package prettyprint

import "github.com/muesli/termenv"

var (
	DEFAULT_DARKMODE_PRINT_COLORS = PrettyPrintColors{
		Address:      GetFullColorSequence(termenv.ANSIBrightBlack, false),
		Mnemonic:     GetFullColorSequence(termenv.ANSIBlue, false),
		JumpMnemonic: GetFullColorSequence(termenv.ANSIBrightMagenta, false),
		Symbol:       GetFullColorSequence(termenv.ANSIBrightCyan, false),
		Temporary:    GetFullColorSequence(termenv.ANSI256Color(209), false),
		Constant:     GetFullColorSequence(termenv.ANSIBrightGreen, false),
		Target:       GetFullColorSequence(termenv.ANSIYellow, false),
		Type:         GetFullColorSequence(termenv.ANSIBlue, false),
		Unplaced:     GetFullColorSequence(termenv.ANSIBrightRed, false),

		DiscreteColor: GetFullColorSequence(termenv.ANSIBrightBlack, false),

		SuccessColor: GetFullColorSequence(termenv.ANSIBrightGreen, false),
		WarnColor:    GetFullColorSequence(termenv.ANSIYellow, false),
		ErrorColor:   GetFullColorSequence(termenv.ANSIRed, false),
	}

	DEFAULT_LIGHTMODE_PRINT_COLORS = PrettyPrintColors{
		Address:      GetFullColorSequence(termenv.ANSIBrightBlack, false),
		Mnemonic:     GetFullColorSequence(termenv.ANSI256Color(26), false),
		JumpMnemonic: GetFullColorSequence(termenv.ANSI256Color(90), false),
		Symbol:       GetFullColorSequence(termenv.ANSI256Color(27), false),
		Temporary:    GetFullColorSequence(termenv.ANSI256Color(88), false),
		Constant:     GetFullColorSequence(termenv.ANSI256Color(28), false),
		Target:       GetFullColorSequence(termenv.ANSI256Color(21), false),
		Type:         GetFullColorSequence(termenv.ANSI256Color(26), false),
		Unplaced:     GetFullColorSequence(termenv.ANSI256Color(160), false),

		DiscreteColor: GetFullColorSequence(termenv.ANSIBrightBlack, false),

		SuccessColor: GetFullColorSequence(termenv.ANSIBrightGreen, false),
		WarnColor:    GetFullColorSequence(termenv.ANSIYellow, false),
		ErrorColor:   GetFullColorSequence(termenv.ANSIRed, false),
	}
)

type PrettyPrintColors struct {
	//listings
	Address, Mnemonic, JumpMnemonic, Symbol, Temporary, Constant, Target, Type, Unplaced,

	DiscreteColor,
	SuccessColor, WarnColor, ErrorColor []byte
}

type PrettyPrintConfig struct {
	Colorize bool
	Colors   *PrettyPrintColors
}

// DefaultConfig returns a configuration whose colors are chosen according to the background of the terminal.
func DefaultConfig(colorize bool) *PrettyPrintConfig {
	colors := &DEFAULT_DARKMODE_PRINT_COLORS
	if colorize && !termenv.HasDarkBackground() {
		colors = &DEFAULT_LIGHTMODE_PRINT_COLORS
	}
	return &PrettyPrintConfig{
		Colorize: colorize,
		Colors:   colors,
	}
}

func GetFullColorSequence(color termenv.Color, bg bool) []byte {
	var b = []byte(termenv.CSI)
	b = append(b, []byte(color.Sequence(bg))...)
	b = append(b, 'm')
	return b
}
