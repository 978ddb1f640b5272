package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/inoxlang/quadc/internal/config"
	"github.com/inoxlang/quadc/internal/logs"
	"github.com/inoxlang/quadc/internal/prettyprint"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	RUN_SUBCMD                   = "run"
	CHECK_SUBCMD                 = "check"
	WATCH_SUBCMD                 = "watch"
	LISTINGS_SUBCMD              = "listings"
	SHOW_SUBCMD                  = "show"
	DELETE_LISTING_SUBCMD        = "delete-listing"
	INSTALL_COMPLETIONS_SUBCMD   = "install-completions"
	UNINSTALL_COMPLETIONS_SUBCMD = "uninstall-completions"
	HELP_SUBCMD                  = "help"
)

var (
	SUBCOMMANDS = []string{
		RUN_SUBCMD, CHECK_SUBCMD, WATCH_SUBCMD, LISTINGS_SUBCMD, SHOW_SUBCMD, DELETE_LISTING_SUBCMD,
		INSTALL_COMPLETIONS_SUBCMD, UNINSTALL_COMPLETIONS_SUBCMD, HELP_SUBCMD,
	}

	HELP_SUBCMD_EQUIVALENTS = []string{"--help", "-help", "-h"}

	SUBCOMMAND_DESCRIPTIONS = [][2]string{
		{RUN_SUBCMD, "replay an event script, print and write the listing of the quadruples"},
		{CHECK_SUBCMD, "replay event scripts (glob patterns are supported) and report the semantic errors, nothing is written"},
		{WATCH_SUBCMD, "check an event script each time it changes"},
		{LISTINGS_SUBCMD, "list the archived listings"},
		{SHOW_SUBCMD, "print an archived listing"},
		{DELETE_LISTING_SUBCMD, "remove a listing from the archive"},

		{INSTALL_COMPLETIONS_SUBCMD, "install CLI completions by addding the completion command to the detected rc file (supported shells are bash, zsh and fish)"},
		{UNINSTALL_COMPLETIONS_SUBCMD, "uninstall CLI completions by removing the completion command from the detected rc file"},
		{HELP_SUBCMD, "show the general help or command-specific help"},
	}

	SUBCOMMAND_DESCRIPTION_MAP = map[string]string{}

	QUADC_CMD_HELP = "commands:\n"
)

func init() {
	for _, entry := range SUBCOMMAND_DESCRIPTIONS {
		cmd, desc := entry[0], entry[1]
		SUBCOMMAND_DESCRIPTION_MAP[cmd] = desc
		QUADC_CMD_HELP += "\t" + cmd + " - " + desc + "\n"
	}
	QUADC_CMD_HELP += "\nType `quadc help <command>` to get command-specific help.\n"
}

// commonFlags are the flags accepted by all the subcommands that read the configuration.
type commonFlags struct {
	configPath string
	logLevel   string
	noColor    bool
}

func addCommonFlags(flags *flag.FlagSet) *commonFlags {
	common := &commonFlags{}
	flags.StringVar(&common.configPath, "config", "", "path of the configuration file, defaults to $XDG_CONFIG_HOME/"+config.CONFIG_FILE_RELPATH)
	flags.StringVar(&common.logLevel, "log-level", "", "log level (overrides the configuration)")
	flags.BoolVar(&common.noColor, "no-color", false, "disable colorization")
	return common
}

// environment is created from the common flags and the configuration.
type environment struct {
	config      config.Config
	logger      zerolog.Logger
	printConfig *prettyprint.PrettyPrintConfig
}

// environment loads the configuration, output is colorized only if outW is a terminal or if the configuration
// forces it.
func (f *commonFlags) environment(outW, errW io.Writer) (*environment, error) {
	var (
		cfg config.Config
		err error
	)

	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	levelName := cfg.LogLevel
	if f.logLevel != "" {
		levelName = f.logLevel
	}
	level, err := logs.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	colorize := !f.noColor && cfg.ShouldColorize() && (cfg.Color == config.COLOR_ALWAYS || isTerminal(outW))

	return &environment{
		config:      cfg,
		logger:      logs.New(errW, level, true),
		printConfig: prettyprint.DefaultConfig(colorize),
	}, nil
}

// parseFlags parses the arguments of a subcommand and returns its positional arguments, flags should precede
// them. The help message is printed if requested, in this case ok is false and statusCode is 0.
func parseFlags(flags *flag.FlagSet, args []string, outW, errW io.Writer) (positional []string, ok bool, statusCode int) {
	flags.SetOutput(errW)

	if showHelp(flags, args, outW) {
		return nil, false, 0
	}

	err := flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, false, 0
		}
		return nil, false, ERROR_STATUS_CODE
	}
	return flags.Args(), true, 0
}

func showHelp(flags *flag.FlagSet, args []string, out io.Writer) bool {
	//only show help
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {

		cmd := flags.Name()
		if desc, ok := SUBCOMMAND_DESCRIPTION_MAP[cmd]; ok {
			fmt.Fprintln(out, desc)
		}

		flags.SetOutput(out)
		fmt.Fprint(out, "\noptions:\n")
		flags.PrintDefaults()

		return true
	}

	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
