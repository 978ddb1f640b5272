package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"unicode"

	"github.com/posener/complete/v2/install"
)

const (
	ERROR_STATUS_CODE = 1

	COMMAND_NAME = "quadc"
)

func main() {
	//handle completions
	completer.Complete(COMMAND_NAME)

	statusCode := _main(os.Args, os.Stdout, os.Stderr)
	if statusCode != 0 {
		os.Exit(statusCode)
	}
}

func _main(args []string, outW io.Writer, errW io.Writer) (statusCode int) {
	if len(args) == 1 { //no subcommand specified
		fmt.Fprint(errW, QUADC_CMD_HELP)
		return ERROR_STATUS_CODE
	}

	mainSubCommand := args[1]
	mainSubCommandArgs := args[2:]

	//if the command has the shape help <subcommand> ... we modify the arguments to ask the subcommand to print its help message.
	if mainSubCommand == HELP_SUBCMD && len(mainSubCommandArgs) > 0 && mainSubCommandArgs[0] != "" && unicode.IsLetter(rune(mainSubCommandArgs[0][0])) {
		mainSubCommand = mainSubCommandArgs[0]
		mainSubCommandArgs = []string{"-h"}
	}

	if slices.Contains(HELP_SUBCMD_EQUIVALENTS, mainSubCommand) {
		mainSubCommand = HELP_SUBCMD
	}

	//unknown command
	if !slices.Contains(SUBCOMMANDS, mainSubCommand) {
		fmt.Fprintf(errW, "unknown command '%s'\n", mainSubCommand)
		fmt.Fprint(errW, QUADC_CMD_HELP)
		return ERROR_STATUS_CODE
	}

	switch mainSubCommand {
	case HELP_SUBCMD:
		fmt.Fprint(outW, QUADC_CMD_HELP)
		return
	case INSTALL_COMPLETIONS_SUBCMD:
		err := install.Install(COMMAND_NAME)
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintln(outW, "installed")
		return
	case UNINSTALL_COMPLETIONS_SUBCMD:
		err := install.Uninstall(COMMAND_NAME)
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintln(outW, "uninstalled")
		return
	case RUN_SUBCMD:
		return RunScript(mainSubCommand, mainSubCommandArgs, outW, errW)
	case CHECK_SUBCMD:
		return CheckScript(mainSubCommand, mainSubCommandArgs, outW, errW)
	case WATCH_SUBCMD:
		return WatchScript(mainSubCommand, mainSubCommandArgs, outW, errW)
	case LISTINGS_SUBCMD:
		return ListListings(mainSubCommand, mainSubCommandArgs, outW, errW)
	case SHOW_SUBCMD:
		return ShowListing(mainSubCommand, mainSubCommandArgs, outW, errW)
	case DELETE_LISTING_SUBCMD:
		return DeleteListing(mainSubCommand, mainSubCommandArgs, outW, errW)
	}

	return ERROR_STATUS_CODE
}
