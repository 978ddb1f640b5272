package main

import (
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"
	"github.com/inoxlang/quadc/internal/prettyprint"
	"github.com/inoxlang/quadc/internal/unit"
	"github.com/inoxlang/quadc/internal/utils"
)

type checkResult struct {
	Unit        string            `json:"unit"`
	Symbols     int               `json:"symbols"`
	Quadruples  int               `json:"quadruples"`
	Diagnostics []unit.Diagnostic `json:"diagnostics"`
}

func CheckScript(mainSubCommand string, mainSubCommandArgs []string, outW, errW io.Writer) (exitCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	common := addCommonFlags(flags)

	var printJSON bool
	flags.BoolVar(&printJSON, "json", false, "print the result in JSON, one line per script")

	args, ok, statusCode := parseFlags(flags, mainSubCommandArgs, outW, errW)
	if !ok {
		return statusCode
	}

	if len(args) == 0 {
		fmt.Fprintf(errW, "missing script path\n")
		return ERROR_STATUS_CODE
	}

	paths, err := expandScriptPatterns(args)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	env, err := common.environment(outW, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	for _, path := range paths {
		if !checkScript(env, path, printJSON, outW, errW) {
			exitCode = ERROR_STATUS_CODE
		}
	}
	return
}

// expandScriptPatterns expands the glob patterns among args, an argument without meta characters is kept as is
// even if the file does not exist. A pattern matching nothing is an error.
func expandScriptPatterns(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		if !containsGlobMeta(arg) {
			paths = append(paths, arg)
			continue
		}

		if !doublestar.ValidatePattern(arg) {
			return nil, fmt.Errorf("invalid pattern: %s", arg)
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no script matches the pattern %s", arg)
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}

	return slices.Compact(paths), nil
}

func containsGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// checkScript replays a script and reports its symbols and diagnostics, false is returned if the script
// could not be replayed or if it has semantic errors.
func checkScript(env *environment, path string, printJSON bool, outW, errW io.Writer) bool {
	u, ok := replayScript(env, path, false, errW)
	if !ok {
		return false
	}

	if err := u.Code().CheckAddresses(); err != nil {
		fmt.Fprintln(errW, err)
		return false
	}

	if printJSON {
		result := checkResult{
			Unit:        u.Name(),
			Symbols:     u.Symbols().Len(),
			Quadruples:  u.Code().Size(),
			Diagnostics: utils.EmptySliceIfNil(u.Diagnostics()),
		}
		fmt.Fprintf(outW, "%s\n", utils.Must(json.Marshal(result)))
	} else if err := prettyprint.PrintSymbols(outW, u.Symbols(), env.printConfig); err != nil {
		fmt.Fprintln(errW, err)
		return false
	}

	if u.HasErrors() {
		return false
	}

	if !printJSON {
		prettyprint.PrintSuccess(errW, fmt.Sprintf("%s: no semantic errors, %d quadruple(s)", u.Name(), u.Code().Size()), env.printConfig)
	}
	return true
}
