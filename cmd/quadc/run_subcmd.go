package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/inoxlang/quadc/internal/afs"
	"github.com/inoxlang/quadc/internal/config"
	"github.com/inoxlang/quadc/internal/listing"
	"github.com/inoxlang/quadc/internal/prettyprint"
	"github.com/inoxlang/quadc/internal/quad"
	"github.com/inoxlang/quadc/internal/replay"
	"github.com/inoxlang/quadc/internal/unit"
)

func RunScript(mainSubCommand string, mainSubCommandArgs []string, outW, errW io.Writer) (exitCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	common := addCommonFlags(flags)

	var outputPath string
	var printJSON bool
	var archive bool
	var trace bool

	flags.StringVar(&outputPath, "o", "", "path of the listing file, defaults to <listing-dir>/<unit>"+config.LISTING_FILE_EXT)
	flags.BoolVar(&printJSON, "json", false, "print the listing in JSON")
	flags.BoolVar(&archive, "archive", false, "store the listing in the archive")
	flags.BoolVar(&trace, "trace", false, "trace the mutations of the quadruple table")

	args, ok, statusCode := parseFlags(flags, mainSubCommandArgs, outW, errW)
	if !ok {
		return statusCode
	}

	if len(args) == 0 {
		fmt.Fprintf(errW, "missing script path\n")
		return ERROR_STATUS_CODE
	}

	env, err := common.environment(outW, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	u, ok := replayScript(env, args[0], trace, errW)
	if !ok {
		return ERROR_STATUS_CODE
	}

	//print the listing

	if printJSON {
		listingJSON, err := quad.ListingJSON(u.Code(), true)
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintf(outW, "%s\n", listingJSON)
	} else if err := prettyprint.PrintListing(outW, u.Code(), env.printConfig); err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	//write the listing file

	if outputPath == "" {
		outputPath = env.config.ListingPath(u.Name())
	}

	dirFS, filename, err := openParentDir(outputPath)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	if err := u.PersistFile(dirFS, filename); err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}
	prettyprint.PrintSuccess(errW, "listing written to "+outputPath, env.printConfig)

	if archive {
		if !archiveListing(env, u, errW) {
			return ERROR_STATUS_CODE
		}
	}

	if u.HasErrors() {
		return ERROR_STATUS_CODE
	}
	return 0
}

// replayScript parses and replays a script, the diagnostics of the unit are printed to errW.
func replayScript(env *environment, path string, trace bool, errW io.Writer) (*unit.Unit, bool) {
	dirFS, filename, err := openParentDir(path)
	if err != nil {
		fmt.Fprintln(errW, err)
		return nil, false
	}

	script, err := replay.ParseFile(dirFS, filename)
	if err != nil {
		fmt.Fprintln(errW, err)
		return nil, false
	}

	runConfig := replay.RunConfig{
		Logger: env.logger,
	}
	if script.Start == 0 {
		runConfig.Start = quad.Address(env.config.StartAddress)
	}
	if trace {
		runConfig.Trace = errW
	}

	u, runErr := replay.Run(script, runConfig)

	if err := prettyprint.PrintDiagnostics(errW, u.Diagnostics(), env.printConfig); err != nil {
		fmt.Fprintln(errW, err)
		return nil, false
	}

	if runErr != nil {
		fmt.Fprintf(errW, "%s: %s\n", path, runErr)
		return nil, false
	}
	return u, true
}

func archiveListing(env *environment, u *unit.Unit, errW io.Writer) bool {
	archive, ok := openArchive(env, errW)
	if !ok {
		return false
	}
	defer archive.Close()

	entry, err := archive.Save(u.Name(), u.ID(), u.Code().Listing())
	if err != nil {
		fmt.Fprintln(errW, err)
		return false
	}
	prettyprint.PrintSuccess(errW, "listing archived as "+entry.ID.String(), env.printConfig)
	return true
}

func openArchive(env *environment, errW io.Writer) (*listing.Archive, bool) {
	path, err := env.config.ResolveArchivePath()
	if err != nil {
		fmt.Fprintln(errW, err)
		return nil, false
	}

	archive, err := listing.Open(path, env.logger)
	if err != nil {
		fmt.Fprintln(errW, err)
		return nil, false
	}
	return archive, true
}

// openParentDir returns a filesystem rooted at the parent directory of path and the name of the file.
func openParentDir(path string) (afs.Filesystem, string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}

	dirFS, err := afs.OS(filepath.Dir(absPath))
	if err != nil {
		return nil, "", err
	}
	return dirFS, filepath.Base(absPath), nil
}
