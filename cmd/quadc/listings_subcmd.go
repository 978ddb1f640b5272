package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
)

func ListListings(mainSubCommand string, mainSubCommandArgs []string, outW, errW io.Writer) (exitCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	common := addCommonFlags(flags)

	_, ok, statusCode := parseFlags(flags, mainSubCommandArgs, outW, errW)
	if !ok {
		return statusCode
	}

	env, err := common.environment(outW, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	archive, ok := openArchive(env, errW)
	if !ok {
		return ERROR_STATUS_CODE
	}
	defer archive.Close()

	entries, err := archive.List()
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	for _, entry := range entries {
		fmt.Fprintf(outW, "%s  %-20s %s  %d quadruple(s)\n", entry.ID, entry.Unit, entry.CreatedAt.Format(time.RFC3339), len(entry.Lines))
	}
	return 0
}

func ShowListing(mainSubCommand string, mainSubCommandArgs []string, outW, errW io.Writer) (exitCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	common := addCommonFlags(flags)

	var printJSON bool
	flags.BoolVar(&printJSON, "json", false, "print the archived entry in JSON")

	args, ok, statusCode := parseFlags(flags, mainSubCommandArgs, outW, errW)
	if !ok {
		return statusCode
	}

	id, ok := parseListingID(args, errW)
	if !ok {
		return ERROR_STATUS_CODE
	}

	env, err := common.environment(outW, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	archive, ok := openArchive(env, errW)
	if !ok {
		return ERROR_STATUS_CODE
	}
	defer archive.Close()

	entry, err := archive.Get(id)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	if printJSON {
		serialized, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			fmt.Fprintln(errW, err)
			return ERROR_STATUS_CODE
		}
		fmt.Fprintf(outW, "%s\n", serialized)
		return 0
	}

	for _, line := range entry.Lines {
		fmt.Fprintln(outW, line)
	}
	return 0
}

func DeleteListing(mainSubCommand string, mainSubCommandArgs []string, outW, errW io.Writer) (exitCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	common := addCommonFlags(flags)

	args, ok, statusCode := parseFlags(flags, mainSubCommandArgs, outW, errW)
	if !ok {
		return statusCode
	}

	id, ok := parseListingID(args, errW)
	if !ok {
		return ERROR_STATUS_CODE
	}

	env, err := common.environment(outW, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	archive, ok := openArchive(env, errW)
	if !ok {
		return ERROR_STATUS_CODE
	}
	defer archive.Close()

	if err := archive.Delete(id); err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}
	fmt.Fprintln(outW, "deleted")
	return 0
}

func parseListingID(args []string, errW io.Writer) (ulid.ULID, bool) {
	if len(args) == 0 {
		fmt.Fprintf(errW, "missing listing ID\n")
		return ulid.ULID{}, false
	}

	id, err := ulid.ParseStrict(args[0])
	if err != nil {
		fmt.Fprintf(errW, "invalid listing ID %q: %s\n", args[0], err)
		return ulid.ULID{}, false
	}
	return id, true
}
