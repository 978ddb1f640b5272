package main

import (
	"os"
	"strconv"

	"github.com/inoxlang/quadc/internal/config"
	"github.com/inoxlang/quadc/internal/listing"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
)

var (
	predictAnyFileAndDir = predict.Files("*")
	predictScripts       = predict.Files("*.y*ml")

	completer = CreateCompleter(func(c *Completer) *complete.Command {
		commonFlags := func(flags map[string]complete.Predictor) map[string]complete.Predictor {
			flags["config"] = predict.Files("*.yaml")
			flags["log-level"] = predict.Set{"trace", "debug", "info", "warn", "error"}
			flags["no-color"] = complete.PredictFunc(c.predictFileOrDirAfterSwitch)
			return flags
		}

		return &complete.Command{
			Sub: map[string]*complete.Command{
				RUN_SUBCMD: {
					Flags: commonFlags(map[string]complete.Predictor{
						"o":       predictAnyFileAndDir,
						"json":    complete.PredictFunc(c.predictFileOrDirAfterSwitch),
						"archive": complete.PredictFunc(c.predictFileOrDirAfterSwitch),
						"trace":   complete.PredictFunc(c.predictFileOrDirAfterSwitch),
					}),
					Args: predictScripts,
				},
				CHECK_SUBCMD: {
					Flags: commonFlags(map[string]complete.Predictor{
						"json": complete.PredictFunc(c.predictFileOrDirAfterSwitch),
					}),
					Args: predictScripts,
				},
				WATCH_SUBCMD: {
					Flags: commonFlags(map[string]complete.Predictor{
						"debounce": predict.Set{"100ms", "250ms", "1s"},
					}),
					Args: predictScripts,
				},
				LISTINGS_SUBCMD: {
					Flags: commonFlags(map[string]complete.Predictor{}),
				},
				SHOW_SUBCMD: {
					Flags: commonFlags(map[string]complete.Predictor{
						"json": predict.Nothing,
					}),
					Args: complete.PredictFunc(c.predictArchivedListings),
				},
				DELETE_LISTING_SUBCMD: {
					Flags: commonFlags(map[string]complete.Predictor{}),
					Args:  complete.PredictFunc(c.predictArchivedListings),
				},
				HELP_SUBCMD:                  {},
				INSTALL_COMPLETIONS_SUBCMD:   {},
				UNINSTALL_COMPLETIONS_SUBCMD: {},
			},
		}
	})
)

type Completer struct {
	*complete.Command
	currentCompLine  string
	currentCompPoint int //-1 if not retrieved
}

func CreateCompleter(create func(c *Completer) *complete.Command) *Completer {
	c := &Completer{}
	c.Command = create(c)
	return c
}

func (c *Completer) Complete(name string) {
	c.currentCompLine = os.Getenv("COMP_LINE")
	c.currentCompPoint, _ = strconv.Atoi(os.Getenv("COMP_POINT")) //ignore error because .CommandComplete will also check the value

	if c.currentCompPoint > len(c.currentCompLine) {
		c.currentCompPoint = len(c.currentCompLine)
	}

	c.Command.Complete(name)
}

func (c *Completer) beforeCursorPoint() string {
	return c.currentCompLine[:c.currentCompPoint]
}

func (c *Completer) predictFileOrDirAfterSwitch(prefix string) (results []string) {
	s := c.beforeCursorPoint()
	if s == "" {
		return
	}

	switch s[len(s)-1] {
	case '=':
		//The flag is a switch, it does not accept any value.
		return
	default:
		return predictAnyFileAndDir.Predict(prefix)
	}
}

// predictArchivedListings predicts the IDs of the listings in the default archive.
func (c *Completer) predictArchivedListings(prefix string) (results []string) {
	cfg, _, err := config.LoadDefault()
	if err != nil {
		return
	}
	path, err := cfg.ResolveArchivePath()
	if err != nil {
		return
	}

	archive, err := listing.Open(path, zerolog.Nop())
	if err != nil {
		return
	}
	defer archive.Close()

	entries, err := archive.List()
	if err != nil {
		return
	}
	for _, entry := range entries {
		results = append(results, entry.ID.String())
	}
	return
}
