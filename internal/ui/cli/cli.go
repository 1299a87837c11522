package cli

import (
	"flag"
	"io"
)

const versionString = "1.0.0"
const defaultConfigPath = "declscan.toml"

type cliOptions struct {
	configPath    string
	format        string
	language      string
	watch         bool
	history       bool
	trend         bool
	since         string
	historyWindow string
	metricsAddr   string
	outPath       string
	noColor       bool
	showFiles     bool
	verbose       bool
	version       bool
	args          []string
}

func parseOptions(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("declscan", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.format, "format", "", "Output format: text, json, yaml or toml (overrides output.format)")
	fs.StringVar(&opts.language, "lang", "javascript", "Language of source read from stdin: javascript, typescript or tsx")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and re-analyse files as they change")
	fs.BoolVar(&opts.history, "history", false, "Record scan snapshots in the history database")
	fs.BoolVar(&opts.trend, "trend", false, "Print the declaration trend from recorded history and exit (requires --history)")
	fs.StringVar(&opts.since, "since", "", "Include snapshots at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyWindow, "history-window", "24h", "Moving-window duration for trend averages")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (overrides observability.metrics_address)")
	fs.StringVar(&opts.outPath, "out", "", "Write the report to this file instead of stdout")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored text output")
	fs.BoolVar(&opts.showFiles, "files", false, "List every file in the text report")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
