package cli

import (
	"fmt"
	"strings"
)

const usage = `Usage: birl [options] [file.birl ...]

Options:
  -h, --help             show this help
  -v, --version          print the version
  -i, --interactive      read lines interactively after running the given sources
  -e, --eval <source>    run source text (may be repeated)
  -f, --file <path>      run a source file (may be repeated)
      --no-stdlib        do not register the standard library
      --dump             print the compiled code before running it
      --fmt              print the sources in canonical form instead of running them
      --trace            log every executed instruction
      --verbose          log at debug level
      --config <path>    read settings from this file instead of searching for birl.yaml

With no sources, birl starts an interactive shell when stdin is a terminal
and otherwise reads the program from stdin.
`

// options are the parsed command line flags.
type options struct {
	help        bool
	version     bool
	interactive bool
	noStdlib    bool
	dump        bool
	format      bool
	trace       bool
	verbose     bool
	configPath  string
	sources     []source
}

// source is one program text named on the command line.
type source struct {
	name string
	path string // empty for -e text
	text string
}

func (o *options) hasSources() bool { return len(o.sources) > 0 }

// parseArgs parses args (without the program name). Everything after "--"
// is taken as a file name.
func parseArgs(args []string) (*options, error) {
	opts := &options{}
	evalCount := 0

	for i := 0; i < len(args); i++ {
		arg := args[i]

		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag %s needs a value", arg)
			}
			i++
			return args[i], nil
		}

		switch arg {
		case "-h", "-help", "--help":
			opts.help = true
		case "-v", "-version", "--version":
			opts.version = true
		case "-i", "--interactive":
			opts.interactive = true
		case "--no-stdlib":
			opts.noStdlib = true
		case "--dump":
			opts.dump = true
		case "--fmt":
			opts.format = true
		case "--trace":
			opts.trace = true
		case "--verbose":
			opts.verbose = true
		case "--config":
			v, err := value()
			if err != nil {
				return nil, err
			}
			opts.configPath = v
		case "-e", "--eval":
			v, err := value()
			if err != nil {
				return nil, err
			}
			evalCount++
			opts.sources = append(opts.sources, source{name: fmt.Sprintf("<eval %d>", evalCount), text: v})
		case "-f", "--file":
			v, err := value()
			if err != nil {
				return nil, err
			}
			opts.sources = append(opts.sources, source{name: v, path: v})
		case "--":
			for _, rest := range args[i+1:] {
				opts.sources = append(opts.sources, source{name: rest, path: rest})
			}
			return opts, nil
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, fmt.Errorf("unknown flag %s", arg)
			}
			opts.sources = append(opts.sources, source{name: arg, path: arg})
		}
	}
	return opts, nil
}
