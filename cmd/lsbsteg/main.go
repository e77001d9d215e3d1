// Command lsbsteg hides a file inside a 24-bit BMP (or 16-bit PCM WAV)
// carrier and recovers it again.
package main

import (
	"bmp-steganography/config"
	"bmp-steganography/logging"
	"bmp-steganography/stego"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// errUsage marks argument problems; the usage text has already been printed.
var errUsage = errors.New("invalid command line arguments")

type command struct {
	name    string
	summary string
	run     func(env *environment, args []string) error
}

// environment carries what every subcommand needs.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
}

var commands = []command{
	{name: "encode", summary: "hide a secret file in a carrier", run: runEncode},
	{name: "decode", summary: "recover a secret file from a stego carrier", run: runDecode},
	{name: "capacity", summary: "report how large a secret a carrier can hold", run: runCapacity},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		if len(args) == 0 {
			return 1
		}
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "Error! Unsupported operation %q.\n\n", args[0])
		printUsage(stderr)
		return 1
	}

	env := &environment{logger: zap.NewNop(), stdin: stdin, stdout: stdout, stderr: stderr}
	defer func() { _ = env.logger.Sync() }()
	if err := cmd.run(env, args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error! %s\n", userMessage(err))
		}
		env.logger.Debug("command failed", zap.String("command", cmd.name), zap.Error(err))
		return 1
	}
	return 0
}

func addCommonFlags(flagSet *pflag.FlagSet) {
	flagSet.String("config", "", "path to YAML config file (default: $"+config.EnvConfigPath+")")
	flagSet.BoolP("verbose", "v", false, "log every pipeline step")
}

func parseFlags(env *environment, flagSet *pflag.FlagSet, args []string) error {
	flagSet.SetOutput(env.stderr)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		fmt.Fprintf(env.stderr, "Error! %v\n", err)
		flagSet.Usage()
		return errUsage
	}
	if flagSet.NArg() > 0 {
		fmt.Fprintf(env.stderr, "Error! unexpected argument %q\n", flagSet.Arg(0))
		flagSet.Usage()
		return errUsage
	}

	configPath, _ := flagSet.GetString("config")
	verbose, _ := flagSet.GetBool("verbose")
	return env.setup(configPath, verbose)
}

// setup loads configuration and installs the logger.
func (env *environment) setup(configPath string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	env.cfg = cfg
	env.logger = logger
	stego.SetLogger(logger)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `lsbsteg hides a file in the least-significant bits of a 24-bit BMP image.

Usage:
  lsbsteg encode -i <image.bmp> -s <secret file> [-o <stego.bmp>] [-m <marker>]
  lsbsteg decode -i <stego.bmp> [-o <output name>] [-m <marker>]
  lsbsteg capacity -i <image.bmp> [-m <marker>] [-e <extension>]

Commands:
`)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, `
The marker is a short string (1 to %d bytes) written ahead of the secret and
checked on decode. Without -m it is read from the terminal.
16-bit PCM WAV files are accepted as carriers too.
`, stego.MarkerMaxLen-1)
}
