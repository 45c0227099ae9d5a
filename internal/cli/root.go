// Package cli provides the Cobra command structure for as64.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/retrolabs/as64/asm"
	"github.com/retrolabs/as64/internal/config"
	"github.com/retrolabs/as64/internal/logging"
	"github.com/retrolabs/as64/internal/ui/pretty"
)

// ErrAssemblyFailed signals a nonzero exit after error diagnostics were
// reported. Its text is not printed; the diagnostics were already printed.
var ErrAssemblyFailed = errors.New("assembly failed")

// ErrIOFailed signals a file input or output failure.
var ErrIOFailed = errors.New("i/o failed")

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type options struct {
	listing    bool
	output     string
	outputDir  string
	defines    []string
	symbols    bool
	raw        bool
	dumpAST    bool
	debug      bool
	color      string
	configPath string
}

// NewRootCommand creates the as64 root command.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "as64 [flags] file...",
		Short: "A two-pass 6502 assembler for the PowerAssembler dialect",
		Long: `as64 assembles MOS 6502 source code written in the historical
PowerAssembler dialect into Commodore-compatible object files: a 16-bit
little-endian load address followed by the raw byte payload.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date),
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.debug {
				logging.SetLevel("debug")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().BoolVarP(&opts.listing, "listing", "l", false, "write listing to standard output")
	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "default output filename")
	rootCmd.Flags().StringVarP(&opts.outputDir, "output-dir", "O", "", "output directory prefix")
	rootCmd.Flags().StringArrayVarP(&opts.defines, "define", "D", nil, "predefine a symbol: name[=value]")
	rootCmd.Flags().BoolVarP(&opts.symbols, "symbols", "s", false, "dump symbol table to standard output")
	rootCmd.Flags().BoolVarP(&opts.raw, "raw", "r", false, "suppress the load-address prefix in output files")
	rootCmd.Flags().BoolVarP(&opts.dumpAST, "dump-ast", "A", false, "dump the statement list and exit")
	rootCmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVar(&opts.color, "color", "auto", "colorize output: auto, always, never")
	rootCmd.Flags().StringVar(&opts.configPath, "config", "", "path to config file")

	return rootCmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	if len(args) == 0 {
		return fmt.Errorf("no source files given")
	}

	logger := logging.Default()

	cfg, err := config.Load("", opts.configPath)
	if err != nil {
		return err
	}
	mergeConfig(cmd, opts, cfg)

	context := asm.NewContext()
	context.Log = logger

	if err := predefine(context, cfg, opts); err != nil {
		return err
	}

	if opts.dumpAST {
		if err := asm.ParseOnly(context, args...); err != nil {
			logger.Error("input failed", logging.FieldError, err)
			return ErrIOFailed
		}
		asm.DumpStatements(os.Stdout, context)
		return nil
	}

	if err := asm.Assemble(context, args...); err != nil {
		logger.Error("input failed", logging.FieldError, err)
		return ErrIOFailed
	}

	printMessages(context, opts)

	if opts.listing {
		asm.WriteListing(os.Stdout, context)
	}
	if opts.symbols {
		asm.WriteSymbols(os.Stdout, context)
	}

	if context.Messages.ErrorCount() > 0 {
		return ErrAssemblyFailed
	}

	return writeOutputs(context, opts, logger)
}

// mergeConfig applies config-file defaults for options the user did not
// set on the command line.
func mergeConfig(cmd *cobra.Command, opts *options, cfg *config.Config) {
	if opts.output == "" {
		opts.output = cfg.Output
	}
	if opts.outputDir == "" {
		opts.outputDir = cfg.OutputDir
	}
	if !cmd.Flags().Changed("listing") && cfg.Listing {
		opts.listing = true
	}
	if !cmd.Flags().Changed("raw") && cfg.Raw {
		opts.raw = true
	}
}

// predefine seeds the symbol table from the config file and -D options.
// -D options go first, so a config symbol of the same name is ignored.
func predefine(context *asm.Context, cfg *config.Config, opts *options) error {
	for _, define := range opts.defines {
		name, value := define, "0"
		if i := strings.IndexByte(define, '='); i >= 0 {
			name, value = define[:i], define[i+1:]
		}
		v, err := parseDefineValue(value)
		if err != nil {
			return fmt.Errorf("-D %s: %w", define, err)
		}
		if !context.Predefine(name, v) {
			return fmt.Errorf("-D %s: symbol already defined", name)
		}
	}
	for name, value := range cfg.Symbols {
		v, err := parseDefineValue(value)
		if err != nil {
			return fmt.Errorf("config symbol %s: %w", name, err)
		}
		context.Predefine(name, v)
	}
	return nil
}

// parseDefineValue parses a decimal or 0x-prefixed hexadecimal value.
func parseDefineValue(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	digits, base := value, 10
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		digits, base = value[2:], 16
	}
	v, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value '%s'", value)
	}
	return int(v), nil
}

// printMessages renders the sorted diagnostics to standard error.
func printMessages(context *asm.Context, opts *options) {
	styles := pretty.NewStyles(pretty.IsColorEnabled(opts.color, os.Stderr))

	for _, msg := range context.Messages.Messages() {
		location, sourceLine := "", ""
		if msg.Pos.IsValid() {
			location = fmt.Sprintf("%s:%d:%d",
				context.Source.ShortFilename(msg.Pos.FileIndex), msg.Pos.Line, msg.Pos.Column+1)
			sourceLine, _ = context.Source.LineText(msg.Pos)
		}
		fmt.Fprint(os.Stderr, styles.FormatMessage(msg, location, sourceLine, true))
	}

	if context.Messages.Count() > 0 {
		fmt.Fprintln(os.Stderr, styles.FormatSummary(
			context.Messages.ErrorCount(), context.Messages.WarningCount()))
	}
}

// writeOutputs writes every named, non-empty code buffer to disk. Buffers
// without a filename fall back to the default output name, if any.
func writeOutputs(context *asm.Context, opts *options, logger *log.Logger) error {
	for _, buffer := range context.Buffers {
		if buffer.IsEmpty() {
			continue
		}
		name := buffer.Filename()
		if name == "" {
			name = opts.output
		}
		if name == "" {
			continue
		}

		path := name
		if opts.outputDir != "" {
			path = filepath.Join(opts.outputDir, name)
		}

		if err := writeObjectFile(path, buffer, opts.raw); err != nil {
			logger.Error("output failed", logging.FieldError, err)
			return ErrIOFailed
		}
		logger.Info("wrote object file",
			logging.FieldFile, path,
			logging.FieldOrigin, fmt.Sprintf("$%04x", buffer.Origin()),
			logging.FieldBytes, buffer.Len())
	}
	return nil
}

func writeObjectFile(path string, buffer *asm.CodeBuffer, raw bool) error {
	f, err := os.Create(path)
	if err != nil {
		return &asm.SystemError{Path: path, Err: err}
	}
	defer f.Close()

	if !raw {
		origin := buffer.Origin()
		if _, err := f.Write([]byte{byte(origin & 0xff), byte((origin >> 8) & 0xff)}); err != nil {
			return &asm.SystemError{Path: path, Err: err}
		}
	}
	if _, err := f.Write(buffer.Bytes()); err != nil {
		return &asm.SystemError{Path: path, Err: err}
	}
	return nil
}
