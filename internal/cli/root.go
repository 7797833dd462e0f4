// Package cli implements the pureproto command line tool.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/anirudhraja/pureproto"
	"github.com/anirudhraja/pureproto/config"
	"github.com/anirudhraja/pureproto/internal/logging"
)

// app holds the state PersistentPreRunE builds for the subcommands.
type app struct {
	cfgFile      string
	protoFiles   []string
	protoPaths   []string
	logLevel     string
	outputFormat string

	cfg   config.Config
	log   zerolog.Logger
	codec *pureproto.Codec
}

// NewRootCmd returns the pureproto command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pureproto",
		Short: "Encode and decode protobuf messages from .proto schemas",
		Long: `pureproto reads .proto files at runtime and converts between the
protobuf wire format and JSON or YAML, without generated code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringSliceVar(&a.protoFiles, "proto", nil, ".proto file or directory to load (repeatable)")
	root.PersistentFlags().StringSliceVarP(&a.protoPaths, "proto-path", "I", nil, "directory to resolve imports against (repeatable)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	root.PersistentFlags().StringVarP(&a.outputFormat, "output", "o", "json", "output format: json, yaml")

	root.AddCommand(
		newDecodeCmd(a),
		newEncodeCmd(a),
		newRawCmd(a),
		newTypesCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup applies the config file, then the environment, then flags.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.cfgFile != "" {
		var err error
		cfg, err = config.Load(a.cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	cfg.Schema.Files = append(cfg.Schema.Files, a.protoFiles...)
	cfg.Schema.ProtoPaths = append(cfg.Schema.ProtoPaths, a.protoPaths...)
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	logCfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.Log.Level); ok {
		logCfg.Level = lvl
	}
	logCfg.NoColor = cfg.Log.NoColor
	logCfg.JSON = cfg.Log.JSON
	logging.ApplyEnvOverrides(&logCfg)
	if lvl, ok := logging.ParseLevel(a.logLevel); ok {
		logCfg.Level = lvl
	}
	a.log = logging.New(cmd.ErrOrStderr(), logCfg)

	codec, err := pureproto.NewFromConfig(cfg, a.log)
	if err != nil {
		return err
	}
	a.codec = codec
	return nil
}
