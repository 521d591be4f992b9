// Root command for the jugglevault CLI.
package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jugglevault/jugglevault/internal/paths"
	"github.com/jugglevault/jugglevault/pkg/jugglevault"
)

// Exit codes: user errors (bad arguments, unknown IDs) exit 1, system errors
// (I/O, corrupt archives) exit 2.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagVideoDir  string
	flagJSON      bool
	flagVerbose   bool
)

// Values loaded from config.yaml by PersistentPreRunE so all subcommands can
// use them in the precedence chains.
var (
	configDataDir  string
	configVideoDir string
)

var rootCmd = &cobra.Command{
	Use:     "jugglevault",
	Short:   "JuggleVault is a local-first juggling practice tracker",
	Version: jugglevault.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configVideoDir = cfg.GetString(cfgKeyVideoDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.jugglevault-db)")
	rootCmd.PersistentFlags().StringVar(&flagVideoDir, "video-dir", "", "video asset directory (default: <data-dir>/videos)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(patternCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(inspectCmd)
}

// resolveConfigDir returns the configuration directory following the
// precedence chain: --config-dir flag > JUGGLEVAULT_CONFIG_DIR env > default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveDataDir returns the data directory following the precedence chain:
// --data-dir flag > config.yaml data_dir > JUGGLEVAULT_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveVideoDir returns the video asset directory following the precedence
// chain: --video-dir flag > config.yaml video_dir > JUGGLEVAULT_VIDEO_DIR env
// > <data-dir>/videos.
func resolveVideoDir(dataDir string) (string, error) {
	return paths.ResolveVideoDir(flagVideoDir, configVideoDir, dataDir)
}

// newLogger builds a console logger. Warnings and errors only by default;
// --verbose lowers the threshold to debug.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
