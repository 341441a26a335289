package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	walk "github.com/TFMV/levelwalk/internal/walk"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "0.1.0"

// Execute builds the command tree and runs it.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext builds the command tree and runs it with ctx, which
// cancels in-progress walks and watches.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd returns the levelwalk command with its own configuration
// registry, so every invocation starts from clean flag and config state.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "levelwalk [options] <path>",
		Short: "List a directory tree down to a fixed depth",
		Long: `levelwalk lists a directory and its subdirectories in pre-order, stopping
at a maximum depth. Each visited directory is printed with its subdirectory
names and its other entries, in the order the file system reports them.

A depth of 1 lists only the given directory; each additional level descends
one directory further.

Examples:
  levelwalk /var/log
  levelwalk -d 3 --format=json /srv/data
  levelwalk -d 2 --format=template --template="{path}: {ndirs} dirs, {nnondirs} files" .
  levelwalk --root-fs=/srv/jail -d 2 /`,
		Version:      version,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd, v, args[0])
		},
	}

	// Flags shared with subcommands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.levelwalk.yaml)")
	pf.IntP("max-depth", "d", 1, "Depth budget; 1 lists only the root")
	pf.String("format", "text", "Output format (text|json|template)")
	pf.String("template", "", "Template for --format=template ({path}, {base}, {depth}, {dirs}, {nondirs}, {ndirs}, {nnondirs})")
	pf.Bool("nfc", false, "Normalize printed names to Unicode NFC")
	pf.String("root-fs", "", "Resolve paths inside this directory, read-only")
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("silent", false, "Disable all logging except errors")

	rootCmd.Flags().Bool("summary", false, "Print a summary line to stderr when the walk ends")

	// Bind flags to viper
	v.BindPFlag("max-depth", pf.Lookup("max-depth"))
	v.BindPFlag("format", pf.Lookup("format"))
	v.BindPFlag("template", pf.Lookup("template"))
	v.BindPFlag("nfc", pf.Lookup("nfc"))
	v.BindPFlag("root-fs", pf.Lookup("root-fs"))
	v.BindPFlag("verbose", pf.Lookup("verbose"))
	v.BindPFlag("silent", pf.Lookup("silent"))
	v.BindPFlag("summary", rootCmd.Flags().Lookup("summary"))

	rootCmd.AddCommand(newWatchCmd(v))
	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string, stderr io.Writer) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".levelwalk")
	}

	v.SetEnvPrefix("levelwalk")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if v.GetBool("verbose") {
		fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	}
	return nil
}

func runWalk(cmd *cobra.Command, v *viper.Viper, root string) error {
	logger := newLogger(v)
	defer logger.Sync()

	renderer, err := newRenderer(cmd.OutOrStdout(), v)
	if err != nil {
		return err
	}

	opts := walk.Options{
		FS:      walkFS(v),
		Context: cmd.Context(),
		Logger:  logger,
	}
	if v.GetBool("verbose") {
		opts.Progress = walk.LoggingProgress(logger)
	}

	w := walk.NewWithOptions(root, v.GetInt("max-depth"), opts)
	defer w.Close()

	for w.Next() {
		if err := renderer.Render(w.Record()); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if v.GetBool("summary") {
		printSummary(cmd.ErrOrStderr(), w.Stats())
	}
	return w.Err()
}

func newLogger(v *viper.Viper) *zap.Logger {
	switch {
	case v.GetBool("verbose"):
		return walk.NewLogger(walk.LogLevelDebug)
	case v.GetBool("silent"):
		return walk.NewLogger(walk.LogLevelError)
	default:
		return walk.NewLogger(walk.LogLevelWarn)
	}
}

func newRenderer(out io.Writer, v *viper.Viper) (*walk.Renderer, error) {
	format, err := walk.ParseFormat(v.GetString("format"))
	if err != nil {
		return nil, err
	}
	return walk.NewRenderer(out, walk.RenderOptions{
		Format:   format,
		Template: v.GetString("template"),
		NFC:      v.GetBool("nfc"),
	})
}

// walkFS returns the sandboxed file system selected by --root-fs, or nil for
// the host file system.
func walkFS(v *viper.Viper) walk.FS {
	base := v.GetString("root-fs")
	if base == "" {
		return nil
	}
	return walk.AferoFS{Fs: afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), base))}
}

func printSummary(w io.Writer, stats walk.Stats) {
	fmt.Fprintf(w, "%s directories, %s subdirectory names, %s other entries, max depth %d, %s\n",
		humanize.Comma(stats.DirsVisited),
		humanize.Comma(stats.SubdirsSeen),
		humanize.Comma(stats.NondirsSeen),
		stats.MaxDepthReached,
		stats.ElapsedTime.Round(time.Microsecond),
	)
}
