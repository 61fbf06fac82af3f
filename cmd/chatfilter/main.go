package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/elum-utils/chatfilter/adapters/file"
	"github.com/elum-utils/chatfilter/adapters/logger"
	"github.com/elum-utils/chatfilter/adapters/remote"
	"github.com/elum-utils/chatfilter/config"
	"github.com/elum-utils/chatfilter/core"
	"github.com/elum-utils/chatfilter/interfaces"
)

var (
	vocabPath string
	vocabURL  string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "chatfilter",
	Short: "Inspect how chat messages are classified and redacted",
	Long: "chatfilter loads a vocabulary document and runs the chat filter against test strings, " +
		"showing matches per sensitivity tier and the redacted output.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		if vocabPath == "" {
			vocabPath = os.Getenv("CHATFILTER_VOCAB")
		}
		if vocabURL == "" {
			vocabURL = os.Getenv("CHATFILTER_VOCAB_URL")
		}
		if logLevel == "" {
			logLevel = os.Getenv("CHATFILTER_LOG_LEVEL")
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "chatfilter v0.1.0")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vocabPath, "vocab", "", "vocabulary YAML/JSON file (env CHATFILTER_VOCAB)")
	rootCmd.PersistentFlags().StringVar(&vocabURL, "url", "", "vocabulary document URL (env CHATFILTER_VOCAB_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env CHATFILTER_LOG_LEVEL)")
	rootCmd.AddCommand(versionCmd)
}

// vocabSource is a source that can also hand out the whole document, so
// options and tiers come from the same place as the entries.
type vocabSource interface {
	interfaces.Source
	Document(ctx context.Context) (*config.Document, error)
}

// openSource picks the vocabulary source from --vocab or --url.
func openSource() (vocabSource, error) {
	switch {
	case strings.TrimSpace(vocabPath) != "":
		return file.NewYAMLSource(vocabPath)
	case strings.TrimSpace(vocabURL) != "":
		return remote.NewHTTPSource(remote.HTTPOptions{
			URL:       vocabURL,
			AuthToken: os.Getenv("CHATFILTER_VOCAB_TOKEN"),
		})
	default:
		return nil, errors.New("no vocabulary: pass --vocab or --url")
	}
}

// buildFilter creates a filter bound to the configured source with the
// first vocabulary already published.
func buildFilter(cmd *cobra.Command) (*core.Core, vocabSource, error) {
	src, err := openSource()
	if err != nil {
		return nil, nil, err
	}
	c, err := filterFrom(cmd.Context(), src, newLogger(cmd))
	if err != nil {
		return nil, nil, err
	}
	return c, src, nil
}

// filterFrom reads the whole document from src, so tiers and options are
// rebuilt together with the entries.
func filterFrom(ctx context.Context, src vocabSource, log interfaces.Logger) (*core.Core, error) {
	doc, err := src.Document(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := doc.CoreOptions()
	if err != nil {
		return nil, err
	}
	opts.Source = src
	opts.Logger = log
	c := core.New(opts)
	c.Reload(doc.Entries())
	return c, nil
}

func newLogger(cmd *cobra.Command) *logger.CharmLogger {
	return logger.New(logger.Options{Level: logLevel, Output: cmd.ErrOrStderr(), Prefix: "chatfilter"})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
