package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/elum-utils/chatfilter/adapters/file"
	"github.com/elum-utils/chatfilter/core"
	"github.com/elum-utils/chatfilter/interfaces"
	"github.com/elum-utils/chatfilter/models"
)

var streamTier string

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Filter stdin line by line with a live vocabulary",
	Long: "stream prints every stdin line redacted under --tier. A --vocab file is " +
		"watched and the whole document, tiers and options included, is reloaded on change. " +
		"A --url document is re-fetched every sync_interval; only its entries are refreshed, " +
		"tiers and options stay as first loaded.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, src, err := buildFilter(cmd)
		if err != nil {
			return err
		}
		live, err := newLiveFilter(c, streamTier)
		if err != nil {
			return err
		}
		log := newLogger(cmd)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		g, gctx := errgroup.WithContext(ctx)

		if fs, ok := src.(*file.YAMLSource); ok {
			g.Go(func() error {
				return ignoreCancel(fs.Watch(gctx, file.WatchOptions{Logger: log}, func() {
					if err := live.rebuild(gctx, fs, log); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					}
				}))
			})
		} else {
			g.Go(func() error {
				return ignoreCancel(c.Run(gctx))
			})
		}

		g.Go(func() error {
			defer cancel()
			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				fmt.Fprintln(out, live.filter(scanner.Text()))
			}
			return scanner.Err()
		})
		return g.Wait()
	},
}

type streamState struct {
	core *core.Core
	tier models.Tier
}

// liveFilter is the filter and tier stream reads with, swapped whole on
// reload.
type liveFilter struct {
	tierName string
	state    atomic.Pointer[streamState]
}

func newLiveFilter(c *core.Core, tierName string) (*liveFilter, error) {
	l := &liveFilter{tierName: tierName}
	if err := l.install(c); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *liveFilter) install(c *core.Core) error {
	tier, err := c.Tier(l.tierName)
	if err != nil {
		return err
	}
	l.state.Store(&streamState{core: c, tier: tier})
	return nil
}

// rebuild reloads the whole document from src. On error the running
// filter stays in place.
func (l *liveFilter) rebuild(ctx context.Context, src vocabSource, log interfaces.Logger) error {
	c, err := filterFrom(ctx, src, log)
	if err != nil {
		return err
	}
	return l.install(c)
}

func (l *liveFilter) filter(text string) string {
	st := l.state.Load()
	return st.core.FilterMessage(text, st.tier)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	streamCmd.Flags().StringVar(&streamTier, "tier", "strict", "tier to filter with")
	rootCmd.AddCommand(streamCmd)
}
