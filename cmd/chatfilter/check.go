package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elum-utils/chatfilter/core"
	"github.com/elum-utils/chatfilter/models"
)

var checkTier string

var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Show violations of a test string per tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := buildFilter(cmd)
		if err != nil {
			return err
		}
		text := args[0]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "always-blocked: %v\n", c.ContainsSlurs(text))
		if checkTier != "" {
			tier, err := c.Tier(checkTier)
			if err != nil {
				return err
			}
			res := c.AnalyzeMessage(text, tier)
			printReport(out, text, core.TierReport{Tier: tier, Result: res, Filtered: c.Redact(text, res)})
			return nil
		}
		for _, report := range c.Diagnose(text) {
			printReport(out, text, report)
		}
		return nil
	},
}

var filterTier string

var filterCmd = &cobra.Command{
	Use:   "filter [text]",
	Short: "Print the redacted form of a test string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := buildFilter(cmd)
		if err != nil {
			return err
		}
		tier, err := c.Tier(filterTier)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.FilterMessage(args[0], tier))
		return nil
	},
}

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List sensitivity tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := buildFilter(cmd)
		if err != nil {
			return err
		}
		for _, t := range c.Tiers() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", t.Name, blockedList(t))
		}
		return nil
	},
}

func blockedList(t models.Tier) string {
	names := []string{}
	for _, cat := range models.Categories {
		if t.Blocks(cat) {
			names = append(names, cat.String())
		}
	}
	return strings.Join(names, ", ")
}

func printReport(w io.Writer, text string, r core.TierReport) {
	status := "clean"
	if r.Result.IsBlocked() {
		status = "blocked"
	}
	fmt.Fprintf(w, "[%s] %s\n", r.Tier.Name, status)
	for _, v := range r.Result.Violations {
		kind := "literal"
		if v.Pattern {
			kind = "pattern"
		}
		fmt.Fprintf(w, "  %-8s %-7s %q at [%d,%d) entry=%q\n",
			v.Category, kind, v.Original(text), v.OriginalStart, v.OriginalEnd, v.Entry)
	}
	fmt.Fprintf(w, "  filtered: %s\n", r.Filtered)
}

func init() {
	checkCmd.Flags().StringVar(&checkTier, "tier", "", "only analyse under this tier")
	filterCmd.Flags().StringVar(&filterTier, "tier", "strict", "tier to filter with")
	rootCmd.AddCommand(checkCmd, filterCmd, tiersCmd)
}
