package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elum-utils/chatfilter/normalize"
)

var showOrigins bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text]",
	Short: "Show the matching and display forms of a string",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		text := args[0]
		nt := normalize.Normalize(text)
		fmt.Fprintf(out, "normalized: %s\n", nt.String())
		fmt.Fprintf(out, "display:    %s\n", normalize.ForDisplay(text))
		if !showOrigins {
			return
		}
		for i, r := range nt.Runes {
			o := nt.Origin[i]
			fmt.Fprintf(out, "  %3d %q <- [%d,%d) %q\n", i, r, o.Start, o.End, text[o.Start:o.End])
		}
	},
}

func init() {
	normalizeCmd.Flags().BoolVar(&showOrigins, "origins", false, "print the original span of every rune")
	rootCmd.AddCommand(normalizeCmd)
}
