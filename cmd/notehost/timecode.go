package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/justyntemme/notelog/pkg/timecode"
)

func newTimecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timecode <seconds>...",
		Short: "Format seconds as HH:MM:SS:mmm",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				s, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid seconds %q", arg)
				}
				fmt.Fprintln(cmd.OutOrStdout(), timecode.Format(s))
			}
			return nil
		},
	}
}
