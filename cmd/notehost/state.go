package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/justyntemme/notelog/pkg/notelog"
	"github.com/justyntemme/notelog/pkg/notelogger"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Work with saved plugin state",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode a NoteLogger state blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectState(cmd, args[0])
		},
	})
	return cmd
}

func inspectState(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	proc, err := notelogger.NewProcessor(notelog.Discard)
	if err != nil {
		return err
	}
	if err := proc.State().Load(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:     %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
	if len(data) == 0 {
		fmt.Fprintln(out, "empty state")
		return nil
	}

	programs := proc.Programs()
	for i, name := range programs.Names() {
		marker := " "
		if i == programs.Current() {
			marker = "*"
		}
		fmt.Fprintf(out, "program:  %s %d %s\n", marker, i, name)
	}
	fmt.Fprintf(out, "history:  %d lines\n", proc.Notes().History().Cap())
	return nil
}
