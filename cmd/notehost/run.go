package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justyntemme/notelog/pkg/framework/bus"
	"github.com/justyntemme/notelog/pkg/host"
	"github.com/justyntemme/notelog/pkg/midi"
	"github.com/justyntemme/notelog/pkg/notelog"
	"github.com/justyntemme/notelog/pkg/notelogger"
	"github.com/justyntemme/notelog/pkg/plugin"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process blocks of silence and log the injected notes",
		Long: `Instantiates NoteLogger, negotiates a layout, and processes blocks of
silence. One note from --notes is delivered at the start of each block and
the plugin writes a timecoded line for it to stdout.

With --trigger the plugin builds each note itself on its fixed channel and
velocity instead of receiving it from the host.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice(keyNotes, []string{"60"}, "note numbers to send, one per block")
	flags.Int(keyVelocity, int(notelog.DefaultVelocity), "velocity of sent notes")
	flags.Float64(keySampleRate, host.DefaultSampleRate, "sample rate in Hz")
	flags.Int32(keyBlockSize, host.DefaultBlockSize, "samples per block")
	flags.Int(keyBlocks, 16, "number of blocks to process")
	flags.String(keyLayout, "stereo", "main bus layout: mono or stereo")
	flags.String(keyStateIn, "", "restore plugin state from this file before processing")
	flags.String(keyStateOut, "", "save plugin state to this file after processing")
	flags.Bool(keyTrigger, false, "have the plugin generate the notes instead of sending them")
	flags.Bool("realtime", false, "pace blocks at the audio rate")
	_ = v.BindPFlags(flags)

	return cmd
}

func runSession(cmd *cobra.Command, v *viper.Viper) error {
	logger, level, err := newLogger(v, cmd)
	if err != nil {
		return err
	}

	notes, err := parseNotes(v.GetStringSlice(keyNotes))
	if err != nil {
		return err
	}
	velocity := v.GetInt(keyVelocity)
	if velocity < 0 || velocity > int(midi.MaxVelocity) {
		return fmt.Errorf("velocity %d: %w", velocity, midi.ErrVelocityRange)
	}
	layout, err := parseLayout(v.GetString(keyLayout))
	if err != nil {
		return err
	}
	blocks := max(v.GetInt(keyBlocks), len(notes))

	plugin.Register(&notelogger.Plugin{Sink: notelog.NewWriterSink(cmd.OutOrStdout())})
	plugin.SetConfig(plugin.Config{
		LogLevel:    level,
		LogFile:     v.GetString(keyLogFile),
		Output:      cmd.ErrOrStderr(),
		LogIncoming: true,
	})

	s, err := host.Open(notelogger.Info.UID(), host.Options{
		SampleRate: v.GetFloat64(keySampleRate),
		BlockSize:  v.GetInt32(keyBlockSize),
		Layout:     layout,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if path := v.GetString(keyStateIn); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := s.LoadState(data); err != nil {
			return fmt.Errorf("restore %s: %w", path, err)
		}
		logger.Info("restored %s of state from %s", humanize.Bytes(uint64(len(data))), path)
	}

	realtime := v.GetBool("realtime")
	trigger := v.GetBool(keyTrigger)
	for i := 0; i < blocks; i++ {
		if i < len(notes) {
			if trigger {
				if _, err := s.TriggerNote(notes[i]); err != nil {
					return err
				}
			} else if err := s.QueueNote(notes[i], uint8(velocity), 0); err != nil {
				return err
			}
		}
		if err := s.ProcessBlock(); err != nil {
			return err
		}
		if realtime {
			time.Sleep(s.BlockDuration())
		}
	}

	if path := v.GetString(keyStateOut); path != "" {
		blob, err := s.SaveState()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return err
		}
		logger.Info("wrote %s of state to %s", humanize.Bytes(uint64(len(blob))), path)
	}

	logger.Info("processed %d blocks, %s of audio",
		s.Blocks(), durafmt.Parse(s.Elapsed()).LimitFirstN(2).Format(shortUnits))
	return s.Close()
}

// parseNotes accepts repeated flags and comma separated lists.
func parseNotes(raw []string) ([]uint8, error) {
	var notes []uint8
	for _, item := range raw {
		for _, field := range strings.Split(item, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			n, err := strconv.ParseUint(field, 10, 8)
			if err != nil || n > uint64(midi.MaxNote) {
				return nil, fmt.Errorf("note %q: %w", field, midi.ErrNoteRange)
			}
			notes = append(notes, uint8(n))
		}
	}
	return notes, nil
}

func parseLayout(name string) (bus.SpeakerArrangement, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mono":
		return bus.ArrangementMono, nil
	case "stereo", "":
		return bus.ArrangementStereo, nil
	}
	return bus.ArrangementEmpty, fmt.Errorf("unknown layout %q", name)
}
