// Package cli wires the ompd command line: flag parsing, subcommand
// dispatch, and the glue between config and the capture/encode machinery.
package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Run        *RunCommand
	Backfill   *BackfillCommand
	MakeMovie  *MakeMovieCommand
	Cleanup    *CleanupCommand
	Compress   *CompressCommand
	Decompress *DecompressCommand
	Status     *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "ompd"
	parser.LongDescription = "One movie per day: capture the screen continuously and assemble each day's frames into a timelapse video."

	cmds := &commands{
		Run:        &RunCommand{globals: &globals, version: version},
		Backfill:   &BackfillCommand{globals: &globals, version: version},
		MakeMovie:  &MakeMovieCommand{globals: &globals, version: version},
		Cleanup:    &CleanupCommand{globals: &globals, version: version},
		Compress:   &CompressCommand{globals: &globals, version: version},
		Decompress: &DecompressCommand{globals: &globals, version: version},
		Status:     &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("run", "Start the capture daemon", "Capture the screen every interval and assemble a video at each day rollover.", cmds.Run)
	parser.AddCommand("backfill", "Encode days that have frames but no video", "Scan the shot directory for past days without a video and encode them.", cmds.Backfill)
	parser.AddCommand("makemovie", "Encode one day's frames into a video", "Assemble the video for a single date from its captured frames.", cmds.MakeMovie)
	parser.AddCommand("cleanup", "Apply shot directory retention", "Delete old shot directories whose videos already exist, keeping the most recent days.", cmds.Cleanup)
	parser.AddCommand("compress", "Archive one day's frames", "Gzip the frames of a past day in place to reclaim disk space.", cmds.Compress)
	parser.AddCommand("decompress", "Restore one day's archived frames", "Undo compress for a given date.", cmds.Decompress)
	parser.AddCommand("status", "Show catalog statistics and configuration", "Show encoded movie statistics and the effective configuration.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the ompd CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("ompd %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
