package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParserRegistersAllCommands(t *testing.T) {
	parser, globals, cmds := buildParser("test")
	require.NotNil(t, globals)
	require.NotNil(t, cmds)

	want := []string{"run", "backfill", "makemovie", "cleanup", "compress", "decompress", "status"}
	var got []string
	for _, cmd := range parser.Commands() {
		got = append(got, cmd.Name)
	}
	assert.ElementsMatch(t, want, got)
}

func TestVersionFlagShortCircuits(t *testing.T) {
	out := captureOutput(t, func() {
		require.NoError(t, RunWithArgs("1.2.3", []string{"--version"}))
	})
	assert.Equal(t, "ompd 1.2.3\n", out)
}

func TestUnknownCommandFails(t *testing.T) {
	err := RunWithArgs("test", []string{"no-such-command"})
	assert.Error(t, err)
}

func TestCommandsShareGlobals(t *testing.T) {
	_, globals, cmds := buildParser("test")
	assert.Same(t, globals, cmds.Run.globals)
	assert.Same(t, globals, cmds.Status.globals)
	assert.Same(t, globals, cmds.MakeMovie.globals)
}
