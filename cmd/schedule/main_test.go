package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"CATALOG_SOURCE", "CATALOG_PATH", "OVERRIDES_PATH", "TZ", "TICK_INTERVAL_SEC"} {
		t.Setenv(k, "")
	}

	var out bytes.Buffer
	app := &cli.App{
		Name:     "bus-schedule",
		Writer:   &out,
		Commands: []*cli.Command{routesCommand(), boardCommand(), inspectCommand()},
	}
	err := app.Run(append([]string{"bus-schedule"}, args...))
	return out.String(), err
}

func TestRoutesCommand(t *testing.T) {
	out, err := runCLI(t, "routes")
	require.NoError(t, err)
	assert.Equal(t, "Modern More - Campus\nMedical More - Campus\nCampus - Town Hall\nLibrary Trip\n", out)
}

func TestBoardCommand(t *testing.T) {
	out, err := runCLI(t, "board", "--route", "Modern More - Campus", "--at", "08:40")
	require.NoError(t, err)
	assert.Contains(t, out, "8:40 am")
	assert.Contains(t, out, "bus-01")
	assert.Contains(t, out, "no more service today")
	assert.Contains(t, out, "next Jahaj Company More at 8:43 am (3 min left)")
	assert.Contains(t, out, "next Modern More at 12:30 pm")
}

func TestBoardCommandErrors(t *testing.T) {
	_, err := runCLI(t, "board", "--route", "Nowhere")
	assert.Error(t, err)

	_, err = runCLI(t, "board", "--route", "Library Trip", "--at", "quarter past")
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	out, err := runCLI(t, "inspect", "--id", "bus-09")
	require.NoError(t, err)
	assert.Contains(t, out, "Central Library")

	_, err = runCLI(t, "inspect", "--id", "bus-99")
	assert.Error(t, err)
}
