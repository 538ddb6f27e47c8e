package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationFlag(t *testing.T) {
	var d durationFlag

	require.NoError(t, d.Set("1500ms"))
	assert.Equal(t, 1500*time.Millisecond, d.Duration)
	assert.Equal(t, "1.5s", d.String())

	require.NoError(t, d.Set("0s"))
	assert.Zero(t, d.Duration)

	assert.Error(t, d.Set("-1s"))
	assert.Error(t, d.Set("soon"))
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"kafka:9092", "kafka2:9092"}, splitCSV(" kafka:9092, ,kafka2:9092 "))
}

// simCommand runs main in a child copy of the test binary with args.
func simCommand(t *testing.T, args ...string) *exec.Cmd {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	cs := append([]string{"-test.run=^TestHelperProcess$", "--"}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")

	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	os.Args = append([]string{"sim"}, args...)

	main()
	os.Exit(0)
}

func TestBoundedRunExitsZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := simCommand(t, "-count", "3", "-interval", "0s")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	require.NoError(t, cmd.Run(), stderr.String())

	want := "RISC-V IoT Data Simulator Starting...\n\n" +
		"T:26.9,H:60.1\n" +
		"T:25.9,H:61.1\n" +
		"T:23.8,H:55.2\n"
	assert.Equal(t, want, stdout.String())
	assert.Contains(t, stderr.String(), "bye")
}

func TestClosedStdoutExitsOne(t *testing.T) {
	var stderr bytes.Buffer
	cmd := simCommand(t, "-interval", "10ms")
	cmd.Stderr = &stderr

	out, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	// banner, blank line, first sample
	sc := bufio.NewScanner(out)
	for i := 0; i < 3; i++ {
		require.True(t, sc.Scan())
	}
	require.NoError(t, out.Close())

	err = cmd.Wait()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode(), stderr.String())
	assert.Contains(t, stderr.String(), "output is gone")
	assert.NotContains(t, stderr.String(), "bye")
}
