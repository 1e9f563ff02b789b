//go:build !windows

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/netsampler/internal/failure"
	"github.com/HerbHall/netsampler/internal/testutil"
)

// writeConfig points the collector at a canned dump and the store at a
// temporary directory.
func writeConfig(t *testing.T, command string, extra string) (cfgPath, storeDir string) {
	t.Helper()
	dir := t.TempDir()
	dump := filepath.Join(dir, "netstat.txt")
	require.NoError(t, os.WriteFile(dump, []byte(testutil.NetstatFirst), 0o644))

	if command == "" {
		command = "cat"
	}
	storeDir = filepath.Join(dir, "state")
	cfg := "collector:\n" +
		"  command: " + command + "\n" +
		"  args: [\"" + dump + "\"]\n" +
		"store:\n" +
		"  dir: " + storeDir + "\n" +
		"sampler:\n" +
		"  sleep_interval: 10ms\n" +
		"log:\n" +
		"  level: error\n" +
		extra
	cfgPath = filepath.Join(dir, "netsampler.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, storeDir
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRunSample_FirstInvocationReRuns(t *testing.T) {
	cfg, storeDir := writeConfig(t, "", "")

	var out bytes.Buffer
	code := runSample([]string{"-config", cfg}, &out)
	require.Equal(t, failure.ExitOK, code, out.String())

	lines := splitLines(out.String())
	require.Len(t, lines, 16)
	assert.Equal(t, "2128:Packets In:4|0.00|lo0", lines[0])
	for _, l := range lines {
		assert.Len(t, strings.Split(l, "|"), 3, l)
	}

	_, err := os.Stat(filepath.Join(storeDir, ".osx_network.dat"))
	assert.NoError(t, err)
}

func TestRunSample_Selection(t *testing.T) {
	cfg, _ := writeConfig(t, "", "")

	var out bytes.Buffer
	code := runSample([]string{"-config", cfg, `"0,0,1,0,0,1,0,0"`}, &out)
	require.Equal(t, failure.ExitOK, code, out.String())

	lines := splitLines(out.String())
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "2126:MB In/s:4|"))
	assert.True(t, strings.HasPrefix(lines[1], "2127:MB Out/s:4|"))
}

func TestRunSample_BadSelection(t *testing.T) {
	cfg, _ := writeConfig(t, "", "")

	var out bytes.Buffer
	code := runSample([]string{"-config", cfg, "1,0"}, &out)
	assert.Equal(t, failure.ExitGeneric, code)
	assert.Contains(t, out.String(), "invalid number of metric state")
}

func TestRunSample_CommandNotFound(t *testing.T) {
	cfg, _ := writeConfig(t, "netsampler-no-such-command", "")

	var out bytes.Buffer
	code := runSample([]string{"-config", cfg}, &out)
	assert.Equal(t, failure.ExitCollection, code)
	assert.Equal(t, "Command 'netsampler-no-such-command' not found.\n", out.String())
}

func TestRunSample_ConfigError(t *testing.T) {
	var out bytes.Buffer
	code := runSample([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &out)
	assert.Equal(t, failure.ExitGeneric, code)
	assert.NotEmpty(t, out.String())
}

func TestRunSample_SQLiteAndTelemetry(t *testing.T) {
	prom := filepath.Join(t.TempDir(), "netsampler.prom")
	cfg, storeDir := writeConfig(t, "", "  format: json\n"+
		"telemetry:\n  textfile: "+prom+"\n")
	// Switch the backend without rewriting the helper.
	t.Setenv("NETSAMPLER_STORE_BACKEND", "sqlite")

	var out bytes.Buffer
	code := runSample([]string{"-config", cfg}, &out)
	require.Equal(t, failure.ExitOK, code, out.String())
	assert.Len(t, splitLines(out.String()), 16)

	_, err := os.Stat(filepath.Join(storeDir, "netsampler.db"))
	assert.NoError(t, err)

	body, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(body), `netsampler_runs_total{state="steady"} 1`)
	assert.Contains(t, string(body), `netsampler_lines_emitted 16`)
	assert.Contains(t, string(body), `netsampler_build_info{`)
}

func TestRunSnapshot_ShowAndClear(t *testing.T) {
	cfg, _ := writeConfig(t, "", "")
	var out bytes.Buffer
	require.Equal(t, failure.ExitOK, runSample([]string{"-config", cfg}, &out))

	out.Reset()
	require.Equal(t, 0, runSnapshot([]string{"show", "-config", cfg}, &out))
	assert.Contains(t, out.String(), `"variableName": "Ipkts"`)
	assert.Contains(t, out.String(), `"metricUUID": "2128:Packets In:4"`)

	out.Reset()
	require.Equal(t, 0, runSnapshot([]string{"show", "-config", cfg, "-format", "yaml"}, &out))
	assert.Contains(t, out.String(), "variableName: Ipkts")

	out.Reset()
	require.Equal(t, 0, runSnapshot([]string{"clear", "-config", cfg}, &out))
	assert.Equal(t, 1, runSnapshot([]string{"show", "-config", cfg}, &out))
}

func TestRunSnapshot_UnknownAction(t *testing.T) {
	cfg, _ := writeConfig(t, "", "")
	var out bytes.Buffer
	assert.Equal(t, 1, runSnapshot([]string{"rotate", "-config", cfg}, &out))
	assert.Equal(t, 1, runSnapshot(nil, &out))
}
