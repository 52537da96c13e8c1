package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, size int) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 7)
	}
	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func TestRoot_WritesSignature(t *testing.T) {
	input, data := writeInput(t, 3*4096+10)
	output := filepath.Join(t.TempDir(), "out.sig")

	_, err := execute(t, "-i", input, "-o", output, "-b", "4", "-n", "2", "-q")
	require.NoError(t, err)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Len(t, got, 4*32)
	first := blake3.Sum256(data[:4096])
	assert.Equal(t, first[:], got[:32])
	last := blake3.Sum256(data[3*4096:])
	assert.Equal(t, last[:], got[3*32:])
}

func TestRoot_BenchmarkPicksWorkers(t *testing.T) {
	input, data := writeInput(t, 16*4096)
	output := filepath.Join(t.TempDir(), "out.sig")

	_, err := execute(t, "-i", input, "-o", output, "-b", "4", "--benchmark", "-q")
	require.NoError(t, err)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Len(t, got, 16*32)
	want := blake3.Sum256(data[15*4096:])
	assert.Equal(t, want[:], got[15*32:])
}

func TestRoot_ConfigErrorExitsTwo(t *testing.T) {
	_, err := execute(t, "-i", filepath.Join(t.TempDir(), "missing"), "-o", "out.sig", "-q")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, "-q")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestVerify_ExitCodes(t *testing.T) {
	input, data := writeInput(t, 8*4096)
	sig := filepath.Join(t.TempDir(), "out.sig")

	_, err := execute(t, "-i", input, "-o", sig, "-b", "4", "--hash", "xxh3", "-q")
	require.NoError(t, err)

	_, err = execute(t, "verify", "-i", input, "-o", sig, "-b", "4", "--hash", "xxh3", "-q")
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode(err))

	data[5*4096] ^= 0xFF
	require.NoError(t, os.WriteFile(input, data, 0o644))
	_, err = execute(t, "verify", "-i", input, "-o", sig, "-b", "4", "--hash", "xxh3", "-q",
		"--prefetch", "--buffer", "16K")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	// Wrong hash: signature length no longer matches.
	_, err = execute(t, "verify", "-i", input, "-o", sig, "-b", "4", "-q")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestHashesCommand(t *testing.T) {
	out, err := execute(t, "hashes")
	require.NoError(t, err)
	assert.Contains(t, out, "blake3 (default)")
	assert.Contains(t, out, "sha256")
	assert.Contains(t, out, "crc32")
	assert.Contains(t, out, "4 bytes")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(&exitError{code: 1}))
	assert.Equal(t, 2, exitCode(errors.New("boom")))
}
