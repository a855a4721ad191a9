package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptTrimmer/config"
)

const input = "@READ1\nACGTACGTAAGATCGGAAGAGC\n+\nIIIIIIIIIIIIIIIIIIIIII\n@READ2\nAGAGCACGTACGT\n+\nIIIIIIIIIIIII\n"

func setup(t *testing.T) (dir, in string) {
	t.Helper()
	dir = t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	in = filepath.Join(dir, "in.fastq")
	require.NoError(t, os.WriteFile(in, []byte(input), 0o644))
	return dir, in
}

func execute(args ...string) error {
	cmd := NewRootCommand(viper.New())
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRootCommand(t *testing.T) {
	dir, in := setup(t)
	out := filepath.Join(dir, "out.fastq")

	err := execute("-i", in, "-o", out, "-t", "2", "--log-level", "none")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "@READ1\nACGTACGTA\n+\nIIIIIIIII\n@READ2\nAGAGCACGTACGT\n+\nIIIIIIIIIIIII\n", string(got))
}

func TestRootCommandFivePrimeFromEnv(t *testing.T) {
	dir, in := setup(t)
	out := filepath.Join(dir, "out.fastq")
	t.Setenv("ADAPTTRIMMER_MODE", "five_prime")
	t.Setenv("ADAPTTRIMMER_LOG_LEVEL", "none")

	require.NoError(t, execute("-i", in, "-o", out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "@READ2\nACGTACGT\n+\nIIIIIIII\n")
}

func TestRootCommandConfigFile(t *testing.T) {
	dir, in := setup(t)
	out := filepath.Join(dir, "out.fastq")
	yaml := "adaptor:\n  - GAGC\nmin-overlap: 4\nlog-level: none\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "adaptTrimmer.yaml"), []byte(yaml), 0o644))

	require.NoError(t, execute("-i", in, "-o", out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "@READ1\nACGTACGTAAGATCGGAA\n")
}

func TestRootCommandRejectsConfiguration(t *testing.T) {
	dir, in := setup(t)
	out := filepath.Join(dir, "out.fastq")

	tests := [][]string{
		{"-i", in, "-o", out, "--min-overlap", "0"},
		{"-i", in, "-o", out, "--threads", "0"},
		{"-i", in, "-o", out, "--max-error-rate", "1.5"},
		{"-i", in, "-o", out, "--mode", "both"},
		{"-o", out},
		{"-i", in, "-o", out, "--in2", in},
		{"-i", in, "-o", out, "--out2", out + ".2"},
	}
	for _, args := range tests {
		err := execute(append(args, "--log-level", "none")...)
		assert.ErrorIs(t, err, config.ErrConfiguration, "args %v", args)
	}
	_, err := os.Stat(out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootCommandPairedEnd(t *testing.T) {
	dir, in := setup(t)
	in2 := filepath.Join(dir, "in2.fastq")
	mates := "@READ1\nTTTTAGATCGGAAGAGC\n+\nIIIIIIIIIIIIIIIII\n@READ2\nCCCCCCCC\n+\nIIIIIIII\n"
	require.NoError(t, os.WriteFile(in2, []byte(mates), 0o644))
	out := filepath.Join(dir, "out.fastq")
	out2 := filepath.Join(dir, "out2.fastq")

	require.NoError(t, execute("-i", in, "-o", out, "-I", in2, "-p", out2, "--log-level", "none"))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "@READ1\nACGTACGTA\n")
	got, err = os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, "@READ1\nTTTT\n+\nIIII\n@READ2\nCCCCCCCC\n+\nIIIIIIII\n", string(got))
}
