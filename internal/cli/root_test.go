package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfo() BuildInfo {
	return BuildInfo{Version: "test", Commit: "none", Date: "unknown"}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseDefineValue(t *testing.T) {
	v, err := parseDefineValue("")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = parseDefineValue("49152")
	require.NoError(t, err)
	assert.Equal(t, 49152, v)

	v, err = parseDefineValue("0xc000")
	require.NoError(t, err)
	assert.Equal(t, 0xc000, v)

	_, err = parseDefineValue("bogus")
	require.Error(t, err)
}

func TestAssembleToObjectFile(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "main.asm", "*=$c000\nlda #$01\nrts\n")

	cmd := NewRootCommand(testInfo())
	cmd.SetArgs([]string{"-o", "main.prg", "-O", dir, source})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "main.prg"))
	require.NoError(t, err)
	// Two-byte little-endian load address, then the payload.
	assert.Equal(t, []byte{0x00, 0xc0, 0xa9, 0x01, 0x60}, data)
}

func TestAssembleRawOutput(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "main.asm", "*=$c000\nlda #$01\nrts\n")

	cmd := NewRootCommand(testInfo())
	cmd.SetArgs([]string{"-r", "-o", "raw.prg", "-O", dir, source})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "raw.prg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa9, 0x01, 0x60}, data)
}

func TestObjectDirectiveNamesFile(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "main.asm", ".obj \"named.prg\"\n*=$1000\nrts\n")

	cmd := NewRootCommand(testInfo())
	cmd.SetArgs([]string{"-O", dir, source})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "named.prg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x10, 0x60}, data)
}

func TestErrorsFailTheCommand(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "bad.asm", "*=$1000\nlda #undefined\n")

	cmd := NewRootCommand(testInfo())
	cmd.SetArgs([]string{"-o", "bad.prg", "-O", dir, source})
	err := cmd.Execute()
	require.ErrorIs(t, err, ErrAssemblyFailed)

	// No output file is written when errors were reported.
	_, statErr := os.Stat(filepath.Join(dir, "bad.prg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefinesReachTheAssembly(t *testing.T) {
	dir := t.TempDir()
	source := writeSource(t, dir, "main.asm", "*=$1000\njmp base\n")

	cmd := NewRootCommand(testInfo())
	cmd.SetArgs([]string{"-D", "base=0x2000", "-o", "out.prg", "-O", dir, source})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "out.prg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x10, 0x4c, 0x00, 0x20}, data)
}

func TestMissingInputFile(t *testing.T) {
	cmd := NewRootCommand(testInfo())
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.asm")})
	err := cmd.Execute()
	require.ErrorIs(t, err, ErrIOFailed)
}

func TestNoSourceFiles(t *testing.T) {
	cmd := NewRootCommand(testInfo())
	cmd.SetArgs([]string{})
	require.Error(t, cmd.Execute())
}
