package lib

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadScriptsFromDir(t *testing.T) {
	scripts, err := ReadScriptsFromDir("testdata/scripts")
	require.NoError(t, err)
	require.Len(t, scripts, 2)

	require.Equal(t, "01_answer", scripts[0].Name)
	require.Equal(t, "02_assoc", scripts[1].Name)
	require.Len(t, scripts[0].Program.Statements, 3)

	var out bytes.Buffer
	for _, s := range scripts {
		_, err := RunProgram(s.Program, &out)
		require.NoError(t, err)
	}
	require.Equal(t, "42\n5\n", out.String())
}

func TestReadScriptsFromDirBroken(t *testing.T) {
	_, err := ReadScriptsFromDir("testdata/broken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.sl")

	var lexErr *LexicalError
	require.ErrorAs(t, err, &lexErr)
}

func TestListScriptsInDir(t *testing.T) {
	paths, err := ListScriptsInDir("testdata/scripts")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join("testdata", "scripts", "01_answer.sl"),
		filepath.Join("testdata", "scripts", "02_assoc.sl"),
	}, paths)

	// Listing does not parse, so a broken script is still listed.
	paths, err = ListScriptsInDir("testdata/broken")
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestReadScriptsFromMissingDir(t *testing.T) {
	_, err := ReadScriptsFromDir("testdata/nope")
	require.Error(t, err)
}
