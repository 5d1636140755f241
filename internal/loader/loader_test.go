package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"glass/internal/diag"
)

func TestLoadProgramParsesAndFollowsIncludes(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.glass")
	libPath := filepath.Join(dir, "lib.glass")

	require.NoError(t, os.WriteFile(libPath, []byte(`{(Helper)[(c__)]}`), 0o644))
	require.NoError(t, os.WriteFile(mainPath, []byte(`"lib.glass"{M[m]}`), 0o644))

	classes, err := LoadProgram(mainPath, false)
	require.NoError(t, err)
	require.Contains(t, classes, "M")
	require.Contains(t, classes, "Helper")
}

func TestLoadProgramReturnsGlassErrorUnwrapped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.glass")
	require.NoError(t, os.WriteFile(path, []byte(`{m[m]}`), 0o644))

	_, err := LoadProgram(path, false)
	require.Error(t, err)
	var glassErr *diag.GlassError
	require.ErrorAs(t, err, &glassErr)
}

func TestLoadProgramWrapsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.glass")
	_, err := LoadProgram(path, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), path)
	var glassErr *diag.GlassError
	require.False(t, errors.As(err, &glassErr), "a missing-file error isn't a structured parse diagnostic")
}

func TestLoadProgramRejectsPedanticInclude(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.glass")
	require.NoError(t, os.WriteFile(path, []byte(`"x.glass"{M[m]}`), 0o644))

	_, err := LoadProgram(path, true)
	require.Error(t, err)
}
