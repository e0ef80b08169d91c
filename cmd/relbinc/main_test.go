package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileCommandEndToEnd(t *testing.T) {
	path := writeFixtureFile(t, sampleFixtureYAML)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"compile", "--fixture", path})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "basetable")
}

func TestCompileCommandMissingFixtureFlagFails(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"compile"})
	require.Error(t, root.Execute())
}

func TestCompileCommandUnreadableFixturePathFails(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"compile", "--fixture", "/nonexistent/path.yaml"})
	require.Error(t, root.Execute())
}
