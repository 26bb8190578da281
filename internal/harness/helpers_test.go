package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/glimpse/internal/manifest"
)

func mustDecls(t *testing.T, src string) []manifest.Decl {
	t.Helper()
	var decls []manifest.Decl
	require.NoError(t, yaml.Unmarshal([]byte(src), &decls))
	return decls
}
