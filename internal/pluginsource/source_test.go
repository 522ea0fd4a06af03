package pluginsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architect-platform/architect-engine/internal/domain"
	"github.com/architect-platform/architect-engine/internal/errs"
)

func TestLocalSourceResolvesExistingPath(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "plugin-bin")
	require.NoError(t, writeFile(artifact, "#!/bin/sh\n"))

	src := LocalSource{}
	path, err := src.Resolve(domain.PluginDescriptor{
		PluginID:         "sample",
		SourceParameters: map[string]string{"path": artifact},
	})
	require.NoError(t, err)
	require.Equal(t, artifact, path)
}

func TestLocalSourceMissingPathParameter(t *testing.T) {
	src := LocalSource{}
	_, err := src.Resolve(domain.PluginDescriptor{PluginID: "sample"})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.PluginLoad, kind)
}

func TestLocalSourceMissingArtifact(t *testing.T) {
	src := LocalSource{}
	_, err := src.Resolve(domain.PluginDescriptor{
		PluginID:         "sample",
		SourceParameters: map[string]string{"path": filepath.Join(t.TempDir(), "missing")},
	})
	require.Error(t, err)
}

func TestLocalSourceCanHandleOnlyLocalType(t *testing.T) {
	src := LocalSource{}
	require.True(t, src.CanHandle(domain.SourceTypeLocal))
	require.False(t, src.CanHandle(domain.SourceTypeRemoteRelease))
}

func TestRegistryResolvesFirstMatchingSource(t *testing.T) {
	reg := NewRegistry(LocalSource{})

	dir := t.TempDir()
	artifact := filepath.Join(dir, "plugin-bin")
	require.NoError(t, writeFile(artifact, "x"))

	path, err := reg.Resolve(domain.PluginDescriptor{
		SourceType:       domain.SourceTypeLocal,
		PluginID:         "sample",
		SourceParameters: map[string]string{"path": artifact},
	})
	require.NoError(t, err)
	require.Equal(t, artifact, path)
}

func TestRegistryUnknownSourceType(t *testing.T) {
	reg := NewRegistry(LocalSource{})
	_, err := reg.Resolve(domain.PluginDescriptor{SourceType: "ftp", PluginID: "sample"})
	require.Error(t, err)
	kind, ok := errs.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errs.PluginLoad, kind)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
