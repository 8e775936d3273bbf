package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/darling/internal/adapters/config"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// setupBase points DARLING_HOME at a temp dir and optionally writes config.toml into it.
func setupBase(t *testing.T, configContent string) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv(domain.HomeEnvVar, base)
	t.Setenv(domain.ManifestEnvVar, "")
	if configContent != "" {
		require.NoError(t, os.WriteFile(filepath.Join(base, domain.ConfigFileName), []byte(configContent), domain.FilePerm))
	}
	return base
}

func TestLoader_Defaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := setupBase(t, "")

	settings, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load()
	require.NoError(t, err)

	assert.Equal(t, base, settings.BaseDir)
	assert.Equal(t, filepath.Join(base, domain.ManifestFileName), settings.ManifestPath)
	assert.Equal(t, filepath.Join(base, domain.ConfigFileName), settings.ConfigPath)
	assert.Empty(t, settings.Backends)
	assert.Zero(t, settings.Retries)
}

func TestLoader_DefaultBaseDirFromHome(t *testing.T) {
	ctrl := gomock.NewController(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(domain.HomeEnvVar, "")
	t.Setenv(domain.ManifestEnvVar, "")

	settings, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "darling"), settings.BaseDir)
}

func TestLoader_ManifestOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := setupBase(t, `manifest = "packages/desired.yaml"`)

	settings, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "packages", "desired.yaml"), settings.ManifestPath)

	override := filepath.Join(t.TempDir(), "env.yaml")
	t.Setenv(domain.ManifestEnvVar, override)

	settings, err = config.NewLoader(mocks.NewMockLogger(ctrl)).Load()
	require.NoError(t, err)
	assert.Equal(t, override, settings.ManifestPath, "environment wins over config file")
}

func TestLoader_CustomBackends(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := setupBase(t, `
disable = ["vscode"]
retries = 2

[[backend]]
name = "brew"
install = ["brew", "install", "{{.Name}}"]
uninstall = ["brew", "uninstall", "{{.Name}}"]
list = ["brew", "leaves", "--installed-on-request"]
list_pattern = '^(?P<name>\S+)$'
retries = 1
`)

	settings, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load()
	require.NoError(t, err)

	want := []domain.CommandSpec{{
		Name:        "brew",
		Description: "custom command backend",
		Source:      filepath.Join(base, domain.ConfigFileName),
		Install:     []string{"brew", "install", "{{.Name}}"},
		Uninstall:   []string{"brew", "uninstall", "{{.Name}}"},
		List:        []string{"brew", "leaves", "--installed-on-request"},
		ListPattern: `^(?P<name>\S+)$`,
		Retries:     1,
	}}
	if diff := cmp.Diff(want, settings.Backends); diff != "" {
		t.Errorf("Backends mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, settings.IsDisabled("vscode"))
	assert.False(t, settings.IsDisabled("npm"))
	assert.Equal(t, 2, settings.Retries)
}

func TestLoader_UnknownKeysWarn(t *testing.T) {
	ctrl := gomock.NewController(t)
	setupBase(t, `colour = "always"`)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	_, err := config.NewLoader(log).Load()
	require.NoError(t, err)
}

func TestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "missing install",
			content: "[[backend]]\nname = \"brew\"\nuninstall = [\"x\"]\nlist = [\"y\"]\n",
			wantErr: domain.ErrInvalidBackendConfig,
		},
		{
			name:    "bad name",
			content: "[[backend]]\nname = \"Brew Cask\"\ninstall = [\"a\"]\nuninstall = [\"x\"]\nlist = [\"y\"]\n",
			wantErr: domain.ErrInvalidBackendName,
		},
		{
			name:    "pattern without name group",
			content: "[[backend]]\nname = \"brew\"\ninstall = [\"a\"]\nuninstall = [\"x\"]\nlist = [\"y\"]\nlist_pattern = '^(\\S+)$'\n",
			wantErr: domain.ErrInvalidBackendConfig,
		},
		{
			name: "duplicate backend",
			content: "[[backend]]\nname = \"brew\"\ninstall = [\"a\"]\nuninstall = [\"x\"]\nlist = [\"y\"]\n" +
				"[[backend]]\nname = \"brew\"\ninstall = [\"a\"]\nuninstall = [\"x\"]\nlist = [\"y\"]\n",
			wantErr: domain.ErrBackendExists,
		},
		{
			name:    "negative retries",
			content: "retries = -1\n",
			wantErr: domain.ErrInvalidBackendConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			setupBase(t, tt.content)

			_, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load()
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoader_ParseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	setupBase(t, "manifest = \n")

	_, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigParseFailed.Error())
}
