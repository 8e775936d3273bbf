package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/darling/internal/core/domain"
)

func TestEntry_WithVersion(t *testing.T) {
	tests := []struct {
		name     string
		props    domain.Properties
		reported string
		want     domain.Properties
	}{
		{
			name:     "reported version is recorded",
			props:    nil,
			reported: "1.2.3",
			want:     domain.Properties{"version": "1.2.3"},
		},
		{
			name:     "missing version defaults to latest",
			props:    domain.Properties{"source": "aur"},
			reported: "",
			want:     domain.Properties{"source": "aur", "version": "latest"},
		},
		{
			name:     "requested version is kept when nothing is reported",
			props:    domain.Properties{"version": "0.9"},
			reported: "",
			want:     domain.Properties{"version": "0.9"},
		},
		{
			name:     "reported version overrides requested one",
			props:    domain.Properties{"version": "0.9"},
			reported: "1.0",
			want:     domain.Properties{"version": "1.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := domain.NewEntry("pkg", tt.props)
			got := e.WithVersion(tt.reported)
			assert.Equal(t, tt.want, got.Properties)
			assert.Equal(t, "pkg", got.Name)
		})
	}
}

func TestEntry_WithVersionDoesNotAlias(t *testing.T) {
	props := domain.Properties{"source": "aur"}
	e := domain.NewEntry("pkg", props)
	_ = e.WithVersion("1.0")

	assert.NotContains(t, props, domain.VersionKey)
	assert.NotContains(t, e.Properties, domain.VersionKey)
}

func TestProperties_Version(t *testing.T) {
	assert.Equal(t, domain.LatestVersion, domain.Properties(nil).Version())
	assert.Equal(t, domain.LatestVersion, domain.Properties{"version": ""}.Version())
	assert.Equal(t, "2.0", domain.Properties{"version": "2.0"}.Version())
	assert.Equal(t, []string{"a", "b", "version"}, domain.Properties{"version": "1", "b": "x", "a": "y"}.Keys())
}

func TestDrift_InSync(t *testing.T) {
	assert.True(t, domain.Drift{Backend: "npm"}.InSync())
	assert.False(t, domain.Drift{Backend: "npm", Missing: []string{"a"}}.InSync())
	assert.False(t, domain.Drift{Backend: "npm", Untracked: []domain.InstalledPackage{{Name: "b"}}}.InSync())
}

func TestValidBackendName(t *testing.T) {
	for _, name := range []string{"pacman", "npm", "pip-user", "go_tools", "2fa"} {
		assert.True(t, domain.ValidBackendName(name), name)
	}
	for _, name := range []string{"", "Pacman", "-npm", "a b", "npm:global"} {
		assert.False(t, domain.ValidBackendName(name), name)
	}
}
