package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/darling/internal/adapters/manifest"
	"go.trai.ch/darling/internal/core/domain"
)

const baseManifest = `pacman:
  ripgrep:
    version: 14.1.0-1
npm:
  typescript:
    version: 5.4.5
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), domain.ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestStore_LoadCreatesMissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", domain.ManifestFileName)

	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	assert.Empty(t, m.Sections())
	assert.Equal(t, "{}\n", readFile(t, path))
}

func TestStore_LoadEmptyFile(t *testing.T) {
	for _, content := range []string{"", "\n\n", "~\n", "# nothing yet\n"} {
		m, err := manifest.NewStore(writeManifest(t, content)).Load()
		require.NoError(t, err, "content %q", content)
		assert.Empty(t, m.Sections())
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "pacman: [unclosed\n"},
		{name: "top level list", content: "- pacman\n- npm\n"},
		{name: "top level scalar", content: "just text\n"},
		{name: "duplicate section", content: "npm:\n  a:\n    version: \"1\"\nnpm:\n  b:\n    version: \"2\"\n"},
		{name: "aliased section", content: "npm: &shared\n  a:\n    version: \"1\"\npip: *shared\n"},
		{name: "aliased entry", content: "npm:\n  a: &props\n    version: \"1\"\npip:\n  a: *props\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.NewStore(writeManifest(t, tt.content)).Load()
			require.ErrorIs(t, err, domain.ErrCorruptManifest)
		})
	}
}

func TestDocument_Section(t *testing.T) {
	m, err := manifest.NewStore(writeManifest(t, `pacman:
  ripgrep:
    version: 14.1.0-1
    source: extra
  fd:
  bat:
    version: 1.2
`)).Load()
	require.NoError(t, err)

	entries, err := m.Section("pacman")
	require.NoError(t, err)

	want := []domain.Entry{
		{Name: "ripgrep", Properties: domain.Properties{"version": "14.1.0-1", "source": "extra"}},
		{Name: "fd", Properties: domain.Properties{}},
		{Name: "bat", Properties: domain.Properties{"version": "1.2"}},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Section() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, domain.LatestVersion, entries[1].Version())

	missing, err := m.Section("cargo")
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Equal(t, []string{"pacman"}, m.Sections(), "reading a missing section must not create it")
}

func TestDocument_SectionCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "section is a list", content: "pacman:\n  - ripgrep\n"},
		{name: "section is a scalar", content: "pacman: ripgrep\n"},
		{name: "entry is a scalar", content: "pacman:\n  ripgrep: 14.1\n"},
		{name: "property is a mapping", content: "pacman:\n  ripgrep:\n    version:\n      major: 14\n"},
		{name: "duplicate entry", content: "pacman:\n  ripgrep:\n    version: \"1\"\n  ripgrep:\n    version: \"2\"\n"},
		{name: "duplicate property", content: "pacman:\n  ripgrep:\n    version: \"1\"\n    version: \"2\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.content)
			m, err := manifest.NewStore(path).Load()
			require.NoError(t, err)

			_, err = m.Section("pacman")
			require.ErrorIs(t, err, domain.ErrCorruptManifest)

			err = m.Upsert("pacman", domain.NewEntry("ripgrep", nil))
			require.ErrorIs(t, err, domain.ErrCorruptManifest)

			assert.Equal(t, tt.content, readFile(t, path))
		})
	}
}

func TestDocument_UpsertAndPersist(t *testing.T) {
	path := writeManifest(t, baseManifest)
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, m.Upsert("pacman", domain.NewEntry("fd", domain.Properties{
		"source":  "core",
		"version": "10.1.0-1",
	})))
	require.NoError(t, m.Upsert("npm", domain.NewEntry("typescript", domain.Properties{"version": "5.5.0"})))
	require.NoError(t, m.Upsert("cargo", domain.NewEntry("bat", nil)))
	require.NoError(t, m.Persist())

	g := goldie.New(t)
	g.Assert(t, "upsert", []byte(readFile(t, path)))
}

func TestDocument_UpsertKeepsComments(t *testing.T) {
	path := writeManifest(t, `# my packages
pacman:
  ripgrep: # fast grep
    version: 14.1.0-1
`)
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, m.Upsert("pacman", domain.NewEntry("fd", nil)))
	require.NoError(t, m.Persist())

	got := readFile(t, path)
	assert.Contains(t, got, "# my packages")
	assert.Contains(t, got, "# fast grep")
	assert.Contains(t, got, "fd:\n    version: latest\n")
}

func TestDocument_UpsertNullSection(t *testing.T) {
	path := writeManifest(t, "pacman:\n")
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, m.Upsert("pacman", domain.NewEntry("ripgrep", nil)))
	require.NoError(t, m.Persist())

	assert.Equal(t, "pacman:\n  ripgrep:\n    version: latest\n", readFile(t, path))
}

func TestDocument_UpsertFlowDocument(t *testing.T) {
	path := writeManifest(t, "{}\n")
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, m.Upsert("npm", domain.NewEntry("typescript", domain.Properties{"version": "5.4.5"})))
	require.NoError(t, m.Persist())

	reloaded, err := manifest.NewStore(path).Load()
	require.NoError(t, err)
	entries, err := reloaded.Section("npm")
	require.NoError(t, err)
	assert.Equal(t, []domain.Entry{{Name: "typescript", Properties: domain.Properties{"version": "5.4.5"}}}, entries)
	assert.Equal(t, "npm:\n  typescript:\n    version: 5.4.5\n", readFile(t, path))
}

func TestDocument_UpsertInvalidNames(t *testing.T) {
	m, err := manifest.NewStore(writeManifest(t, baseManifest)).Load()
	require.NoError(t, err)

	require.ErrorIs(t, m.Upsert("", domain.NewEntry("fd", nil)), domain.ErrInvalidBackendName)
	require.ErrorIs(t, m.Upsert("pacman", domain.NewEntry("", nil)), domain.ErrInvalidPackageName)
}

func TestDocument_Remove(t *testing.T) {
	path := writeManifest(t, baseManifest)
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, m.Remove("pacman", "ripgrep"))
	require.ErrorIs(t, m.Remove("pacman", "ripgrep"), domain.ErrEntryNotFound)
	require.ErrorIs(t, m.Remove("cargo", "bat"), domain.ErrSectionNotFound)
	require.NoError(t, m.Persist())

	assert.Equal(t, "pacman: {}\nnpm:\n  typescript:\n    version: 5.4.5\n", readFile(t, path))
}

func TestDocument_PersistDetectsConcurrentChange(t *testing.T) {
	path := writeManifest(t, baseManifest)
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("cargo: {}\n"), domain.FilePerm))
	require.NoError(t, m.Upsert("pacman", domain.NewEntry("fd", nil)))

	err = m.Persist()
	require.ErrorIs(t, err, domain.ErrManifestWriteFailed)
	require.ErrorIs(t, err, domain.ErrManifestChanged)
	assert.Equal(t, "cargo: {}\n", readFile(t, path))
}

func TestDocument_PersistTwice(t *testing.T) {
	path := writeManifest(t, baseManifest)
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, m.Upsert("pacman", domain.NewEntry("fd", nil)))
	require.NoError(t, m.Persist())
	require.NoError(t, m.Remove("pacman", "fd"))
	require.NoError(t, m.Persist())

	assert.Equal(t, baseManifest, readFile(t, path))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStore_PersistThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dotfiles", "darling.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), domain.DirPerm))
	require.NoError(t, os.WriteFile(target, []byte(baseManifest), domain.FilePerm))

	link := filepath.Join(dir, domain.ManifestFileName)
	require.NoError(t, os.Symlink(target, link))

	store := manifest.NewStore(link)
	m, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, m.Upsert("npm", domain.NewEntry("prettier", domain.Properties{"version": "3.3.3"})))
	require.NoError(t, m.Persist())

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSymlink, info.Mode()&os.ModeSymlink, "manifest link must survive a persist")
	assert.Contains(t, readFile(t, target), "prettier:")
	assert.Equal(t, filepath.Dir(target), filepath.Dir(store.Path()))
}

func TestStore_LoadCreatesDanglingSymlinkTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dotfiles.yaml")
	link := filepath.Join(dir, domain.ManifestFileName)
	require.NoError(t, os.Symlink("dotfiles.yaml", link))

	_, err := manifest.NewStore(link).Load()
	require.NoError(t, err)

	assert.Equal(t, "{}\n", readFile(t, target))
	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSymlink, info.Mode()&os.ModeSymlink)
}

func TestStore_CommentOnlyManifestKeepsComments(t *testing.T) {
	path := writeManifest(t, "# my packages, keep sorted\n")
	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.NoError(t, m.Upsert("npm", domain.NewEntry("prettier", nil)))
	require.NoError(t, m.Persist())

	got := readFile(t, path)
	assert.True(t, strings.HasPrefix(got, "# my packages, keep sorted\n"), "got %q", got)

	reloaded, err := manifest.NewStore(path).Load()
	require.NoError(t, err)
	entries, err := reloaded.Section("npm")
	require.NoError(t, err)
	assert.Equal(t, []domain.Entry{domain.NewEntry("prettier", domain.Properties{"version": "latest"})}, entries)
}
