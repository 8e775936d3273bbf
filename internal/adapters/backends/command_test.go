package backends_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/darling/internal/adapters/backends"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/darling/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func brewSpec() domain.CommandSpec {
	return domain.CommandSpec{
		Name:        "brew",
		Description: "Homebrew formulae",
		Source:      "/home/user/.config/darling/config.toml",
		Install:     []string{"brew", "install", "{{.Name}}{{if .Version}}@{{.Version}}{{end}}", "{{.Properties.tap}}"},
		Uninstall:   []string{"brew", "uninstall", "{{.Name}}"},
		List:        []string{"brew", "list", "--versions"},
		ListPattern: `^(?P<name>\S+) (?P<version>\S+)$`,
	}
}

func newBackend(t *testing.T, spec domain.CommandSpec) (ports.Backend, *mocks.MockCommandRunner, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	log := mocks.NewMockLogger(ctrl)

	b, err := backends.NewCommandBackend(spec, runner, log, backends.WithBackoff(0))
	require.NoError(t, err)
	return b, runner, log
}

func TestCommandBackend_InstallDiscoversVersion(t *testing.T) {
	ctx := context.Background()
	b, runner, _ := newBackend(t, brewSpec())

	gomock.InOrder(
		runner.EXPECT().Run(ctx, []string{"brew", "install", "jq"}).Return(nil),
		runner.EXPECT().Output(ctx, []string{"brew", "list", "--versions"}).Return([]byte("fd 10.1.0\njq 1.7.1\n"), nil),
	)

	version, err := b.Install(ctx, domain.NewEntry("jq", nil))
	require.NoError(t, err)
	assert.Equal(t, "1.7.1", version)
}

func TestCommandBackend_InstallRendersVersionAndProperties(t *testing.T) {
	ctx := context.Background()
	b, runner, log := newBackend(t, brewSpec())

	runner.EXPECT().Run(ctx, []string{"brew", "install", "jq@1.6", "homebrew/core"}).Return(nil)
	runner.EXPECT().Output(ctx, gomock.Any()).Return([]byte("fd 10.1.0\n"), nil)
	log.EXPECT().Debug(gomock.Any())

	version, err := b.Install(ctx, domain.NewEntry("jq", domain.Properties{"version": "1.6", "tap": "homebrew/core"}))
	require.NoError(t, err)
	assert.Empty(t, version, "a package missing from the listing reports no version")
}

func TestCommandBackend_InstallListFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	b, runner, log := newBackend(t, brewSpec())

	runner.EXPECT().Run(ctx, gomock.Any()).Return(nil)
	runner.EXPECT().Output(ctx, gomock.Any()).Return(nil, errors.New("exit status 1"))
	log.EXPECT().Warn(gomock.Any())

	version, err := b.Install(ctx, domain.NewEntry("jq", nil))
	require.NoError(t, err)
	assert.Empty(t, version)
}

func TestCommandBackend_Retries(t *testing.T) {
	ctx := context.Background()
	spec := brewSpec()
	spec.Retries = 2
	b, runner, log := newBackend(t, spec)

	failure := errors.New("network unreachable")
	gomock.InOrder(
		runner.EXPECT().Run(ctx, gomock.Any()).Return(failure),
		runner.EXPECT().Run(ctx, gomock.Any()).Return(failure),
		runner.EXPECT().Run(ctx, gomock.Any()).Return(nil),
	)
	log.EXPECT().Warn(gomock.Any()).Times(2)

	require.NoError(t, b.Uninstall(ctx, domain.NewEntry("jq", nil)))
}

func TestCommandBackend_RetriesExhausted(t *testing.T) {
	ctx := context.Background()
	spec := brewSpec()
	spec.Retries = 1
	b, runner, log := newBackend(t, spec)

	failure := errors.New("network unreachable")
	runner.EXPECT().Run(ctx, gomock.Any()).Return(failure).Times(2)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	_, err := b.Install(ctx, domain.NewEntry("jq", nil))
	require.ErrorIs(t, err, failure)
}

func TestCommandBackend_RetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	spec := brewSpec()
	spec.Retries = 3
	b, runner, _ := newBackend(t, spec)

	runner.EXPECT().Run(ctx, gomock.Any()).DoAndReturn(func(context.Context, []string) error {
		cancel()
		return context.Canceled
	})

	err := b.Uninstall(ctx, domain.NewEntry("jq", nil))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCommandBackend_ListExplicitParseError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)

	b, err := backends.NewCommandBackend(brewSpec(), runner, mocks.NewMockLogger(ctrl), backends.WithParser(backends.ParseNPM))
	require.NoError(t, err)

	runner.EXPECT().Output(ctx, gomock.Any()).Return([]byte("not json"), nil)

	_, err = b.ListExplicit(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrOutputParseFailed.Error())
}

func TestCommandBackend_PostInstall(t *testing.T) {
	ctx := context.Background()

	plain, _, _ := newBackend(t, brewSpec())
	_, ok := plain.(ports.PostInstaller)
	assert.False(t, ok, "backends without a post-install command must not advertise one")

	spec := brewSpec()
	spec.PostInstall = []string{"brew", "cleanup"}
	b, runner, _ := newBackend(t, spec)

	post, ok := b.(ports.PostInstaller)
	require.True(t, ok)

	runner.EXPECT().Run(ctx, []string{"brew", "cleanup"}).Return(nil)
	require.NoError(t, post.PostInstall(ctx))
}

func TestCommandBackend_Describe(t *testing.T) {
	b, _, _ := newBackend(t, brewSpec())

	d, ok := b.(ports.Describer)
	require.True(t, ok)
	assert.Equal(t, domain.BackendDescriptor{
		Name:        "brew",
		Description: "Homebrew formulae",
		Source:      "/home/user/.config/darling/config.toml",
	}, d.Describe())
	assert.Equal(t, "brew", b.Name())
}

func TestNewCommandBackend_InvalidTemplates(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	log := mocks.NewMockLogger(ctrl)

	spec := brewSpec()
	spec.Install = []string{"brew", "install", "{{.Name"}
	_, err := backends.NewCommandBackend(spec, runner, log)
	require.ErrorIs(t, err, domain.ErrInvalidBackendConfig)

	spec = brewSpec()
	spec.Uninstall = nil
	_, err = backends.NewCommandBackend(spec, runner, log)
	require.ErrorIs(t, err, domain.ErrInvalidBackendConfig)

	spec = brewSpec()
	spec.ListPattern = `^\S+$`
	_, err = backends.NewCommandBackend(spec, runner, log)
	require.ErrorIs(t, err, domain.ErrInvalidBackendConfig)
}
