package plugin

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firestige.xyz/protosy/internal/log"
	"firestige.xyz/protosy/internal/native/nativetest"
	"firestige.xyz/protosy/pkg/plugin"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	if err := log.Init(&log.LoggerConfig{
		Level:   "error",
		Pattern: "%time [%level][%field] - %msg\n",
		Time:    "2006-01-02 15:04:05",
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// MockPlugin is an in-process plugin with scripted behaviour.
type MockPlugin struct {
	mock.Mock
}

func (m *MockPlugin) Name() string {
	return m.Called().String(0)
}

func (m *MockPlugin) OnLoad() error {
	return m.Called().Error(0)
}

func (m *MockPlugin) OnUnload() error {
	return m.Called().Error(0)
}

func newMockPlugin(name string) *MockPlugin {
	p := new(MockPlugin)
	p.On("Name").Return(name).Maybe()
	return p
}

// mockFactory serves prepared plugins by path.
func mockFactory(plugins map[string]plugin.Plugin) Factory {
	return func(path string) (plugin.Plugin, error) {
		p, ok := plugins[path]
		if !ok {
			return nil, fmt.Errorf("no plugin at %s", path)
		}
		return p, nil
	}
}

// fakeLibraries registers one nativetest.Library per name under
// /plugins/lib<name>.so and returns a registry over them.
type fakeLibraries struct {
	opener *nativetest.Opener
	libs   map[string]*nativetest.Library
}

func newFakeLibraries() *fakeLibraries {
	return &fakeLibraries{
		opener: nativetest.NewOpener(),
		libs:   make(map[string]*nativetest.Library),
	}
}

func (f *fakeLibraries) add(t *testing.T, file string, lib *nativetest.Library) string {
	t.Helper()
	path := "/plugins/" + file
	require.NotContains(t, f.libs, path)
	f.libs[path] = f.opener.Add(path, lib)
	return path
}

func (f *fakeLibraries) registry() *Registry {
	return NewRegistry(WithOpener(f.opener.Open))
}
