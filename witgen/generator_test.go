package witgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `[package]
name = "echo"
version = "0.1.0"
edition = "2021"

[package.metadata.component]
package = "hyperware:process"

[dependencies]
hyperware_process_lib = { git = "https://github.com/hyperware-ai/hyperprocess-macro", rev = "4c944b2" }
`

const testLibSource = `use hyperware_process_lib::Address;

pub struct EchoPayload {
    pub body: String,
    pub tags: Vec<String>,
}

#[hyperprocess(
    name = "Echo",
    wit_world = "echo-dot-os-v0",
)]
impl EchoState {
    #[init]
    async fn initialize(&mut self) {}

    #[remote]
    #[local]
    async fn echo(&self, payload: EchoPayload) -> Result<EchoPayload, String> {
        unimplemented!()
    }

    #[http]
    async fn status(&self) -> String {
        unimplemented!()
    }
}
`

func writeTestProject(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(testManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "lib.rs"), []byte(testLibSource), 0o644))
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	writeTestProject(t, root, "echo")

	// a non-process directory is silently skipped
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))

	results, err := Generate(context.Background(), Options{RootDir: root, Jobs: 2})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "echo", results[0].Interface)
	assert.Equal(t, "echo-dot-os-v0", results[0].World)

	iface := readFile(t, filepath.Join(root, "api", "echo.wit"))
	assert.Contains(t, iface, "interface echo {")
	assert.Contains(t, iface, "use standard.{address};")
	assert.Contains(t, iface, "record echo-payload {")
	assert.Contains(t, iface, "record echo-signature-remote {")
	assert.Contains(t, iface, "record echo-signature-local {")
	assert.Contains(t, iface, "record status-signature-http {")

	types := readFile(t, filepath.Join(root, "api", "types-echo-dot-os-v0.wit"))
	assert.Contains(t, types, "import echo;")
	assert.Contains(t, types, "include lib;")

	bare := readFile(t, filepath.Join(root, "api", "echo-dot-os-v0.wit"))
	assert.Contains(t, bare, "include process-v1;")
}

func TestGenerateIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTestProject(t, root, "echo")

	_, err := Generate(context.Background(), Options{RootDir: root})
	require.NoError(t, err)

	snapshot := map[string]string{}
	apiDir := filepath.Join(root, "api")
	entries, err := os.ReadDir(apiDir)
	require.NoError(t, err)
	for _, e := range entries {
		snapshot[e.Name()] = readFile(t, filepath.Join(apiDir, e.Name()))
	}
	require.NotEmpty(t, snapshot)

	_, err = Generate(context.Background(), Options{RootDir: root})
	require.NoError(t, err)

	entries, err = os.ReadDir(apiDir)
	require.NoError(t, err)
	require.Len(t, entries, len(snapshot))
	for _, e := range entries {
		assert.Equal(t, snapshot[e.Name()], readFile(t, filepath.Join(apiDir, e.Name())), e.Name())
	}
}

func TestGenerateFailsFast(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(testManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "lib.rs"), []byte(`
#[hyperprocess(wit_world = "w")]
impl BrokenState {
    #[remote]
    async fn fetch(&self, payload: NeverDefined) -> Result<String, String> {
        unimplemented!()
    }
}
`), 0o644))

	_, err := Generate(context.Background(), Options{RootDir: root})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NeverDefined")
}

func TestProcessLibDependencyConflict(t *testing.T) {
	root := t.TempDir()
	writeTestProject(t, root, "one")
	writeTestProject(t, root, "two")

	manifest := `[package]
name = "two"

[package.metadata.component]
package = "hyperware:process"

[dependencies]
hyperware_process_lib = "1.0"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "two", "Cargo.toml"), []byte(manifest), 0o644))

	projects, err := DiscoverProjects(root)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	_, err = ProcessLibDependency(projects)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "onflicting")
}

func TestProcessLibDependencyEquivalentVersions(t *testing.T) {
	root := t.TempDir()
	manifest := `[package]
name = "%s"

[package.metadata.component]
package = "hyperware:process"

[dependencies]
hyperware_process_lib = "%s"
`
	for name, version := range map[string]string{"one": "1.0", "two": "1.0.0"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"),
			[]byte(fmt.Sprintf(manifest, name, version)), 0o644))
	}

	projects, err := DiscoverProjects(root)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// "1.0" and "1.0.0" pin the same requirement, not a conflict
	dep, err := ProcessLibDependency(projects)
	require.NoError(t, err)
	assert.Equal(t, `"1.0"`, dep)
}

func TestProcessLibDependencyResolved(t *testing.T) {
	root := t.TempDir()
	writeTestProject(t, root, "echo")

	projects, err := DiscoverProjects(root)
	require.NoError(t, err)

	dep, err := ProcessLibDependency(projects)
	require.NoError(t, err)
	assert.Equal(t, `{ git = "https://github.com/hyperware-ai/hyperprocess-macro", rev = "4c944b2" }`, dep)
}
