package witgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestUpdateWorldsMergesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.wit")
	require.NoError(t, os.WriteFile(path, []byte(`world chat-dot-os-v0 {
    import files;
    include process-v1;
}
`), 0o644))

	err := UpdateWorlds(dir, []WorldUpdate{{World: "chat-dot-os-v0", Interface: "chat"}})
	require.NoError(t, err)

	got := readFile(t, path)
	assert.Contains(t, got, "import chat;")
	// existing statements are preserved
	assert.Contains(t, got, "import files;")
	assert.Contains(t, got, "include process-v1;")
}

func TestUpdateWorldsAdditive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.wit")
	require.NoError(t, os.WriteFile(path, []byte("world w {\n    import chat;\n}\n"), 0o644))

	// merging the same import twice never duplicates it
	for i := 0; i < 2; i++ {
		require.NoError(t, UpdateWorlds(dir, []WorldUpdate{
			{World: "w", Interface: "chat"},
			{World: "w", Interface: "files"},
		}))
	}

	got := readFile(t, path)
	assert.Equal(t, "world w {\n    import chat;\n    import files;\n}\n", got)
}

func TestUpdateWorldsTypesPrefixMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "types-chat-dot-os-v0.wit")
	require.NoError(t, os.WriteFile(path, []byte(`world types-chat-dot-os-v0 {
    include lib;
}
`), 0o644))

	err := UpdateWorlds(dir, []WorldUpdate{{World: "chat-dot-os-v0", Interface: "chat"}})
	require.NoError(t, err)

	got := readFile(t, path)
	assert.Contains(t, got, "import chat;")

	// matched via the types- variant, so no synthesized pair appears
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateWorldsSynthesizesPair(t *testing.T) {
	dir := t.TempDir()

	err := UpdateWorlds(dir, []WorldUpdate{{World: "chat-dot-os-v0", Interface: "chat"}})
	require.NoError(t, err)

	types := readFile(t, filepath.Join(dir, "types-chat-dot-os-v0.wit"))
	assert.Contains(t, types, "world types-chat-dot-os-v0 {")
	assert.Contains(t, types, "import chat;")
	assert.Contains(t, types, "include lib;")

	bare := readFile(t, filepath.Join(dir, "chat-dot-os-v0.wit"))
	assert.Contains(t, bare, "world chat-dot-os-v0 {")
	assert.Contains(t, bare, "include process-v1;")
}

func TestUpdateWorldsIgnoresInterfaceFiles(t *testing.T) {
	dir := t.TempDir()
	ifacePath := filepath.Join(dir, "chat.wit")
	iface := "interface chat {\n    use standard.{address};\n}\n"
	require.NoError(t, os.WriteFile(ifacePath, []byte(iface), 0o644))

	err := UpdateWorlds(dir, []WorldUpdate{{World: "w", Interface: "chat"}})
	require.NoError(t, err)
	assert.Equal(t, iface, readFile(t, ifacePath))
}
