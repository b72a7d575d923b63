package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolve_MultilineString(t *testing.T) {
	var m Manifest
	err := yaml.Unmarshal([]byte("\"!/.github\\n# comment\\n**/*\""), &m)
	require.NoError(t, err)

	assert.Equal(t, []string{"!/.github", "**/*"}, m.Resolve("main"))
}

func TestResolve_StringCommentsAndBlanks(t *testing.T) {
	var p Patterns
	err := yaml.Unmarshal([]byte("\"src/**  # sources\\n\\n   \\n!src/secret.txt\\n# only a comment\\n\""), &p)
	require.NoError(t, err)

	assert.Equal(t, Patterns{"src/**", "!src/secret.txt"}, p)
}

func TestResolve_List(t *testing.T) {
	var m Manifest
	err := yaml.Unmarshal([]byte("[\"!/.github\", \"**/*\"]"), &m)
	require.NoError(t, err)

	// List patterns are used as-is, for any branch.
	assert.Equal(t, []string{"!/.github", "**/*"}, m.Resolve("main"))
	assert.Equal(t, []string{"!/.github", "**/*"}, m.Resolve(""))
}

func TestResolve_BranchMap(t *testing.T) {
	var m Manifest
	err := yaml.Unmarshal([]byte(`
main: ["!/.github", "!/test", "**/*"]
status: ["/badges"]
"*": ["**/*"]
`), &m)
	require.NoError(t, err)

	assert.Equal(t, []string{"!/.github", "!/test", "**/*"}, m.Resolve("main"))
	assert.Equal(t, []string{"/badges"}, m.Resolve("status"))
	// Unknown branch falls back to "*".
	assert.Equal(t, []string{"**/*"}, m.Resolve("feature"))
	// Empty branch selects the fallback as well.
	assert.Equal(t, []string{"**/*"}, m.Resolve(""))
}

func TestResolve_BranchMapWithoutFallback(t *testing.T) {
	var m Manifest
	err := yaml.Unmarshal([]byte(`main: ["**/*"]`), &m)
	require.NoError(t, err)

	// No entry and no "*" fallback: nothing is allowed.
	assert.Empty(t, m.Resolve("feature"))
}

func TestManifest_RejectsInvalidShape(t *testing.T) {
	var p Patterns
	err := yaml.Unmarshal([]byte(`{main: ["**/*"]}`), &p)
	assert.Error(t, err)
}

func TestManifest_IsZero(t *testing.T) {
	assert.True(t, Manifest{}.IsZero())
	assert.False(t, FromPatterns("**/*").IsZero())
	assert.False(t, FromBranchMap(map[string]Patterns{"*": {"**/*"}}).IsZero())
}
