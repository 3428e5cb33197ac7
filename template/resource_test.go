package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResource(t *testing.T) {
	t.Run("ParseResource_ScalarAndMapping", func(t *testing.T) {
		src := []byte(`
messages:
  welcome: "Welcome, {first-name}!"
  signin:
    value: "Sign in"
    attributes:
      tooltip: "Sign in with your {provider} account"
  hints:
    attributes:
      short: "A hint"
`)
		res, err := ParseResource("home.yaml", src)
		require.NoError(t, err)
		assert.Equal(t, []string{"hints", "signin", "welcome"}, res.IDs())

		welcome, ok := res.Message("welcome")
		require.True(t, ok)
		_, ok = welcome.Value()
		assert.True(t, ok)
		assert.Empty(t, welcome.Attributes())

		signin, ok := res.Message("signin")
		require.True(t, ok)
		_, ok = signin.Value()
		assert.True(t, ok)
		_, ok = signin.Attribute("tooltip")
		assert.True(t, ok)
		assert.Equal(t, []string{"tooltip"}, signin.Attributes())

		hints, ok := res.Message("hints")
		require.True(t, ok)
		_, ok = hints.Value()
		assert.False(t, ok)
		_, ok = hints.Attribute("short")
		assert.True(t, ok)
	})

	t.Run("ParseResource_MalformedYAML", func(t *testing.T) {
		_, err := ParseResource("broken.yaml", []byte("messages: ["))
		require.Error(t, err)
	})

	t.Run("ParseResource_MalformedTemplate", func(t *testing.T) {
		_, err := ParseResource("home.yaml", []byte(`
messages:
  welcome: "Welcome, {first-name!"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `message "welcome"`)
	})

	t.Run("ParseResource_DottedID", func(t *testing.T) {
		_, err := ParseResource("home.yaml", []byte(`
messages:
  welcome.tooltip: "nope"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not contain")
	})

	t.Run("ParseResource_EmptyEntry", func(t *testing.T) {
		_, err := ParseResource("home.yaml", []byte(`
messages:
  ghost: {}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "neither value nor attributes")
	})

	t.Run("ParseResource_EntryWrongKind", func(t *testing.T) {
		_, err := ParseResource("home.yaml", []byte(`
messages:
  nope: [1, 2]
`))
		require.Error(t, err)
	})
}

func TestPatterns(t *testing.T) {
	src := []byte(`
messages:
  a: "{x | number}"
  b:
    value: "plain"
    attributes:
      hint: "{y | upper}"
`)
	res, err := ParseResource("r.yaml", src)
	require.NoError(t, err)

	var keys []string
	res.Patterns(func(id string, ast AST) {
		keys = append(keys, id)
	})
	assert.Equal(t, []string{"a", "b", "b.hint"}, keys)
}

func TestResourceFileNames(t *testing.T) {
	assert.True(t, IsResourceFile("home.yaml"))
	assert.True(t, IsResourceFile("_shared.yml"))
	assert.False(t, IsResourceFile("README.md"))
	assert.False(t, IsResourceFile(".DS_Store"))
	assert.False(t, IsResourceFile("noext"))

	assert.Equal(t, "home", ResourceName("home.yaml"))
	assert.Equal(t, "_shared", ResourceName("_shared.yml"))
}
