package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSimpleTable(t *testing.T) {
	out := RenderSimpleTable(
		[]TableColumn{{Title: "ID", Width: 4}, {Title: "ADDRESS", Width: 20}},
		[][]string{{"1", "localhost:7001"}, {"2", "localhost:7002"}},
	)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "ADDRESS")
	assert.Contains(t, out, "localhost:7001")
	assert.Contains(t, out, "localhost:7002")
}

func TestRenderSimpleTableEmpty(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "ID", Width: 4}}, nil))
}

func TestRenderRegistryTable(t *testing.T) {
	out := RenderRegistryTable([]RegistryRow{
		{ID: 1, Address: "localhost:7001"},
		{ID: 2, Address: "10.0.0.2:7002"},
		{Address: "localhost:7000", Plotter: true},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "ADDRESS")
	assert.Contains(t, out, "server    1     localhost:7001")
	assert.Contains(t, out, "server    2     10.0.0.2:7002")
	assert.Contains(t, out, "plotter   -     localhost:7000")
}

func TestRenderRegistryTableEmpty(t *testing.T) {
	assert.Equal(t, "No servers configured", RenderRegistryTable(nil))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(HeaderInfo{Version: "v1.2.0", Tagline: "capacity monitor", Details: []string{"config: hasup.yaml"}})

	assert.True(t, strings.HasPrefix(out, "hasup-admin v1.2.0\n"))
	assert.Contains(t, out, "capacity monitor\n")
	assert.Contains(t, out, "config: hasup.yaml\n")
	assert.Contains(t, out, strings.Repeat("━", HeaderWidth))
}
