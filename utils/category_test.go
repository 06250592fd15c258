package utils

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, NormalizeCategory(" Principal "), "main")
	assert.Equal(t, NormalizeCategory("Espalda"), "back")
	assert.Equal(t, NormalizeCategory("Close Up"), "detail")
	assert.Equal(t, NormalizeCategory("Lifestyle  Shot"), "lifestyle_shot")
	assert.Equal(t, NormalizeCategory(""), "")
}

func TestParseColumns(t *testing.T) {
	got := ParseColumns("main, side,, Lateral ,back,portada")

	assert.DeepEqual(t, got, []string{"main", "side", "back"})
}
