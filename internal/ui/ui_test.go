package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFprintTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	FprintTable(&buf, []string{"ID", "NAME"}, [][]string{
		{"tool-1", "AI Agent"},
		{"tool-22", "Email"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  ID       NAME", lines[0])
	assert.Equal(t, "  tool-1   AI Agent", lines[2])
	assert.Equal(t, "  tool-22  Email", lines[3])
}

func TestFprintTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FprintTable(&buf, []string{"ID"}, nil)
	assert.Empty(t, buf.String())
}
