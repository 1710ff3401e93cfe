package message

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestSortByFileThenLineThenKind(t *testing.T) {
	msgs := []Message{
		{Kind: Conflict, Text: "b", Provenance: rules.Provenance{File: "b.txt", Line: 1}},
		{Kind: Note, Text: "a2", Provenance: rules.Provenance{File: "a.txt", Line: 2}},
		{Kind: Requires, Text: "a1b", Provenance: rules.Provenance{File: "a.txt", Line: 1}},
		{Kind: Note, Text: "a1a", Provenance: rules.Provenance{File: "a.txt", Line: 1}},
	}
	Sort(msgs)

	require.Len(t, msgs, 4)
	assert.Equal(t, "a1a", msgs[0].Text)
	assert.Equal(t, "a1b", msgs[1].Text)
	assert.Equal(t, "a2", msgs[2].Text)
	assert.Equal(t, "b", msgs[3].Text)
}

func TestSortIsStableWithinSameFileLineKind(t *testing.T) {
	msgs := []Message{
		{Kind: Patch, Text: "first", Provenance: rules.Provenance{File: "a.txt", Line: 5}},
		{Kind: Patch, Text: "second", Provenance: rules.Provenance{File: "a.txt", Line: 5}},
	}
	Sort(msgs)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
}

func TestRenderPlain(t *testing.T) {
	msgs := []Message{
		{
			Kind:       Conflict,
			Text:       "these mods do not get along",
			Plugins:    []plugin.ID{"A.esp", "B.esp"},
			Provenance: rules.Provenance{File: "rules.txt", Line: 3},
		},
	}
	var buf strings.Builder
	require.NoError(t, Render(&buf, msgs))
	assert.Equal(t, "[CONFLICT] rules.txt:3: these mods do not get along (A.esp, B.esp)\n", buf.String())
}

func TestRenderNoPlugins(t *testing.T) {
	msgs := []Message{
		{Kind: Note, Text: "informational", Provenance: rules.Provenance{File: "rules.txt", Line: 7}},
	}
	var buf strings.Builder
	require.NoError(t, Render(&buf, msgs))
	assert.Equal(t, "[NOTE] rules.txt:7: informational\n", buf.String())
}

func TestRenderEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, Render(&buf, nil))
	assert.Empty(t, buf.String())
}
