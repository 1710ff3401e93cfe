package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/version"
)

func TestDumpYAMLIncludesPopulatedMetadata(t *testing.T) {
	v, err := version.Parse("1.2.3")
	require.NoError(t, err)

	inv := plugin.NewInventory([]plugin.Record{
		plugin.NewRecord("A.esp", plugin.Metadata{
			Author: "Alice", HasAuthor: true,
			Description: "First mod", HasDescription: true,
			Version: v, HasVersion: true,
			Size: 1024, HasSize: true,
		}),
		plugin.NewRecord("B.esp", plugin.Metadata{}),
	})

	data, err := DumpYAML(inv)
	require.NoError(t, err)

	var doc struct {
		Plugins []dumpEntry `yaml:"plugins"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Plugins, 2)

	assert.Equal(t, "A.esp", doc.Plugins[0].ID)
	assert.Equal(t, "Alice", doc.Plugins[0].Author)
	assert.Equal(t, "First mod", doc.Plugins[0].Description)
	assert.Equal(t, "1.2.3", doc.Plugins[0].Version)
	assert.Equal(t, int64(1024), doc.Plugins[0].Size)

	assert.Equal(t, "B.esp", doc.Plugins[1].ID)
	assert.Empty(t, doc.Plugins[1].Author)
	assert.Empty(t, doc.Plugins[1].Description)
	assert.Empty(t, doc.Plugins[1].Version)
	assert.Zero(t, doc.Plugins[1].Size)
}

func TestDumpYAMLEmptyInventory(t *testing.T) {
	data, err := DumpYAML(plugin.NewInventory(nil))
	require.NoError(t, err)

	var doc struct {
		Plugins []dumpEntry `yaml:"plugins"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Empty(t, doc.Plugins)
}
