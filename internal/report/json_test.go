package report

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSONFile(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestMarshalJSONReport(t *testing.T) {
	data, err := MarshalJSONReport(sampleReport())
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	meta := doc["scanMetadata"].(map[string]interface{})
	assert.Equal(t, "scan-1", meta["id"])
	assert.Equal(t, "scripts/", meta["target"])
	assert.Equal(t, "1.0.0", meta["toolVersion"])
	assert.Equal(t, float64(2000), meta["durationMs"])
	assert.Equal(t, false, meta["partial"])

	summary := doc["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["critical"])
	assert.Equal(t, float64(1), summary["high"])
	assert.Equal(t, float64(1), summary["medium"])
	assert.Equal(t, float64(3), summary["total"])

	all := doc["allFindings"].([]interface{})
	require.Len(t, all, 3)
	first := all[0].(map[string]interface{})
	assert.Equal(t, "SG001", first["ruleId"])
	assert.Equal(t, "critical", first["severity"])
	assert.Equal(t, "deploy.ps1", first["filePath"])
}

func TestWriteJSONFile(t *testing.T) {
	path := t.TempDir() + "/security-report.json"
	require.NoError(t, WriteJSONFile(sampleReport(), path))

	doc := readJSONFile(t, path)
	assert.Contains(t, doc, "scanMetadata")
	assert.Contains(t, doc, "summary")
	assert.Contains(t, doc, "allFindings")
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"console", "json", "sarif", "all"} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), got)
	}

	_, err := ParseFormat("html")
	assert.Error(t, err)
}
