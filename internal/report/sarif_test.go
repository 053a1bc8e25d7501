package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptguard/scriptguard/internal/findings"
)

func sampleReport() *findings.ScanReport {
	r := findings.NewReport("scan-1", "scripts/", "1.0.0", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	r.Add(
		findings.New("SG001", findings.SeverityCritical, "deploy.ps1", 3, 13, "hardcoded secret", "use a vault"),
		findings.New("SG004", findings.SeverityHigh, "deploy.ps1", 10, 8, "malformed identifier", ""),
		findings.New("SG002", findings.SeverityMedium, "setup.ps1", 7, 1, "secure value from literal", ""),
	)
	r.Finalize(2 * time.Second)
	return r
}

func TestBuildSARIFOneResultPerFinding(t *testing.T) {
	doc, err := BuildSARIF(sampleReport())
	require.NoError(t, err)

	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	require.NotNil(t, run.Tool.Driver)
	assert.Equal(t, "scriptguard", run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.Version)
	assert.Equal(t, "1.0.0", *run.Tool.Driver.Version)

	require.Len(t, run.Results, 3)
}

func TestBuildSARIFLevelMapping(t *testing.T) {
	doc, err := BuildSARIF(sampleReport())
	require.NoError(t, err)

	levels := map[string]string{}
	for _, res := range doc.Runs[0].Results {
		require.NotNil(t, res.RuleID)
		require.NotNil(t, res.Level)
		levels[*res.RuleID] = *res.Level
	}
	assert.Equal(t, "error", levels["SG001"])
	assert.Equal(t, "warning", levels["SG004"])
	assert.Equal(t, "note", levels["SG002"])
}

func TestBuildSARIFLocations(t *testing.T) {
	doc, err := BuildSARIF(sampleReport())
	require.NoError(t, err)

	res := doc.Runs[0].Results[0]
	require.Len(t, res.Locations, 1)
	loc := res.Locations[0].PhysicalLocation
	require.NotNil(t, loc)
	require.NotNil(t, loc.ArtifactLocation)
	assert.Equal(t, "deploy.ps1", *loc.ArtifactLocation.URI)
	require.NotNil(t, loc.Region)
	assert.Equal(t, 3, *loc.Region.StartLine)
	assert.Equal(t, 13, *loc.Region.StartColumn)
}

func TestWriteSARIFFileIsSchemaShaped(t *testing.T) {
	path := t.TempDir() + "/security-report.sarif"
	require.NoError(t, WriteSARIFFile(sampleReport(), path))

	doc := readJSONFile(t, path)
	assert.Contains(t, doc["$schema"], "sarif")
	assert.Equal(t, "2.1.0", doc["version"])

	runs, ok := doc["runs"].([]interface{})
	require.True(t, ok)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]interface{})
	driver := run["tool"].(map[string]interface{})["driver"].(map[string]interface{})
	assert.Equal(t, "scriptguard", driver["name"])
	results := run["results"].([]interface{})
	assert.Len(t, results, 3)
}
