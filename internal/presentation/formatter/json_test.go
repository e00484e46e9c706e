package formatter

import (
	"bytes"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatterFormat(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(&buf).Format(sampleRows()))

	var rows []map[string]interface{}
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-05-04", rows[0]["key"])
	assert.Equal(t, 7500.0, rows[0]["durationSeconds"])
	assert.Equal(t, 2400.0, rows[0]["circlingSeconds"])
	assert.Equal(t, 1.5, rows[0]["averageClimbRate"])
	assert.Equal(t, 0.0, rows[1]["averageClimbRate"])
	assert.Contains(t, buf.String(), "\n  {", "output is indented")
}

func TestJSONFormatterEmpty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(&buf).Format(nil))

	assert.Equal(t, "[]\n", buf.String())
}
