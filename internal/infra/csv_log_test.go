package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVLog_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "log.csv")
	log := NewCSVLog(path, []string{"A", "B"})

	require.NoError(t, log.Append([][]string{{"1", "x"}}))
	require.NoError(t, log.Append([][]string{{"2", "y, with comma"}}))
	require.NoError(t, log.Append(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,B\n1,x\n2,\"y, with comma\"\n", string(data))
}

func TestCSVLog_AppendToEmptyFileWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, NewCSVLog(path, []string{"A"}).Append([][]string{{"1"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n", string(data))
}

func TestCSVLog_ReadColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	body := "Title,Link\n" +
		"Editor,https://example.com/1\n" +
		",https://example.com/empty\n" +
		"\n" +
		"\"Thumbnail \"\"Pro\"\"\",https://example.com/2\n" +
		"Editor,https://example.com/3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	titles, malformed, err := NewCSVLog(path, nil).ReadColumn(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"Editor":          {},
		`Thumbnail "Pro"`: {},
	}, titles)
	require.Len(t, malformed, 1)
	assert.Equal(t, 3, malformed[0].Line)

	links, _, err := NewCSVLog(path, nil).ReadColumn(1)
	require.NoError(t, err)
	assert.Len(t, links, 4)
	assert.NotContains(t, links, "Link")
}

func TestCSVLog_ReadColumnMissingFile(t *testing.T) {
	values, malformed, err := NewCSVLog(filepath.Join(t.TempDir(), "none.csv"), nil).ReadColumn(0)
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Empty(t, malformed)
}
