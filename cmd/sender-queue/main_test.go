package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/sender-queue/internal/domain"
	"github.com/ricirt/sender-queue/internal/listfile"
)

// writeTestConfig points the database at a port nothing listens on.
func writeTestConfig(t *testing.T) (cfgPath, listPath string) {
	t.Helper()
	dir := t.TempDir()
	listPath = filepath.Join(dir, "list.txt")
	cfgPath = filepath.Join(dir, "config.ini")

	content := fmt.Sprintf(`[DB_PARAM]
user = loader
password = secret
host = 127.0.0.1
port = 1
sid = dtp

[DATA_PARAM]
start_date = 2024-01-01
end_date = 2024-01-31
tester_type = J750
data_type = WS

[SENDER_PARAM]
sender_id = 17
list_file = %s

[LOG]
log_file = %s
`, listPath, filepath.Join(dir, "sender-queue.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath, listPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRun_CompleteListNeedsNoDatabase(t *testing.T) {
	cfgPath, listPath := writeTestConfig(t)
	require.NoError(t, os.WriteFile(listPath, []byte("complete\n"), 0o644))

	_, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(listPath)
	require.NoError(t, err)
	assert.Equal(t, "complete\n", string(data))
}

func TestRun_UnreachableDatabaseWithoutList(t *testing.T) {
	cfgPath, listPath := writeTestConfig(t)

	_, err := execute(t, "--config", cfgPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrListNotGenerated))

	_, statErr := os.Stat(listPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_UnreachableDatabaseWithPendingList(t *testing.T) {
	cfgPath, listPath := writeTestConfig(t)
	require.NoError(t, os.WriteFile(listPath, []byte("1,10\n"), 0o644))

	_, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(listPath)
	require.NoError(t, err)
	assert.Equal(t, "1,10\n", string(data))
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)
}

func TestReset(t *testing.T) {
	cfgPath, listPath := writeTestConfig(t)
	require.NoError(t, os.WriteFile(listPath, []byte("complete\n"), 0o644))

	out, err := execute(t, "reset", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	_, statErr := os.Stat(listPath)
	assert.True(t, os.IsNotExist(statErr))

	// a second reset is a no-op
	_, err = execute(t, "reset", "--config", cfgPath)
	require.NoError(t, err)
}

func TestStatus(t *testing.T) {
	cfgPath, listPath := writeTestConfig(t)
	require.NoError(t, os.WriteFile(listPath, []byte("1,10\n2,20\n"), 0o644))

	out, err := execute(t, "status", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 pending")
	assert.Contains(t, out, "queue depth: unavailable")
}

func TestDescribeList(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    string
	}{
		{"missing", nil, "missing (next run queries the metadata view)"},
		{"empty", ptr(""), "empty (next run sends the notification)"},
		{"pending", ptr("1,10\n2,20\n3,30\n"), "3 pending"},
		{"complete", ptr("complete\n"), "complete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "list.txt")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}
			got, err := describeList(listfile.New(path))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr(s string) *string { return &s }
