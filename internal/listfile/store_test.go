package listfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/sender-queue/internal/listfile"
)

func newStore(t *testing.T, content string) *listfile.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return listfile.New(path)
}

func readFile(t *testing.T, s *listfile.Store) string {
	t.Helper()
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	return string(data)
}

func TestStore_Exists(t *testing.T) {
	s := newStore(t, "")

	ok, err := s.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Create())
	ok, err = s.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_CreateKeepsContent(t *testing.T) {
	s := newStore(t, "1,2\n")
	require.NoError(t, s.Create())
	assert.Equal(t, "1,2\n", readFile(t, s))
}

func TestStore_IsEmpty(t *testing.T) {
	s := newStore(t, "")
	require.NoError(t, s.Create())

	empty, err := s.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, s.Append("1,2"))
	empty, err = s.IsEmpty()
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestStore_IsEmpty_MissingFile(t *testing.T) {
	s := newStore(t, "")
	_, err := s.IsEmpty()
	assert.Error(t, err)
}

func TestStore_IsComplete(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty file", "", false},
		{"pending items", "1,2\n3,4\n", false},
		{"sentinel with newline", "complete\n", true},
		{"sentinel without newline", "complete", true},
		{"sentinel with CRLF", "complete\r\n", true},
		{"sentinel after items", "1,2\ncomplete", true},
		{"sentinel as substring", "incomplete\n", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t, "")
			require.NoError(t, os.WriteFile(s.Path(), []byte(tc.content), 0o644))

			got, err := s.IsComplete()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStore_MarkComplete(t *testing.T) {
	s := newStore(t, "")
	require.NoError(t, s.Create())
	require.NoError(t, s.MarkComplete())

	complete, err := s.IsComplete()
	require.NoError(t, err)
	assert.True(t, complete)
	assert.Equal(t, "complete\n", readFile(t, s))
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := newStore(t, "")
	for _, l := range []string{"1,10", "2,20", "3,30"} {
		require.NoError(t, s.Append(l))
	}
	assert.Equal(t, "1,10\n2,20\n3,30\n", readFile(t, s))

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_PopFront(t *testing.T) {
	s := newStore(t, "1,10\n2,20\n3,30\n")

	before, err := s.Len()
	require.NoError(t, err)
	first, ok, err := s.Peek(0)
	require.NoError(t, err)
	require.True(t, ok)

	line, ok, err := s.PopFront()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, line)

	after, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, before-1, after)
	assert.Equal(t, "2,20\n3,30\n", readFile(t, s))
}

func TestStore_PopFront_LastLineLeavesZeroBytes(t *testing.T) {
	s := newStore(t, "1,10\n")

	line, ok, err := s.PopFront()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1,10", line)

	empty, err := s.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestStore_PopFront_EmptyFileUnmodified(t *testing.T) {
	s := newStore(t, "")
	require.NoError(t, s.Create())

	_, ok, err := s.PopFront()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", readFile(t, s))
}

func TestStore_PopFront_MissingFile(t *testing.T) {
	s := newStore(t, "")
	_, _, err := s.PopFront()
	assert.Error(t, err)
}

func TestStore_PeekAndRemoveWithSkip(t *testing.T) {
	s := newStore(t, "1,10\n2,20\n3,30")

	line, ok, err := s.Peek(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2,20", line)

	_, ok, err = s.Peek(3)
	require.NoError(t, err)
	assert.False(t, ok)

	removed, ok, err := s.Remove(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2,20", removed)
	assert.Equal(t, "1,10\n3,30\n", readFile(t, s))

	_, ok, err = s.Remove(5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "1,10\n3,30\n", readFile(t, s))
}

func TestStore_RewriteLeavesNoTempFiles(t *testing.T) {
	s := newStore(t, "1,10\n2,20\n")
	_, _, err := s.PopFront()
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Reset(t *testing.T) {
	s := newStore(t, "complete\n")
	require.NoError(t, s.Reset())

	ok, err := s.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	// removing an absent file is fine
	require.NoError(t, s.Reset())
}
