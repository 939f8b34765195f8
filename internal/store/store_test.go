package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inputlogger/internal/core/inputlog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestBeginAndEndSession(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 9, 18, 4, 5, 0, time.UTC)

	id, err := st.BeginSession(ctx, inputlog.SessionInfo{Name: "Zote", Boss: "False Knight", StartedAt: started}, inputlog.ModeKeyboard, "output.txt")
	require.NoError(t, err)

	open, err := st.GetSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, open.Finished())
	assert.Equal(t, time.Duration(0), open.Duration())

	require.NoError(t, st.EndSession(ctx, id, started.Add(90*time.Second), 900))

	done, err := st.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Zote", done.Name)
	assert.Equal(t, "False Knight", done.Boss)
	assert.Equal(t, inputlog.ModeKeyboard, done.Mode)
	assert.Equal(t, "output.txt", done.Output)
	assert.Equal(t, 900, done.Lines)
	assert.True(t, done.StartedAt.Equal(started))
	assert.Equal(t, 90*time.Second, done.Duration())
}

func TestEndUnknownSession(t *testing.T) {
	st := openTestStore(t)
	err := st.EndSession(context.Background(), 42, time.Now(), 1)
	require.Error(t, err)
}

func TestGetUnknownSession(t *testing.T) {
	st := openTestStore(t)
	_, err := st.GetSession(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListSessionsNewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)

	for i, boss := range []string{"Hornet", "Mantis Lords", "Soul Master"} {
		_, err := st.BeginSession(ctx, inputlog.SessionInfo{Name: "run", Boss: boss, StartedAt: base.Add(time.Duration(i) * time.Hour)}, inputlog.ModeController, "out.txt")
		require.NoError(t, err)
	}

	all, err := st.ListSessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Soul Master", all[0].Boss)
	assert.Equal(t, "Hornet", all[2].Boss)

	last, err := st.ListSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "Mantis Lords", last[1].Boss)
}

func TestStoreSatisfiesRecorder(t *testing.T) {
	var _ inputlog.SessionRecorder = (*Store)(nil)
}
