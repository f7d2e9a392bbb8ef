package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"

	actx "go.hackfix.me/automigrate/app/context"
	"go.hackfix.me/automigrate/db"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	fs             vfs.FileSystem
	db             *db.DB
	stdout, stderr *bytes.Buffer
	env            *mockEnv
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// A unique name per app, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(context.Background(),
		fmt.Sprintf("file:automigrate-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	var (
		fs             = memoryfs.New()
		stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
		env            = &mockEnv{env: map[string]string{}}
	)
	opts := []Option{
		WithTimeNow(timeNowFn),
		WithEnv(env),
		WithDB(d),
		WithFDs(strings.NewReader(""), stdout, stderr),
		WithFS(fs),
		WithLogger(false, false),
	}
	app, err := New("automigrate", "/config.json", opts...)
	require.NoError(t, err)

	return &testApp{
		App: app, fs: fs, db: d,
		stdout: stdout, stderr: stderr, env: env,
	}
}

// Run executes a single command, capturing fresh stdout/stderr output.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()

	return ta.App.Run(args)
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}
