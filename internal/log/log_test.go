package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesFormattedEntry(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	Warn(CatRecipe, "duplicate key detected", "key", "bowl")

	out := buf.String()
	require.Contains(t, out, "[WARN] [recipe] duplicate key detected key=bowl")
	require.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestLog_RespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelWarn)
	t.Cleanup(Reset)

	Debug(CatCache, "cache hit", "key", "mix")
	Info(CatCache, "cache set", "key", "mix")
	require.Empty(t, buf.String())

	Error(CatCache, "boom")
	require.Contains(t, buf.String(), "[ERROR] [cache] boom")
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	Info(CatCLI, "msg", "a", 1, "orphan")
	require.Contains(t, buf.String(), "a=1 orphan=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	ErrorErr(CatStore, "save failed", errors.New("disk full"), "id", "pancakes")
	require.Contains(t, buf.String(), "id=pancakes error=disk full")

	buf.Reset()
	ErrorErr(CatStore, "save failed", nil)
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestLog_Disabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	SetEnabled(false)
	Error(CatRecipe, "hidden")
	require.Empty(t, buf.String())

	SetEnabled(true)
	SetMinLevel(LevelError)
	Warn(CatRecipe, "still hidden")
	require.Empty(t, buf.String())
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	Reset()
	require.NotPanics(t, func() {
		Info(CatRecipe, "nobody listening")
	})
}

func TestLog_ConcurrentWithReinit(t *testing.T) {
	t.Cleanup(Reset)

	const writers = 8
	bufs := make([]bytes.Buffer, writers)

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 50 {
				Info(CatTechnique, "rendering", "writer", i)
			}
		}()
		go func() {
			defer wg.Done()
			InitWriter(&bufs[i], LevelDebug)
			SetMinLevel(LevelInfo)
		}()
	}
	wg.Wait()

	Reset()
	Info(CatTechnique, "after reset")
	for i := range bufs {
		require.NotContains(t, bufs[i].String(), "after reset")
	}
}

func TestInit_CleanupDetachesLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)
	t.Cleanup(Reset)

	Info(CatCLI, "first")
	cleanup()
	Info(CatCLI, "second")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "first")
	require.NotContains(t, string(data), "second")
	require.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarn, ParseLevel(" WARN "))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel("verbose"))
	require.Equal(t, "UNKNOWN", Level(42).String())
}
