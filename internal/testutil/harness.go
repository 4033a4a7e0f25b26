package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/designergo/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a compile-pipeline test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Result    *app.Result
}

// RunCompileTest writes the given declaration files into a temporary
// directory and runs the full pipeline over it with debug logging captured.
func RunCompileTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunCompileTestWithContext(context.Background(), t, files)
}

// RunCompileTestWithContext is RunCompileTest with a caller-provided context.
func RunCompileTestWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	logBuffer := &SafeBuffer{}
	config, err := app.NewConfig(app.Config{
		Paths:     []string{tmpDir},
		LogLevel:  "debug",
		LogFormat: "text",
	})
	require.NoError(t, err)

	compiler := app.NewApp(logBuffer, config)
	result, runErr := compiler.Run(ctx)

	if os.Getenv("DESIGNERGO_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		Result:    result,
	}
}
