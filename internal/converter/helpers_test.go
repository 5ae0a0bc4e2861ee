package converter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeTool создаёт shell-скрипт, имитирующий внешнюю утилиту.
// В скрипте доступна переменная $last - последний аргумент (выходной файл).
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-скрипты не поддерживаются на Windows")
	}

	path := filepath.Join(t.TempDir(), "tool.sh")
	script := "#!/bin/sh\nfor last; do :; done\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
