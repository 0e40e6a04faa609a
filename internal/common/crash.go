// -----------------------------------------------------------------------
// Crash Protection - panic recovery and crash file generation
// -----------------------------------------------------------------------

package common

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// CrashDirName is the crash report directory inside the config directory
const CrashDirName = "crash"

// WriteCrashFile writes a crash report into dir and returns its path.
// If the file cannot be written the report goes to stderr and "" is returned.
func WriteCrashFile(dir string, panicVal interface{}, stackTrace string) string {
	var report bytes.Buffer
	report.WriteString("=== FYDE CRASH REPORT ===\n")
	fmt.Fprintf(&report, "Time: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&report, "Version: %s\n", GetFullVersion())
	fmt.Fprintf(&report, "GOOS/GOARCH: %s/%s\n\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&report, "=== PANIC VALUE ===\n%v\n\n", panicVal)
	fmt.Fprintf(&report, "=== STACK TRACE ===\n%s\n", stackTrace)
	report.WriteString("=== END CRASH REPORT ===\n")

	crashPath := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().UTC().Format("2006-01-02T15-04-05")))

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to create crash directory: %v\n%s", err, report.String())
		return ""
	}
	if err := os.WriteFile(crashPath, report.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: Failed to write crash file: %v\n%s", err, report.String())
		return ""
	}

	fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - Report saved to: %s !!!\n", crashPath)
	fmt.Fprintf(os.Stderr, "Panic: %v\n", panicVal)
	return crashPath
}

// GetStackTrace returns the current goroutine's stack trace
func GetStackTrace() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// RecoverWithCrashFile is a helper for deferred panic recovery in main.
// Usage: defer common.RecoverWithCrashFile()
func RecoverWithCrashFile() {
	if r := recover(); r != nil {
		dir := filepath.Join(os.TempDir(), AppName, CrashDirName)
		if configDir, err := ConfigDir(); err == nil {
			dir = filepath.Join(configDir, CrashDirName)
		}
		WriteCrashFile(dir, r, GetStackTrace())
		os.Exit(1)
	}
}
