package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// minimumFreeBytes is the free-space floor for the work directory. WhisperX
// and the normalized WAVs need room for intermediate files.
const minimumFreeBytes = 2 << 30 // 2 GiB

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has at least minBytes free.
func CheckDiskSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, %.1f GiB required)",
			path, float64(free)/(1<<30), float64(minBytes)/(1<<30))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30))}
}

// CheckHFToken verifies a Hugging Face token is present for the gated
// pyannote models. Tokens are not validated against the API here; the
// diarizer reports auth failures at run time.
func CheckHFToken(token string) Result {
	const name = "Hugging Face token"
	token = strings.TrimSpace(token)
	if token == "" {
		return Result{Name: name, Detail: "missing (set hf_token or the HF_TOKEN env var)"}
	}
	if !strings.HasPrefix(token, "hf_") {
		return Result{Name: name, Passed: true, Detail: "present (unrecognized format)"}
	}
	return Result{Name: name, Passed: true, Detail: "present"}
}
