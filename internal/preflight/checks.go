package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"renderrob/internal/config"
	"renderrob/internal/fileutil"
	"renderrob/internal/job"
	"renderrob/internal/services/blender"
)

// CheckExecutable verifies that command resolves to a file the current user
// may execute.
func CheckExecutable(name, command string) Result {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", cmd)}
	}
	if err := unix.Access(resolved, unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not executable: %v)", resolved, err)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckSettingsModule reports whether the in-Blender settings module is
// present. A missing module is advisory: every job would fail inside
// Blender, which the controller reports per job.
func CheckSettingsModule(dir string) Result {
	const name = "Settings module"
	if strings.TrimSpace(dir) == "" {
		return Result{Name: name, Advisory: true, Detail: "settings_module_dir not configured"}
	}
	path := filepath.Join(dir, blender.SettingsModule+".py")
	ok, err := fileutil.IsFile(path)
	switch {
	case err != nil:
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	case !ok:
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckJobs validates each active job's frame range and source file, then
// reports duplicate jobs. Inactive jobs are not checked.
func CheckJobs(cfg *config.Config, records []job.Record) []Result {
	var blendDir string
	if cfg != nil {
		blendDir = cfg.Paths.BlendFilesDir
	}

	var results []Result
	for i, rec := range records {
		if !rec.Active {
			continue
		}
		name := fmt.Sprintf("Job %d (%s)", i+1, rec.Label())
		if _, err := rec.Classify(); err != nil {
			results = append(results, Result{Name: name, Detail: err.Error()})
			continue
		}
		src := rec.ResolveSourcePath(blendDir)
		ok, err := fileutil.IsFile(src)
		switch {
		case err != nil:
			results = append(results, Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", src, err)})
		case !ok:
			results = append(results, Result{Name: name, Detail: fmt.Sprintf("%s (error: source file missing)", src)})
		default:
			results = append(results, Result{Name: name, Passed: true, Detail: src})
		}
	}
	return append(results, CheckDuplicates(records)...)
}

// CheckDuplicates reports jobs that share an identity key. Duplicates render
// identical output and share one status color, so they are advisory only.
func CheckDuplicates(records []job.Record) []Result {
	dupes := job.Duplicates(records)
	groups := make([][]int, 0, len(dupes))
	for _, idx := range dupes {
		groups = append(groups, idx)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	results := make([]Result, 0, len(groups))
	for _, idx := range groups {
		labels := make([]string, len(idx))
		for i, n := range idx {
			labels[i] = strconv.Itoa(n + 1)
		}
		results = append(results, Result{
			Name:     "Duplicate jobs",
			Advisory: true,
			Detail:   fmt.Sprintf("jobs %s are identical (%s)", strings.Join(labels, ", "), records[idx[0]].Label()),
		})
	}
	return results
}
