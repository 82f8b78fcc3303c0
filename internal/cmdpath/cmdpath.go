// Package cmdpath resolves which cursor-agent executables to try and with
// what search path. GUI hosts are typically launched without an interactive
// shell's PATH, so the conventional user-level binary directories have to be
// prepended explicitly or a perfectly good install goes undetected.
package cmdpath

import (
	"os"
	"path/filepath"
	"strings"
)

// BaseCommand is the bare name of the Cursor Agent CLI binary.
const BaseCommand = "cursor-agent"

// Candidates returns the ordered list of executable names to attempt.
//
// An explicitly configured path is authoritative: it is the only candidate
// and no platform guessing happens. Otherwise Windows installs ship the CLI
// as a shim script, so the script extensions are tried before the bare name.
func Candidates(explicit, goos string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	if goos == "windows" {
		return []string{
			BaseCommand + ".cmd",
			BaseCommand + ".exe",
			BaseCommand + ".bat",
			BaseCommand,
		}
	}
	return []string{BaseCommand}
}

// extraBinDirs returns the user/local binary directories conventionally used
// by CLI installers on the given platform, in lookup-priority order.
func extraBinDirs(goos, home string) []string {
	if goos == "windows" {
		if home == "" {
			return nil
		}
		return []string{
			filepath.Join(home, "AppData", "Local", "Programs", "cursor-agent"),
			filepath.Join(home, ".local", "bin"),
		}
	}

	var dirs []string
	if home != "" {
		dirs = append(dirs,
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, "bin"),
		)
	}
	dirs = append(dirs, "/usr/local/bin")
	if goos == "darwin" {
		dirs = append(dirs, "/opt/homebrew/bin")
	}
	return dirs
}

// AugmentedEnv returns a copy of environ with the PATH variable replaced by
// the de-duplicated union of the platform's conventional binary directories
// and the existing PATH entries. Original order is preserved; the first
// occurrence of a directory wins.
func AugmentedEnv(environ []string, goos, home string) []string {
	sep := ":"
	pathKey := "PATH"
	if goos == "windows" {
		sep = ";"
		pathKey = "Path"
	}

	existing := ""
	for _, kv := range environ {
		if k, v, ok := splitEnv(kv); ok && strings.EqualFold(k, pathKey) {
			existing = v
			break
		}
	}

	entries := append(extraBinDirs(goos, home), splitList(existing, sep)...)
	seen := make(map[string]struct{}, len(entries))
	merged := entries[:0]
	for _, dir := range entries {
		if dir == "" {
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		merged = append(merged, dir)
	}

	out := make([]string, 0, len(environ)+1)
	replaced := false
	for _, kv := range environ {
		if k, _, ok := splitEnv(kv); ok && strings.EqualFold(k, pathKey) {
			out = append(out, k+"="+strings.Join(merged, sep))
			replaced = true
			continue
		}
		out = append(out, kv)
	}
	if !replaced {
		out = append(out, pathKey+"="+strings.Join(merged, sep))
	}
	return out
}

// HostEnv is the AugmentedEnv of the current process.
func HostEnv(goos string) []string {
	home, _ := os.UserHomeDir()
	return AugmentedEnv(os.Environ(), goos, home)
}

// splitList splits a PATH-style value on the platform separator. Unlike
// filepath.SplitList this takes the separator explicitly, since the target
// platform is a parameter rather than the build platform.
func splitList(value, sep string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, sep)
}

func splitEnv(kv string) (key, value string, ok bool) {
	i := strings.IndexByte(kv, '=')
	if i < 0 {
		return "", "", false
	}
	return kv[:i], kv[i+1:], true
}
