package search

import (
	"os/exec"
	"strings"
)

// queryLdd is the last-resort ELF search step: it shells out to ldd against
// the dependent object itself and reads off the path it resolved name to.
// Addressless or "not found" entries are rejected, matching the reference
// implementation's ldd parser (and its unit tests).
func queryLdd(name, objectPath string) (string, bool) {
	cmd := exec.Command("ldd", objectPath)
	cmd.Env = []string{"LANG=C", "LC_ALL=C"}
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	path, ok := findInLddOutput(name, string(out))
	if !ok {
		return "", false
	}
	if !pathExists(path) {
		return "", false
	}
	return path, true
}

// findInLddOutput parses ldd's "name => path (0xADDR)" lines. Example
// output:
//
//	linux-vdso.so.1 (0x00007ffeb3bc5000)
//	libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f777bbcb000)
//	libfoo.so => not found
func findInLddOutput(name, output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "=>") {
			continue
		}
		parts := strings.SplitN(strings.TrimSpace(line), "=>", 2)
		if len(parts) != 2 {
			continue
		}
		lhs := strings.TrimSpace(parts[0])
		if lhs != name {
			continue
		}
		if path, ok := parseLddEntryValue(strings.TrimSpace(parts[1])); ok {
			return path, true
		}
	}
	return "", false
}

func parseLddEntryValue(value string) (string, bool) {
	if value == "not found" {
		return "", false
	}
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return "", false
	}
	if !strings.HasPrefix(fields[1], "(0x") {
		return "", false
	}
	return fields[0], true
}
