package search

import (
	"os/exec"
	"strings"
)

// queryLdconfig asks the host's ldconfig cache for name, preferring an exact
// basename match over a versioned candidate (e.g. asking for libhello.so
// should not settle for libhello.so.2 when an exact match exists), exactly
// as the reference implementation's ldconfig lookup does.
func queryLdconfig(name string) (string, bool) {
	cmd := exec.Command("/sbin/ldconfig", "-p")
	cmd.Env = []string{"LANG=C", "LC_ALL=C"}
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return findInLdconfigOutput(name, string(out))
}

func findInLdconfigOutput(name, output string) (string, bool) {
	var candidates []string
	for _, line := range strings.Split(output, "\n") {
		parts := strings.SplitN(line, "=>", 2)
		if len(parts) < 2 {
			continue
		}
		candidate := strings.TrimSpace(parts[1])
		if strings.Contains(candidate, name) {
			candidates = append(candidates, candidate)
		}
	}

	for _, c := range candidates {
		if baseNameOf(c) == name {
			return c, true
		}
	}
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return "", false
}

func baseNameOf(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
