package env

import (
	"strings"
	"testing"
)

// FuzzMergeJobEnv fuzzes Merge against random environment.sh-style
// globals and per-job overrides (the shape ForJob actually produces:
// JOB_NAME/JOB_ID/PCRONDIR alongside arbitrary ${VAR} expansions) to
// ensure no panics and that expansion never leaves the composed
// environment malformed.
func FuzzMergeJobEnv(f *testing.F) {
	f.Add([]byte("MAILTO=ops\nDATADIR=${MAILTO}-data"), []byte("JOB_NAME=backup\nJOB_ID=${JOB_NAME}-0001"))
	f.Add([]byte("FOO=bar"), []byte("FOO=${FOO}"))
	f.Add([]byte("X=$Y"), []byte("Y=${X}")) // cyclic-like

	f.Fuzz(func(t *testing.T, globalsRaw []byte, perJobRaw []byte) {
		globals := splitAssignments(string(globalsRaw))
		perJob := splitAssignments(string(perJobRaw))
		if len(globals) > 20 {
			globals = globals[:20]
		}
		if len(perJob) > 20 {
			perJob = perJob[:20]
		}

		e := New()
		for _, kv := range globals {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				e = e.WithSet(kv[:i], kv[i+1:])
			}
		}
		out := e.Merge(perJob)

		for _, kv := range out {
			if !strings.Contains(kv, "=") {
				t.Fatalf("bad pair: %q", kv)
			}
			if strings.HasPrefix(kv, "=") {
				t.Fatalf("empty key: %q", kv)
			}
		}

		containsDollar := false
		for _, s := range append(append([]string{}, globals...), perJob...) {
			if strings.ContainsRune(s, '$') {
				containsDollar = true
				break
			}
		}
		if !containsDollar {
			for _, kv := range out {
				if strings.Contains(kv, "${") {
					t.Fatalf("unexpected placeholder remains: %q", kv)
				}
			}
		}
	})
}

// splitAssignments splits a newline-separated block of KEY=VALUE pairs
// (the shape environment.sh lines and ForJob's per-job overrides both
// take) into non-empty trimmed entries.
func splitAssignments(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
