package env

import (
	"os"
	"strings"
	"testing"
)

func findVar(env []string, key string) (string, bool) {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix), true
		}
	}
	return "", false
}

func TestForJobSetsJobIdentity(t *testing.T) {
	e := New()
	out := e.ForJob(JobContext{Name: "backup", ID: "backup-0001", Group: "db", JobsDir: "/var/pcron/jobs"})

	if v, ok := findVar(out, "JOB_NAME"); !ok || v != "backup" {
		t.Fatalf("JOB_NAME = %q, %v", v, ok)
	}
	if v, ok := findVar(out, "JOB_ID"); !ok || v != "backup-0001" {
		t.Fatalf("JOB_ID = %q, %v", v, ok)
	}
	if v, ok := findVar(out, "JOB_GROUP"); !ok || v != "db" {
		t.Fatalf("JOB_GROUP = %q, %v", v, ok)
	}
	if v, ok := findVar(out, "PCRONDIR"); !ok || v != "/var/pcron/jobs" {
		t.Fatalf("PCRONDIR = %q, %v", v, ok)
	}
}

func TestForJobOmitsGroupWhenEmpty(t *testing.T) {
	e := New()
	out := e.ForJob(JobContext{Name: "backup", ID: "backup-0001"})
	if _, ok := findVar(out, "JOB_GROUP"); ok {
		t.Fatalf("did not expect JOB_GROUP when ctx.Group is empty")
	}
}

func TestForJobPathRespectsExistingGlobal(t *testing.T) {
	e := New().WithSet("PATH", "/custom/bin")
	out := e.ForJob(JobContext{Name: "j", ID: "j-0001"})
	v, ok := findVar(out, "PATH")
	if !ok || v != "/custom/bin" {
		t.Fatalf("PATH = %q, %v; want /custom/bin", v, ok)
	}
}

func TestForJobPathPicksPrivilegedOrDefaultByEUID(t *testing.T) {
	e := New().WithUnset("PATH")
	out := e.ForJob(JobContext{Name: "j", ID: "j-0001"})
	v, ok := findVar(out, "PATH")
	if !ok {
		t.Fatalf("expected a PATH to be set")
	}

	want := DefaultPath
	if os.Geteuid() == 0 {
		want = PrivilegedPath
	}
	if v != want {
		t.Fatalf("PATH = %q, want %q (euid=%d)", v, want, os.Geteuid())
	}
}
