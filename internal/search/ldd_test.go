package search

import "testing"

func TestFindInLddOutputFound(t *testing.T) {
	output := `
		linux-vdso.so.1 (0x00007ffd2b7fe000)
		libpthread.so.0 => /lib/x86_64-linux-gnu/libpthread.so.0 (0x00007f777c1ab000)
		libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f777bbcb000)
		/lib64/ld-linux-x86-64.so.2 (0x00007f777c6f8000)
	`
	got, ok := findInLddOutput("libc.so.6", output)
	if !ok || got != "/lib/x86_64-linux-gnu/libc.so.6" {
		t.Fatalf("findInLddOutput() = (%q, %v), want (%q, true)", got, ok, "/lib/x86_64-linux-gnu/libc.so.6")
	}
}

func TestFindInLddOutputNotFound(t *testing.T) {
	output := `
		libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f777bbcb000)
	`
	if _, ok := findInLddOutput("libdoesnotexist.so", output); ok {
		t.Fatal("expected no match for an absent library")
	}
}

func TestFindInLddOutputNotFoundString(t *testing.T) {
	output := `
		libnotfound.so => not found
		libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f777bbcb000)
	`
	if _, ok := findInLddOutput("libnotfound.so", output); ok {
		t.Fatal("expected \"not found\" entries to be rejected")
	}
}

func TestFindInLddOutputHexOnlyRejected(t *testing.T) {
	output := `
		libnotfound.so => (0x00007f777bbcb000)
		libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f777bbcb000)
	`
	if _, ok := findInLddOutput("libnotfound.so", output); ok {
		t.Fatal("expected addressless hex-only entries to be rejected")
	}
}
