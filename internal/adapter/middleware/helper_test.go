package middleware

import (
	"strings"
	"testing"
	"time"
)

func Test_buildKey(t *testing.T) {
	got := buildKey("POST", "/loans/:loan_id/payments", testActor, "req-1")
	if !strings.HasPrefix(got, "idemp:coop:post:") {
		t.Fatalf("key = %q", got)
	}
	if !strings.Contains(got, testActor) || !strings.HasSuffix(got, ":req-1") {
		t.Fatalf("key = %q", got)
	}
}

func Test_validReqID(t *testing.T) {
	cases := []struct {
		id string
		ok bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"5f0c3a87-3de1-4f0f-93f7-7dfc0ea4d6a1", true},
		{"5F0C3A87-3DE1-4F0F-93F7-7DFC0EA4D6A1", true}, // normalized to lowercase
		{"", false},
		{"short", false},
		{"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", false},
	}
	for _, tc := range cases {
		if got := validReqID(tc.id); got != tc.ok {
			t.Fatalf("validReqID(%q) = %v, want %v", tc.id, got, tc.ok)
		}
	}
}

func Test_parseRequestAt(t *testing.T) {
	if _, err := parseRequestAt(""); err == nil {
		t.Fatal("empty must fail")
	}
	if _, err := parseRequestAt("2025-09-05T10:00:00"); err == nil {
		t.Fatal("naive timestamp must fail")
	}

	want := time.Date(2025, 9, 5, 9, 0, 0, 0, time.UTC)
	got, err := parseRequestAt("2025-09-05T10:00:00+01:00")
	if err != nil {
		t.Fatalf("rfc3339 with zone: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, err = parseRequestAt("1757062800")
	if err != nil {
		t.Fatalf("epoch seconds: %v", err)
	}
	if got.Year() != 2025 {
		t.Fatalf("epoch seconds parsed to %v", got)
	}

	got, err = parseRequestAt("1757062800000")
	if err != nil {
		t.Fatalf("epoch millis: %v", err)
	}
	if got.Year() != 2025 {
		t.Fatalf("epoch millis parsed to %v", got)
	}
}
