package profile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Schema:      SchemaVersion,
		ToolVersion: "release 6.4.0",
		Cores:       4,
		Timeline: Timeline{
			Samples: []Sample{
				{At: 0, Running: []string{"a", "b", "c", "d"}},
				{At: 1000, Running: []string{"a"}},
			},
			End: 5000,
		},
		Phases: []PhaseMarker{
			{Phase: "LAUNCH", Start: 0, End: 100},
			{Phase: "EXECUTE", Start: 100, End: 5000},
		},
		Flags: map[string]bool{"skymeld-used": false},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"snap.json", "snap.msgpack", "snap.mp"} {
		path := filepath.Join(dir, name)
		want := sampleSnapshot()
		if err := Save(path, want); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "snap.yaml")); err == nil {
		t.Fatal("expected error for .yaml snapshot")
	}
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	in := `{"schema": 9, "cores": 2, "timeline": {"samples": [], "end": 0}}`
	_, err := Decode(strings.NewReader(in), EncodingJSON)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
	if se.Got != 9 || se.Want != SchemaVersion {
		t.Fatalf("schema error = %+v", se)
	}
}

func TestDecodeRejectsUnknownJSONField(t *testing.T) {
	in := `{"schema": 1, "bogus": true}`
	if _, err := Decode(strings.NewReader(in), EncodingJSON); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		want   string
	}{
		{"ok", func(*Snapshot) {}, ""},
		{"sample past end", func(s *Snapshot) { s.Timeline.End = 10 }, "past the timeline end"},
		{"negative sample", func(s *Snapshot) { s.Timeline.Samples[0].At = -1 }, "negative timestamp"},
		{"inverted phase", func(s *Snapshot) { s.Phases[0].End = -5 }, "before it starts"},
		{"duplicate phase", func(s *Snapshot) { s.Phases[1].Phase = "LAUNCH" }, "recorded twice"},
		{"unnamed phase", func(s *Snapshot) { s.Phases[0].Phase = "" }, "without a name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSnapshot()
			tt.mutate(s)
			err := s.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestEncodeStampsSchema(t *testing.T) {
	s := sampleSnapshot()
	s.Schema = 0
	var buf bytes.Buffer
	if err := Encode(&buf, s, EncodingMsgpack); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf, EncodingMsgpack)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Schema != SchemaVersion {
		t.Fatalf("schema = %d, want %d", got.Schema, SchemaVersion)
	}
	if s.Schema != 0 {
		t.Fatalf("Encode mutated its input")
	}
}

func TestTimestampArithmetic(t *testing.T) {
	if got := Timestamp(2500).Sub(500); got != 2*time.Millisecond {
		t.Fatalf("Sub = %v", got)
	}
	if got := FormatDuration(1500 * time.Millisecond); got != "1.5s" {
		t.Fatalf("FormatDuration = %q", got)
	}
	if got := FormatDuration(250 * time.Microsecond); got != "250µs" {
		t.Fatalf("FormatDuration = %q", got)
	}
}
