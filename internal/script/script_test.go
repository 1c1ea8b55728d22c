package script

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleRequest() Request {
	return Request{
		Info: Info{
			ESPName:        "Tapes.esp",
			TVRecord:       "0001A2B3",
			PRRecord:       "0001A2B4",
			DriveInESPName: "Tapes - DriveIn.esp",
		},
		ModID:   "XXXXXTapes",
		ModName: "Tapes",
		Videos: []Video{
			{ID: "XXXXXXXIntro", Name: "Intro", AudioFile: "XXXXXXXIntro.xwm", DriveIn: true},
			{ID: "XXXXXXXXLong", Name: "Bob's Long Cut", AudioFile: "XXXXXXXXLong.wav", DriveIn: false},
		},
	}
}

func TestRenderIncludesHandlers(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleRequest()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"SameText(GetFileName(FileByIndex(i)), 'Tapes.esp')",
		"modId := 'XXXXXTapes';",
		"HandleVideo('XXXXXXXIntro', 'Intro', 'XXXXXXXIntro.xwm');",
		"HandleVideo('XXXXXXXXLong', 'Bob''s Long Cut', 'XXXXXXXXLong.wav');",
		"HandleDIVideo('XXXXXXXIntro', 'Intro', 'XXXXXXXIntro.xwm');",
		"CopyRecordByFormID(TargetPlugin, '0001A2B3')",
		"if True then begin",
		`'Videos\Television\'+modId+'\'+videoId+'.nif'`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("script missing %q", want)
		}
	}
	if strings.Contains(out, "HandleDIVideo('XXXXXXXXLong'") {
		t.Fatal("video without drive-in mesh should not get a drive-in handler")
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "end.") {
		t.Fatal("script should end with 'end.'")
	}
}

func TestRenderWithoutDriveIn(t *testing.T) {
	req := sampleRequest()
	req.Info.DriveInESPName = ""
	var buf bytes.Buffer
	if err := Render(&buf, req); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "if False then begin") {
		t.Fatal("drive-in processing should be disabled")
	}
	if strings.Contains(out, "HandleDIVideo('") {
		t.Fatal("no drive-in handlers expected")
	}
}

func TestInfoValidate(t *testing.T) {
	cases := []struct {
		name string
		info Info
		ok   bool
	}{
		{name: "valid", info: Info{ESPName: "a.esp", TVRecord: "ff", PRRecord: "0A"}, ok: true},
		{name: "missing esp", info: Info{TVRecord: "ff", PRRecord: "0A"}},
		{name: "bad tv record", info: Info{ESPName: "a.esp", TVRecord: "xyz", PRRecord: "0A"}},
		{name: "long pr record", info: Info{ESPName: "a.esp", TVRecord: "ff", PRRecord: "123456789"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.info.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", FileName)
	if err := WriteFile(path, sampleRequest()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("unit UserScript;")) {
		t.Fatalf("unexpected script head: %q", data[:20])
	}
}
