package pipeline

import "testing"

func TestDescribe(t *testing.T) {
	cases := []struct {
		progress  int
		wantLabel string
	}{
		{-10, "Uploading"},
		{0, "Uploading"},
		{39, "Uploading"},
		{40, "Extracting"},
		{69, "Extracting"},
		{70, "Analyzing"},
		{99, "Analyzing"},
		{100, "Finalizing"},
		{150, "Finalizing"},
	}

	for _, tc := range cases {
		label, detail := Describe(tc.progress)
		if label != tc.wantLabel {
			t.Errorf("Describe(%d) label = %q, want %q", tc.progress, label, tc.wantLabel)
		}
		if detail == "" {
			t.Errorf("Describe(%d) returned empty detail", tc.progress)
		}
	}
}
