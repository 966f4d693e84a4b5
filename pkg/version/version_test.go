package version

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{
			name:  "major.minor",
			input: "11.8",
			want:  Version{Major: 11, Minor: 8},
		},
		{
			name:  "major.minor.patch",
			input: "12.4.1",
			want:  Version{Major: 12, Minor: 4, Patch: 1, hasPatch: true},
		},
		{
			name:  "surrounding whitespace",
			input: "  10.2 ",
			want:  Version{Major: 10, Minor: 2},
		},
		{
			name:    "major only",
			input:   "12",
			wantErr: true,
		},
		{
			name:    "four components",
			input:   "12.4.1.3",
			wantErr: true,
		},
		{
			name:    "non-numeric",
			input:   "12.x",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"legacy with patch drops it", "10.2.89", "10.2"},
		{"legacy without patch unchanged", "10.2", "10.2"},
		{"oldest supported", "8.0.61", "8.0"},
		{"modern keeps patch", "11.2.2", "11.2.2"},
		{"modern without patch unchanged", "11.2", "11.2"},
		{"v prefix stripped", "v12.4.1", "12.4.1"},
		{"whitespace trimmed", " 12.0 ", "12.0"},
		{"unparseable passthrough", "latest", "latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: %q -> %q -> %q", tt.input, got, again)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		v1   string
		v2   string
		want int
	}{
		{"equal", "11.2", "11.2", 0},
		{"missing patch equals zero patch", "10.2", "10.2.0", 0},
		{"patch orders", "11.0", "11.0.1", -1},
		{"minor orders", "11.0.1", "11.2", -1},
		{"major orders", "9.2", "10.0", -1},
		{"numeric not lexicographic", "10.2", "9.2", 1},
		{"reversed", "12.4.1", "11.8", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.v1, tt.v2); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
			if got := Compare(tt.v2, tt.v1); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.v2, tt.v1, got, -tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	versions := []string{"12.4.1", "9.2", "11.0", "10.2", "11.0.1", "8.0"}
	Sort(versions)

	want := []string{"8.0", "9.2", "10.2", "11.0", "11.0.1", "12.4.1"}
	if !reflect.DeepEqual(versions, want) {
		t.Errorf("Sort() = %v, want %v", versions, want)
	}
}

func TestMajorMinor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"12.4.1", "12.4"},
		{"11.8", "11.8"},
		{"10.2", "10.2"},
	}

	for _, tt := range tests {
		v, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.input, err)
		}
		if got := v.MajorMinor(); got != tt.want {
			t.Errorf("MajorMinor(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractFromOutput(t *testing.T) {
	nvccOutput := `nvcc: NVIDIA (R) Cuda compiler driver
Copyright (c) 2005-2024 NVIDIA Corporation
Built on Thu_Mar_28_02:18:24_PDT_2024
Cuda compilation tools, release 12.4, V12.4.131
Build cuda_12.4.r12.4/compiler.34097967_0`

	got, err := ExtractFromOutput(nvccOutput, "")
	if err != nil {
		t.Fatalf("ExtractFromOutput() error = %v", err)
	}
	if got != "12.4" {
		t.Errorf("ExtractFromOutput() = %q, want %q", got, "12.4")
	}

	if _, err := ExtractFromOutput("no version here", ""); err == nil {
		t.Error("expected error for output without a version")
	}
}
