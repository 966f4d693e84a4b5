package platform

import (
	"errors"
	"testing"
)

func TestParseWindowsRelease(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    WindowsRelease
		wantErr bool
	}{
		{
			name:  "three components",
			input: "10.0.22000",
			want:  WindowsRelease{Major: 10, Minor: 0, Build: 22000},
		},
		{
			name:  "trailing revision ignored",
			input: "10.0.19045.4291",
			want:  WindowsRelease{Major: 10, Minor: 0, Build: 19045},
		},
		{
			name:    "two components",
			input:   "10.0",
			wantErr: true,
		},
		{
			name:    "non-numeric build",
			input:   "10.0.build",
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
			got, err := ParseWindowsRelease(tt.input)
			if tt.wantErr {
				var target *ErrUnparseableRelease
				if !errors.As(err, &target) {
					t.Fatalf("ParseWindowsRelease(%q) error = %v, want ErrUnparseableRelease", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWindowsRelease(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseWindowsRelease(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWindowsProduct(t *testing.T) {
	tests := []struct {
		build int
		want  string
	}{
		{26100, "11"},
		{22000, "11"},
		{21999, "Server 2022"},
		{20348, "Server 2022"},
		{19045, "10"},
		{19041, "10"},
		{18363, "Server 2019"},
		{17763, "Server 2019"},
		{14393, "10"},
		{10240, "10"},
		{9600, "Unknown"},
		{0, "Unknown"},
	}

	for _, tt := range tests {
		r := WindowsRelease{Major: 10, Minor: 0, Build: tt.build}
		if got := r.Product(); got != tt.want {
			t.Errorf("Product(build=%d) = %q, want %q", tt.build, got, tt.want)
		}
	}
}
