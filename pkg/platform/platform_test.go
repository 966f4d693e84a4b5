package platform

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Platform
		want Platform
	}{
		{"amd64 alias", Platform{OS: "linux", Arch: "amd64"}, Platform{OS: "linux", Arch: "x86_64"}},
		{"aarch64 alias", Platform{OS: "Linux", Arch: "aarch64"}, Platform{OS: "linux", Arch: "arm64"}},
		{"sbsa alias", Platform{OS: "linux", Arch: "sbsa"}, Platform{OS: "linux", Arch: "arm64"}},
		{"win alias", Platform{OS: "win64", Arch: "x64"}, Platform{OS: "windows", Arch: "x86_64"}},
		{"canonical unchanged", Platform{OS: "windows", Arch: "x86_64"}, Platform{OS: "windows", Arch: "x86_64"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Platform
		wantErr error
	}{
		{"linux x86_64", Platform{OS: "linux", Arch: "x86_64"}, nil},
		{"linux arm64", Platform{OS: "linux", Arch: "arm64"}, nil},
		{"windows x86_64", Platform{OS: "windows", Arch: "x86_64"}, nil},
		{"windows arm64", Platform{OS: "windows", Arch: "arm64"}, &ErrPlatformNotSupported{}},
		{"darwin", Platform{OS: "darwin", Arch: "x86_64"}, &ErrUnsupportedOS{}},
		{"riscv", Platform{OS: "linux", Arch: "riscv64"}, &ErrUnsupportedArch{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate(%v) = %v, want nil", tt.p, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate(%v) = nil, want %T", tt.p, tt.wantErr)
			}

			switch tt.wantErr.(type) {
			case *ErrPlatformNotSupported:
				var target *ErrPlatformNotSupported
				if !errors.As(err, &target) {
					t.Errorf("Validate(%v) = %v, want ErrPlatformNotSupported", tt.p, err)
				} else if len(target.Available) == 0 {
					t.Error("ErrPlatformNotSupported should carry the available platforms")
				}
			case *ErrUnsupportedOS:
				var target *ErrUnsupportedOS
				if !errors.As(err, &target) {
					t.Errorf("Validate(%v) = %v, want ErrUnsupportedOS", tt.p, err)
				}
			case *ErrUnsupportedArch:
				var target *ErrUnsupportedArch
				if !errors.As(err, &target) {
					t.Errorf("Validate(%v) = %v, want ErrUnsupportedArch", tt.p, err)
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	p, err := Parse("linux-arm64-sbsa")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.OS != "linux" || p.Arch != "arm64" {
		t.Errorf("Parse() = %v, want linux-arm64", p)
	}

	if _, err := Parse("linux"); err == nil {
		t.Error("expected error for platform without arch")
	}
}

func TestRepoArchDir(t *testing.T) {
	if got := (Platform{OS: "linux", Arch: "x86_64"}).RepoArchDir(); got != "x86_64" {
		t.Errorf("RepoArchDir() = %q, want x86_64", got)
	}
	if got := (Platform{OS: "linux", Arch: "arm64"}).RepoArchDir(); got != "sbsa" {
		t.Errorf("RepoArchDir() = %q, want sbsa", got)
	}
}

func TestCurrentRespectsOverrides(t *testing.T) {
	SetGlobalOverrides("windows", "amd64")
	defer SetGlobalOverrides("", "")

	p := Current()
	if p.OS != "windows" || p.Arch != "x86_64" {
		t.Errorf("Current() with overrides = %v, want windows-x86_64", p)
	}
}
