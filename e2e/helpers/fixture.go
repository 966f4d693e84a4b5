package helpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/mjun0812/setup-cuda/pkg/distro"
	"github.com/mjun0812/setup-cuda/pkg/installer"
	"github.com/mjun0812/setup-cuda/pkg/platform"
)

// Fixture content mirroring the NVIDIA download site layout: a release
// checksum manifest plus directory listings for two package repository
// families.
const fixtureManifest = `5415a60b76d961d7ee221c72a2508aaa  cuda_12.4.1_550.54.15_linux.run
23bb95e6b71b4b2dfebd10ab3e4fbb3c  cuda_12.4.1_550.54.15_linux_sbsa.run
096d82b3b4cf57b9d4f180d03b5de14f  cuda_12.4.1_551.78_windows.exe
`

const fixtureReposRoot = `<html><body><pre>
<a href="../">../</a>
<a href="ubuntu2204/">ubuntu2204/</a>
<a href="rhel9/">rhel9/</a>
</pre></body></html>`

const fixtureUbuntuRepo = `<html><body><pre>
<a href="../">../</a>
<a href="cuda-keyring_1.0-1_all.deb">cuda-keyring_1.0-1_all.deb</a>
<a href="cuda-keyring_1.1-1_all.deb">cuda-keyring_1.1-1_all.deb</a>
<a href="cuda-ubuntu2204.pin">cuda-ubuntu2204.pin</a>
<a href="cuda-toolkit_12.3.2-1_amd64.deb">cuda-toolkit_12.3.2-1_amd64.deb</a>
<a href="cuda-toolkit_12.4.1-1_amd64.deb">cuda-toolkit_12.4.1-1_amd64.deb</a>
</pre></body></html>`

const fixtureRhelRepo = `<html><body><pre>
<a href="../">../</a>
<a href="cuda-rhel9.repo">cuda-rhel9.repo</a>
<a href="cuda-toolkit-12.3.2-1.x86_64.rpm">cuda-toolkit-12.3.2-1.x86_64.rpm</a>
<a href="cuda-toolkit-12.4.1-1.x86_64.rpm">cuda-toolkit-12.4.1-1.x86_64.rpm</a>
</pre></body></html>`

// CatalogVersions are the releases the fixture catalog serves.
var CatalogVersions = []string{"11.8.0", "12.4.1"}

// StartFixtureServer serves the NVIDIA endpoint fixtures: the 12.4.1
// checksum manifest and the package repository listings for ubuntu2204
// and rhel9.
func StartFixtureServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/12.4.1/docs/sidebar/md5sum.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fixtureManifest)
	})
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/":
			fmt.Fprint(w, fixtureReposRoot)
		case "/repos/ubuntu2204/x86_64/":
			fmt.Fprint(w, fixtureUbuntuRepo)
		case "/repos/rhel9/x86_64/":
			fmt.Fprint(w, fixtureRhelRepo)
		default:
			http.NotFound(w, r)
		}
	})
	return httptest.NewServer(mux)
}

// InstallScenario describes one dry-run install flow against the fixture
// endpoints.
type InstallScenario struct {
	Name     string
	Version  string
	Resolved string
	Method   installer.Method
	Platform platform.Platform
	Distro   *distro.Distro
	Root     string
	// PlanWants are fragments the recorded plan must contain.
	PlanWants []string
	// PlanRejects are fragments the recorded plan must not contain.
	PlanRejects []string
}

// GetInstallScenarios returns the install flows to exercise, one per
// supported method and distribution family plus the non-x86 and Windows
// standalone paths.
func GetInstallScenarios() []InstallScenario {
	ubuntu := distro.Distro{ID: "ubuntu", VersionID: "22.04", Name: "Ubuntu"}
	rhel := distro.Distro{ID: "rhel", VersionID: "9.4", Name: "Red Hat Enterprise Linux"}

	return []InstallScenario{
		{
			Name:     "linux x86_64 standalone run file",
			Version:  "12.4",
			Resolved: "12.4.1",
			Method:   installer.MethodLocal,
			Platform: platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX86_64},
			Distro:   &ubuntu,
			Root:     "/usr/local/cuda-12.4",
			PlanWants: []string{
				"cuda_12.4.1_550.54.15_linux.run",
				"--silent --toolkit",
			},
			PlanRejects: []string{"sudo ", "apt-get", "dnf "},
		},
		{
			Name:     "ubuntu 22.04 network repository",
			Version:  "12.4.1",
			Resolved: "12.4.1",
			Method:   installer.MethodNetwork,
			Platform: platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX86_64},
			Distro:   &ubuntu,
			Root:     "/usr/local/cuda-12.4",
			PlanWants: []string{
				"cuda-keyring_1.1-1_all.deb",
				"dpkg -i",
				"apt-get update",
				"apt-get -y install cuda-toolkit=12.4.1-1",
			},
			PlanRejects: []string{"dnf ", "cuda-keyring_1.0-1_all.deb"},
		},
		{
			Name:     "rhel 9 network repository",
			Version:  "12.4.1",
			Resolved: "12.4.1",
			Method:   installer.MethodNetwork,
			Platform: platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX86_64},
			Distro:   &rhel,
			Root:     "/usr/local/cuda-12.4",
			PlanWants: []string{
				"dnf config-manager --add-repo",
				"cuda-rhel9.repo",
				"dnf clean expire-cache",
				"dnf -y install cuda-toolkit-12.4.1-1",
			},
			PlanRejects: []string{"apt-get", "dpkg"},
		},
		{
			Name:     "windows standalone exe",
			Version:  "12.4.1",
			Resolved: "12.4.1",
			Method:   installer.MethodLocal,
			Platform: platform.Platform{OS: platform.OSWindows, Arch: platform.ArchX86_64},
			Root:     `C:\Program Files\NVIDIA GPU Computing Toolkit\CUDA\v12.4`,
			PlanWants: []string{
				"cuda_12.4.1_551.78_windows.exe",
				" -s",
			},
			PlanRejects: []string{"--toolkit", "sh "},
		},
		{
			Name:     "linux arm64 sbsa run file",
			Version:  "12.4.1",
			Resolved: "12.4.1",
			Method:   installer.MethodLocal,
			Platform: platform.Platform{OS: platform.OSLinux, Arch: platform.ArchARM64},
			Distro:   &ubuntu,
			Root:     "/usr/local/cuda-12.4",
			PlanWants: []string{
				"cuda_12.4.1_550.54.15_linux_sbsa.run",
				"--silent --toolkit",
			},
			PlanRejects: []string{"cuda_12.4.1_550.54.15_linux.run"},
		},
	}
}
