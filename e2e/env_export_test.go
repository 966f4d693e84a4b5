package e2e

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mjun0812/setup-cuda/pkg/envs"
	"github.com/mjun0812/setup-cuda/pkg/platform"
)

var _ = Describe("Environment rendering", func() {
	linux := platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX86_64}
	windows := platform.Platform{OS: platform.OSWindows, Arch: platform.ArchX86_64}

	Describe("export lines", func() {
		It("renders the POSIX exports for a Linux root", func() {
			env := envs.ForRoot("/usr/local/cuda-12.4", linux)
			lines := env.ExportLines()

			Expect(lines).To(ContainElement(`export CUDA_HOME="/usr/local/cuda-12.4"`))
			Expect(lines).To(ContainElement(`export CUDA_PATH="/usr/local/cuda-12.4"`))
			Expect(lines).To(ContainElement(`export PATH="/usr/local/cuda-12.4/bin:$PATH"`))
			Expect(lines).To(ContainElement(`export LD_LIBRARY_PATH="/usr/local/cuda-12.4/lib64:$LD_LIBRARY_PATH"`))
		})

		It("adds the lib\\x64 directory on Windows instead of LD_LIBRARY_PATH", func() {
			root := `C:\Program Files\NVIDIA GPU Computing Toolkit\CUDA\v12.4`
			env := envs.ForRoot(root, windows)

			Expect(env.Path).To(HaveLen(2))
			Expect(env.Path[1]).To(HaveSuffix(filepath.Join("lib", "x64")))
			Expect(env.LibraryPath).To(BeEmpty())
		})
	})

	Describe("GitHub Actions files", func() {
		var envFile, pathFile string

		BeforeEach(func() {
			dir := GinkgoT().TempDir()
			envFile = filepath.Join(dir, "github_env")
			pathFile = filepath.Join(dir, "github_path")
			GinkgoT().Setenv("GITHUB_ENV", envFile)
			GinkgoT().Setenv("GITHUB_PATH", pathFile)
		})

		It("appends the variables and path entries", func() {
			env := envs.ForRoot("/usr/local/cuda-12.4", linux)
			Expect(env.WriteGithubFiles()).To(Succeed())

			data, err := os.ReadFile(envFile)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("CUDA_HOME=/usr/local/cuda-12.4\n"))
			Expect(string(data)).To(ContainSubstring("CUDA_PATH=/usr/local/cuda-12.4\n"))
			Expect(string(data)).To(ContainSubstring("LD_LIBRARY_PATH=/usr/local/cuda-12.4/lib64"))

			pathData, err := os.ReadFile(pathFile)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(pathData)).To(Equal("/usr/local/cuda-12.4/bin\n"))
		})

		It("accumulates entries across installs", func() {
			Expect(envs.ForRoot("/usr/local/cuda-11.8", linux).WriteGithubFiles()).To(Succeed())
			Expect(envs.ForRoot("/usr/local/cuda-12.4", linux).WriteGithubFiles()).To(Succeed())

			pathData, err := os.ReadFile(pathFile)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(pathData)).To(Equal("/usr/local/cuda-11.8/bin\n/usr/local/cuda-12.4/bin\n"))
		})

		It("does nothing when the variables are unset", func() {
			GinkgoT().Setenv("GITHUB_ENV", "")
			GinkgoT().Setenv("GITHUB_PATH", "")

			env := envs.ForRoot("/usr/local/cuda-12.4", linux)
			Expect(env.WriteGithubFiles()).To(Succeed())
			Expect(envFile).ToNot(BeAnExistingFile())
			Expect(pathFile).ToNot(BeAnExistingFile())
		})
	})
})
