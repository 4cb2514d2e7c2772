package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	"github.com/hamed0406/healthcheck/internal/config"
)

var _ = Describe("Config", func() {
	var fs *pflag.FlagSet

	BeforeEach(func() {
		fs = pflag.NewFlagSet("test", pflag.ContinueOnError)
		config.BindFlags(fs)
	})

	AfterEach(func() {
		os.Unsetenv("HEALTHCHECK_THREADS")
		os.Unsetenv("HEALTHCHECK_CYCLE_LENGTH")
		os.Unsetenv("HEALTHCHECK_COLORIZE")
		os.Unsetenv("HEALTHCHECK_FILE")
	})

	Describe("Load", func() {
		Context("with only the file flag", func() {
			It("should apply defaults", func() {
				Expect(fs.Parse([]string{"-f", "endpoints.yaml"})).To(Succeed())

				cfg, err := config.Load(fs)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.File).To(Equal("endpoints.yaml"))
				Expect(cfg.MaxParallelism).To(Equal(10))
				Expect(cfg.CycleLength).To(Equal(15 * time.Second))
				Expect(cfg.RequestTimeout).To(Equal(10 * time.Second))
				Expect(cfg.SlowThreshold).To(BeZero())
				Expect(cfg.Colorize).To(BeTrue())
				Expect(cfg.ColorizeSet).To(BeFalse())
				Expect(cfg.Verbose).To(BeFalse())
				Expect(cfg.LogDir).To(Equal("logs"))
				Expect(cfg.Listen).To(BeEmpty())
				Expect(cfg.Cycles).To(BeZero())
			})
		})

		Context("with flags", func() {
			It("should parse every value", func() {
				Expect(fs.Parse([]string{
					"-f", "e.yaml", "-t", "5", "--cycle-length", "2.5",
					"--timeout", "750ms", "--slow-threshold", "500ms",
					"-c=false", "-v", "--listen", "127.0.0.1:9090", "--cycles", "3",
				})).To(Succeed())

				cfg, err := config.Load(fs)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.MaxParallelism).To(Equal(5))
				Expect(cfg.CycleLength).To(Equal(2500 * time.Millisecond))
				Expect(cfg.RequestTimeout).To(Equal(750 * time.Millisecond))
				Expect(cfg.SlowThreshold).To(Equal(500 * time.Millisecond))
				Expect(cfg.Colorize).To(BeFalse())
				Expect(cfg.ColorizeSet).To(BeTrue())
				Expect(cfg.Verbose).To(BeTrue())
				Expect(cfg.Listen).To(Equal("127.0.0.1:9090"))
				Expect(cfg.Cycles).To(Equal(3))
			})
		})

		Context("with environment overrides", func() {
			It("should use env when the flag is not set", func() {
				os.Setenv("HEALTHCHECK_THREADS", "3")
				os.Setenv("HEALTHCHECK_CYCLE_LENGTH", "1")
				os.Setenv("HEALTHCHECK_COLORIZE", "false")
				os.Setenv("HEALTHCHECK_FILE", "env.yaml")
				Expect(fs.Parse(nil)).To(Succeed())

				cfg, err := config.Load(fs)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.File).To(Equal("env.yaml"))
				Expect(cfg.MaxParallelism).To(Equal(3))
				Expect(cfg.CycleLength).To(Equal(time.Second))
				Expect(cfg.Colorize).To(BeFalse())
				Expect(cfg.ColorizeSet).To(BeTrue())
			})

			It("should let flags win over env", func() {
				os.Setenv("HEALTHCHECK_THREADS", "3")
				Expect(fs.Parse([]string{"-f", "e.yaml", "-t", "7"})).To(Succeed())

				cfg, err := config.Load(fs)
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.MaxParallelism).To(Equal(7))
			})
		})

		Context("with invalid values", func() {
			It("should require a file", func() {
				Expect(fs.Parse(nil)).To(Succeed())
				_, err := config.Load(fs)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("--file"))
			})

			It("should reject non-positive parallelism", func() {
				Expect(fs.Parse([]string{"-f", "e.yaml", "-t", "0"})).To(Succeed())
				_, err := config.Load(fs)
				Expect(err).To(HaveOccurred())
			})

			It("should reject a negative cycle length", func() {
				Expect(fs.Parse([]string{"-f", "e.yaml", "--cycle-length", "-1"})).To(Succeed())
				_, err := config.Load(fs)
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
