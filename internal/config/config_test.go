package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/petasbytes/medbot/internal/config"
)

// setenv sets key for the duration of the current spec.
func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		for _, k := range []string{"ANTHROPIC_API_KEY", "MEDBOT_ANTHROPIC_API_KEY", "MEDBOT_MODEL", "MEDBOT_LOG_DEBUG", "MEDBOT_MAX_AGENT_STEPS"} {
			setenv(k, "")
			os.Unsetenv(k)
		}
	})

	writeConfig := func(data string) string {
		path := filepath.Join(tmpDir, "config.toml")
		Expect(os.WriteFile(path, []byte(data), 0o600)).To(Succeed())
		return path
	}

	Describe("InitViper and Load", func() {
		It("returns defaults when no config file exists", func() {
			// Run from an empty directory so no ./.medbot is found.
			wd, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(os.Chdir, wd)
			setenv("HOME", tmpDir)

			v, err := config.InitViper("")
			Expect(err).NotTo(HaveOccurred())
			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())

			d := config.NewDefaultConfig()
			Expect(cfg.Model).To(Equal(d.Model))
			Expect(cfg.MaxTokens).To(Equal(d.MaxTokens))
			Expect(cfg.TokenBudget).To(Equal(d.TokenBudget))
			Expect(cfg.MaxAgentSteps).To(Equal(d.MaxAgentSteps))
			Expect(cfg.Telemetry.Dir).To(Equal(config.DirName))
			Expect(cfg.Anthropic.APIKey).To(BeEmpty())
		})

		It("loads a config file", func() {
			path := writeConfig(`model = "claude-3-5-haiku-latest"
max_agent_steps = 2

[log]
debug = true

[telemetry]
observe = true
dir = "/tmp/medbot-artifacts"
`)
			v, err := config.InitViper(path)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Model).To(Equal("claude-3-5-haiku-latest"))
			Expect(cfg.MaxAgentSteps).To(Equal(2))
			Expect(cfg.Log.Debug).To(BeTrue())
			Expect(cfg.Telemetry.Observe).To(BeTrue())
			Expect(cfg.Telemetry.Dir).To(Equal("/tmp/medbot-artifacts"))
			Expect(cfg.TokenBudget).To(Equal(config.NewDefaultConfig().TokenBudget))
		})

		It("errors when an explicit config file is missing", func() {
			_, err := config.InitViper(filepath.Join(tmpDir, "nope.toml"))
			Expect(err).To(HaveOccurred())
		})

		It("errors on a malformed config file", func() {
			path := writeConfig("model = \n")
			_, err := config.InitViper(path)
			Expect(err).To(HaveOccurred())
		})

		It("lets environment variables override the file", func() {
			path := writeConfig(`model = "from-file"`)
			setenv("MEDBOT_MODEL", "from-env")
			setenv("MEDBOT_LOG_DEBUG", "true")

			v, err := config.InitViper(path)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model).To(Equal("from-env"))
			Expect(cfg.Log.Debug).To(BeTrue())
		})

		It("falls back to ANTHROPIC_API_KEY", func() {
			setenv("ANTHROPIC_API_KEY", "sk-fallback")

			v, err := config.InitViper(writeConfig(""))
			Expect(err).NotTo(HaveOccurred())
			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Anthropic.APIKey).To(Equal("sk-fallback"))
		})

		It("prefers MEDBOT_ANTHROPIC_API_KEY", func() {
			setenv("ANTHROPIC_API_KEY", "sk-fallback")
			setenv("MEDBOT_ANTHROPIC_API_KEY", "sk-medbot")

			v, err := config.InitViper(writeConfig(""))
			Expect(err).NotTo(HaveOccurred())
			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Anthropic.APIKey).To(Equal("sk-medbot"))
		})

		It("rejects a zero max_tokens", func() {
			v, err := config.InitViper(writeConfig("max_tokens = 0\n"))
			Expect(err).NotTo(HaveOccurred())
			_, err = config.Load(v)
			Expect(err).To(MatchError(ContainSubstring("max_tokens")))
		})

		It("rejects a zero step bound", func() {
			setenv("MEDBOT_MAX_AGENT_STEPS", "0")

			v, err := config.InitViper(writeConfig(""))
			Expect(err).NotTo(HaveOccurred())
			_, err = config.Load(v)
			Expect(err).To(MatchError(ContainSubstring("max_agent_steps")))
		})
	})

	Describe("BindRegisteredFlags", func() {
		It("puts set flags above the environment", func() {
			setenv("MEDBOT_MODEL", "from-env")
			var model string
			var debug bool
			cmd := &cobra.Command{Use: "medbot"}
			config.AddStringFlag(cmd, config.Flags, config.FlagModel, &model)
			config.AddBoolFlag(cmd, config.Flags, config.FlagDebug, &debug)
			Expect(cmd.Flags().Parse([]string{"--model", "from-flag"})).To(Succeed())

			v, err := config.InitViper(writeConfig(""))
			Expect(err).NotTo(HaveOccurred())
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagModel, config.FlagDebug})
			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Model).To(Equal("from-flag"))
			Expect(cfg.Log.Debug).To(BeFalse())
		})

		It("uses defaults from NewDefaultConfig for flag defaults", func() {
			var model string
			cmd := &cobra.Command{Use: "medbot"}
			config.AddStringFlag(cmd, config.Flags, config.FlagModel, &model)

			Expect(cmd.Flags().Lookup("model").DefValue).To(Equal(config.NewDefaultConfig().Model))
		})
	})

	Describe("Save", func() {
		It("writes a file InitViper can read back", func() {
			path := filepath.Join(tmpDir, "nested", "config.toml")
			cfg := config.NewDefaultConfig()
			cfg.Model = "claude-test"
			Expect(config.Save(path, cfg, false)).To(Succeed())

			v, err := config.InitViper(path)
			Expect(err).NotTo(HaveOccurred())
			loaded, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Model).To(Equal("claude-test"))
			Expect(loaded.MaxAgentSteps).To(Equal(cfg.MaxAgentSteps))
		})

		It("refuses to overwrite without force", func() {
			path := writeConfig("")
			err := config.Save(path, config.NewDefaultConfig(), false)
			Expect(err).To(MatchError(config.ErrConfigExists))
			Expect(config.Save(path, config.NewDefaultConfig(), true)).To(Succeed())
		})
	})
})
