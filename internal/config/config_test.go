package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/clusterhack/classbot/internal/manifest"
)

func boolPtr(b bool) *bool { return &b }

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestComponentEnabled(t *testing.T) {
	var w *WatchdogConfig
	assert.False(t, w.Enabled())

	w = &WatchdogConfig{}
	assert.True(t, w.Enabled())

	w.Disabled = boolPtr(true)
	assert.False(t, w.Enabled())

	w.Disabled = boolPtr(false)
	assert.True(t, w.Enabled())
}

func TestValidate_BlankIssueTemplate(t *testing.T) {
	cfg := Default()
	cfg.Watchdog.Issue.Template = "   \n"

	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidate_DisabledComponentSkipped(t *testing.T) {
	cfg := Default()
	cfg.Watchdog.Issue.Template = ""
	cfg.Watchdog.Disabled = boolPtr(true)

	assert.NoError(t, cfg.Validate())
}

func TestValidate_BadManifestPattern(t *testing.T) {
	cfg := Default()
	cfg.Submission.Manifest = manifest.FromPatterns("src/[broken")

	assert.ErrorIs(t, cfg.Validate(), ErrConfig)
}

func TestValidate_BadWorkflowFilter(t *testing.T) {
	cfg := Default()
	cfg.Workflows.PusherFilter = "("

	assert.ErrorIs(t, cfg.Validate(), ErrConfig)
}

func TestOverlay_OverridesScalarsKeepsRest(t *testing.T) {
	base := Default()

	var override Config
	err := yaml.Unmarshal([]byte(`
submission:
  branch: submit
watchdog:
  validate_files: true
  issue:
    label: hw-bot
`), &override)
	require.NoError(t, err)

	merged, err := base.Overlay(override)
	require.NoError(t, err)

	assert.Equal(t, "submit", merged.Submission.Branch)
	assert.True(t, merged.Watchdog.ValidatesFiles())
	assert.Equal(t, "hw-bot", merged.Watchdog.Issue.Label)
	// Untouched fields keep defaults.
	assert.Equal(t, "Potential problems in commit(s)", merged.Watchdog.Issue.Title)
	assert.Equal(t, "Autograding", merged.Gradelog.JobName)
	// The base is not mutated through shared pointers.
	assert.Equal(t, "classbot", base.Watchdog.Issue.Label)
	assert.False(t, base.Watchdog.ValidatesFiles())
}

func TestOverlay_CannotIntroduceComponentSection(t *testing.T) {
	base := Default() // no autograde section

	var override Config
	err := yaml.Unmarshal([]byte(`
autograde:
  skeleton:
    repo: skel
`), &override)
	require.NoError(t, err)
	require.NotNil(t, override.Autograde)

	merged, err := base.Overlay(override)
	require.NoError(t, err)

	// A repo-provided override must not switch on components the
	// deployment left out.
	assert.Nil(t, merged.Autograde)
	assert.False(t, merged.Autograde.Enabled())
}

func TestOverlay_ExplicitFalseOverridesTrue(t *testing.T) {
	base := Default()
	base.Watchdog.Disabled = boolPtr(true)
	base.Watchdog.ValidateFiles = boolPtr(true)
	base.Watchdog.ValidateAuthor = boolPtr(true)

	var override Config
	err := yaml.Unmarshal([]byte(`
watchdog:
  disabled: false
  validate_files: false
`), &override)
	require.NoError(t, err)

	merged, err := base.Overlay(override)
	require.NoError(t, err)

	// "disabled: false" re-enables a component a lower layer disabled.
	assert.True(t, merged.Watchdog.Enabled())
	// "validate_files: false" switches off a lower-layer true.
	assert.False(t, merged.Watchdog.ValidatesFiles())
	// Absent flags keep the lower layer.
	assert.True(t, merged.Watchdog.ValidatesAuthor())
	// The base flags are untouched.
	assert.False(t, base.Watchdog.Enabled())
	assert.True(t, base.Watchdog.ValidatesFiles())
}

func TestOverlay_ManifestReplacedWholesale(t *testing.T) {
	base := Default()

	var override Config
	err := yaml.Unmarshal([]byte(`
submission:
  manifest:
    submit: ["src/**"]
`), &override)
	require.NoError(t, err)

	merged, err := base.Overlay(override)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**"}, merged.Submission.Manifest.Resolve("submit"))
	// The base's "main" branch entry is gone, not merged in.
	assert.Empty(t, merged.Submission.Manifest.Resolve("main"))
}

func TestOverlay_AllowlistsReplaced(t *testing.T) {
	base := Default()

	override := Config{}
	override.Submission.AuthorsAllow = []string{"alice"}

	merged, err := base.Overlay(override)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, merged.Submission.AuthorsAllow)
	// Committers allowlist untouched.
	assert.Equal(t, base.Submission.CommitersAllow, merged.Submission.CommitersAllow)
}

func TestBotEmail(t *testing.T) {
	e := &Env{BotUserID: 12345, BotUsername: "classbot"}
	assert.Equal(t, "12345+classbot@users.noreply.github.com", e.BotEmail())
}
