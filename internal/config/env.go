package config

import "github.com/caarlos0/env/v11"

// Env is process-level configuration. Bot behavior (manifests, allowlists,
// component sections) lives in repo-provided YAML instead; see Loader.
type Env struct {
	GithubToken   string `env:"CLASSBOT_GITHUB_TOKEN,required"`
	WebhookSecret string `env:"CLASSBOT_WEBHOOK_SECRET,required"`
	ListenAddr    string `env:"CLASSBOT_LISTEN_ADDR" envDefault:":8080"`

	DatabaseDriver string `env:"CLASSBOT_DB_DRIVER" envDefault:"mysql"`
	DatabaseDSN    string `env:"CLASSBOT_DB_DSN,required"`

	// Committer identity for commits the bot itself makes (badges,
	// workflow bootstrap).
	BotUsername string `env:"CLASSBOT_USERNAME" envDefault:"classbot"`
	BotUserID   int64  `env:"CLASSBOT_USERID" envDefault:"0"`

	// Repo allow filter; events from non-matching owners/repos are
	// dropped before any processing.
	RepoOwnerPattern string `env:"CLASSBOT_REPO_OWNER_PATTERN" envDefault:"^.*$"`
	RepoNamePattern  string `env:"CLASSBOT_REPO_NAME_PATTERN" envDefault:"^.*$"`

	LogLevel string `env:"CLASSBOT_LOG_LEVEL" envDefault:"info"`
}

func LoadEnv() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// BotEmail is the noreply address GitHub assigns to the bot user, used as
// the committer email on bot-authored commits.
func (e *Env) BotEmail() string {
	return fmtBotEmail(e.BotUserID, e.BotUsername)
}
