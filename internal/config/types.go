package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Turso         TursoConfig
	Slack         SlackConfig
	ProjectID     string
	Rules         RulesConfig
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// RulesConfig holds format rules that are deployment decisions rather than
// hard-coded cricket law.
type RulesConfig struct {
	// EnforceBowlerRotation rejects a bowler starting two consecutive overs.
	EnforceBowlerRotation bool
}
