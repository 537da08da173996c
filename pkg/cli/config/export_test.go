package config

import "time"

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID, apiURL string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
		apiURL:    apiURL,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dataDir string) *Repository {
	return &Repository{
		backend: backend,
		dataDir: dataDir,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewRefreshScheduleForTest creates a RefreshSchedule config for testing purposes
func NewRefreshScheduleForTest(targets []string, interval time.Duration) *RefreshSchedule {
	return &RefreshSchedule{
		targets:  targets,
		interval: interval,
	}
}

// NewAppConfigForTest creates an AppConfig pointing at path
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}

// NewCorkForTest creates a Cork config for testing purposes
func NewCorkForTest(apiKey, baseURL string) *Cork {
	return &Cork{apiKey: apiKey, baseURL: baseURL}
}

// NewITGlueForTest creates an IT Glue config for testing purposes
func NewITGlueForTest(apiKey, baseURL string) *ITGlue {
	return &ITGlue{apiKey: apiKey, baseURL: baseURL}
}
