// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each component declares its own config struct with env tags and loads it
// independently:
//
//	type EmailConfig struct {
//		ServerToken string `env:"POSTMARK_SERVER_TOKEN,required"`
//		From        string `env:"EMAIL_FROM,required"`
//	}
//
//	cfg, err := config.Load[EmailConfig]()
//
// Parsed structs are cached by type, so repeated loads of the same config
// are cheap and consistent within a process. Tests that mutate the
// environment call Reset between cases.
package config
