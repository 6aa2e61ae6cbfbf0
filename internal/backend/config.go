package backend

import (
	"fmt"

	"incometracker/internal/config"
	gsheet "incometracker/internal/sheets/google"
	"incometracker/internal/storage"
)

// Config holds the settings the factory needs.
type Config struct {
	Storage storage.Options

	Sessions      SessionBackend
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// An empty AMQPURL disables ledger events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Mirror MirrorBackend
	Sheets gsheet.Options
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	c := Config{
		Storage: storage.Options{
			Dialect:     storage.Dialect(appConfig.DBDriver),
			SQLitePath:  appConfig.SQLiteDBPath,
			DatabaseURL: appConfig.DatabaseURL,
		},
		Sessions:      SessionBackend(appConfig.SessionStore),
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		AMQPURL:       appConfig.AMQPURL,
		AMQPExchange:  appConfig.AMQPExchange,
		AMQPQueue:     appConfig.AMQPQueue,
		Mirror:        MirrorBackend(appConfig.MirrorBackend),
		Sheets: gsheet.Options{
			SpreadsheetID:      appConfig.GoogleSpreadsheetID,
			SheetName:          appConfig.GoogleSheetName,
			ServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
			ServiceAccountFile: appConfig.GoogleServiceAccountFile,
			OAuthClientJSON:    appConfig.GoogleOAuthClientJSON,
			OAuthClientFile:    appConfig.GoogleOAuthClientFile,
			OAuthTokenJSON:     appConfig.GoogleOAuthTokenJSON,
			OAuthTokenFile:     appConfig.GoogleOAuthTokenFile,
		},
	}
	return c, c.Validate()
}

// Validate checks the selectors; field level checks live in config.Validate.
func (c Config) Validate() error {
	switch c.Storage.Dialect {
	case storage.SQLite, storage.Postgres:
	default:
		return fmt.Errorf("invalid database dialect: %s", c.Storage.Dialect)
	}
	if !c.Sessions.IsValid() {
		return fmt.Errorf("invalid session backend: %s", c.Sessions)
	}
	if !c.Mirror.IsValid() {
		return fmt.Errorf("invalid mirror backend: %s", c.Mirror)
	}
	return nil
}
