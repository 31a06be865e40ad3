// Package app wires the protocol engine, backend transport, configuration,
// and session persistence for the lawclerk client.
package app

import (
	"go.uber.org/zap"
)

// Application bundles the engine and its collaborators for the CLI and TUI.
type Application struct {
	Config  Config
	Engine  *Engine
	Store   *SessionStore
	Logger  *zap.Logger
	Offline bool
}

// NewApplication builds the client. With no base URL configured it runs
// against the canned offline backend.
func NewApplication(cfg Config) *Application {
	logger := NewLogger(cfg.LogFile, cfg.Debug)
	store := NewSessionStore("")

	var backend Backend
	offline := cfg.BaseURL == ""
	if offline {
		backend = NewMockBackend()
		logger.Info("no base_url configured, using offline mock backend")
	} else {
		backend = NewClient(cfg.BaseURL, cfg.Timeout())
	}

	return &Application{
		Config:  cfg,
		Engine:  NewEngine(backend, store, cfg.BaseURL, cfg.Timeout(), logger),
		Store:   store,
		Logger:  logger,
		Offline: offline,
	}
}

// Close flushes the logger.
func (a *Application) Close() {
	_ = a.Logger.Sync()
}
