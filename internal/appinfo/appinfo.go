// Package appinfo provides application identity constants.
// These are used across packages for consistent naming.
package appinfo

const (
	// AppName is the display name of the application.
	AppName = "Pointskeeper"

	// DirName is the directory name used for storing application data.
	// Location: %LOCALAPPDATA%/pointskeeper/ (Windows) or ~/.config/pointskeeper/ (other)
	DirName = "pointskeeper"

	// MutexName is the Windows mutex name for single instance control.
	// "Local\" prefix scopes the mutex to the current user session.
	MutexName = "Local\\pointskeeper"

	// ConfigFileName is the configuration file name.
	ConfigFileName = "config.json"

	// SecretsFileName is the secrets file name.
	SecretsFileName = "secrets.json"

	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "pointskeeper.sqlite"
)
