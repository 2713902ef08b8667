// Package config defines the settings of the reminder binaries and provides
// helpers to load, validate and save them in YAML format.
//
// Values from the YAML file are overlaid by REMINDER_* environment variables,
// optionally read from a .env file next to the process.
package config
