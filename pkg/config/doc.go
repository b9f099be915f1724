// Package config loads the application configuration from padron.yml and
// the PADRON_* environment, with the environment taking precedence. The
// loaded value is passed down from the composition root; nothing in this
// package is a global.
package config
