// Package config holds clinicscan's runtime configuration.
//
// Configuration comes from three places, in increasing precedence:
// built-in defaults (constants in this package), the optional .clinicscan
// YAML file (per-site overrides), and CLI flags. The Config struct is
// populated by the cmd layer and passed down via dependency injection;
// there is no global configuration state.
package config
