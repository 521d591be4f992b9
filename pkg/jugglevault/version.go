// Package jugglevault exposes project-level metadata shared by the CLI and
// the backup engine.
package jugglevault

// Version is the application version reported by the CLI and stamped into
// backup archive metadata.
const Version = "0.2.0"
