// Package execshell centralizes execution of the external tools devsnap
// captures configuration from, providing typed commands, structured results,
// and lifecycle logging.
package execshell
