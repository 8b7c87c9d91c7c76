// Package gitconfig implements the git configuration provider: it captures
// git configuration scopes, discovers local repositories, aggregates their
// per-repository settings, and recommends keys worth promoting to the global
// configuration scope.
package gitconfig
