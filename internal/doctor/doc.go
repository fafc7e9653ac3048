// Package doctor runs diagnostic checks against the settings document, the
// tool registry and the generated platform files.
//
// Run never modifies files. A check that can repair what it finds also
// implements Fixer; callers invoke Fix only after Run.
package doctor
