// Package alias implements the editor object behind the alias editor
// panel: an alias.json document with name and target, tracked for
// unsaved changes.
//
// An Editor keeps its artifact file open for its whole control lifetime.
// ReleaseControl closes that file; Close marks the panel closed. The two
// are independent so a host may keep rendering a panel whose control
// side has already been dropped by the plugin.
package alias
