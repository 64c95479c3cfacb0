// Package termhost is the reference host: a minimal modal editor on tcell
// that wires buffer editing, key bindings, and a completion menu to the
// trigger engine's directive protocol.
package termhost
