// Package key provides key event types and specification parsing for the
// trigger key mapper.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: A single key press with modifiers
//
// # Key Specifications
//
// Key specifications can be written in multiple formats:
//
//   - Simple keys: "a", "A", "1", "Enter", "Escape"
//   - With modifiers: "Ctrl+S", "Alt+Left"
//   - Vim-style: "<C-s>", "<BS>", "<CR>", "<Esc>"
//
// Only single keystrokes are supported; the mapper binds individual keys,
// not sequences.
package key
