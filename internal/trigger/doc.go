// Package trigger implements the completion trigger engine: a session
// state machine that reacts to keystrokes by filtering completion
// behaviors against the text before the cursor, driving an attempt
// sequence through the host editor, and tearing the session down with all
// overridden settings restored.
//
// The engine never blocks and owns no goroutines. Every step is driven by
// the host: Trigger returns a Directive, the host executes it and invokes
// its continuation, and the continuation returns the next Directive. Host
// notifications the engine cares about (leaving insert mode, cursor
// movement during repeat mode) arrive over an event bus the engine
// subscribes to per session.
package trigger
