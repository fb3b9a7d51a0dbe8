// Package app hosts the highlight engine for interactive callers.
//
// A Service owns the current defaults and rule list, serves concurrent
// Highlight calls, and swaps in new rule sets loaded from disk or pushed by
// the caller. When the engine fails, Highlight degrades to the unstyled
// baseline text and reports the error; callers never see a partially
// highlighted result.
package app
