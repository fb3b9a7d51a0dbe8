// Package highlight turns plain text and an ordered list of pattern rules
// into attributed text.
//
// Compute is a pure function. It starts from the defaults (font and text
// color over the whole text) and then, for every HighlightRule in order, for
// every match of its pattern from left to right, applies the rule's
// FormattingRules in declared order:
//
//   - font traits are unioned onto the first font found in the match range
//     and the result is written back over the whole range;
//   - a keyed attribute is computed by the rule's ValueFunc from the matched
//     substring, the defaults and the range, and overwrites only that key.
//
// Matching always runs against the original text, so earlier rules never
// change what later rules match. A failing callback aborts the whole call;
// no partially formatted text is returned.
package highlight
