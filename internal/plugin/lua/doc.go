// Package lua runs Lua scripts that compute attribute values for highlight
// rules.
//
// A rule-set script defines global functions; each function is adapted into
// a highlight.ValueFunc with ValueFunc. The function receives the matched
// text, a table describing the defaults, and the 0-based half-open match
// range, and returns the attribute value:
//
//	function severity(match, defaults, start, finish)
//	    if match == "FIXME" then return 2 end
//	    return 1
//	end
//
// Only the base, table, string and math libraries are available, and
// dofile/loadfile/load/loadstring are removed. A State serializes calls, so
// one script can serve concurrent highlight passes.
package lua
