package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// dangerousGlobals can load code from disk or from strings.
var dangerousGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	// io, os, debug, package and channel stay closed.
}

// installSandbox removes globals that could bypass the library restrictions.
func installSandbox(L *lua.LState) {
	for _, name := range dangerousGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}
