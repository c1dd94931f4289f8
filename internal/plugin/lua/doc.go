// Package lua runs pted edit scripts on a sandboxed gopher-lua state.
//
// A State opens only the base, table, string and math libraries. File
// loading functions are removed, require resolves nothing but preloaded
// modules and the safe built-ins, and print writes to the state's output
// writer instead of stdout.
//
// Every run is bounded by a timeout. gopher-lua checks the state's context
// between instructions, so a runaway loop is interrupted rather than left
// spinning:
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(2 * time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	state.PreloadModule("pted.buf", loader)
//	if err := state.DoFile(ctx, "script.lua"); err != nil {
//	    return err
//	}
package lua
