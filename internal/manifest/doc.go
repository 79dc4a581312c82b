// Package manifest attaches listeners declared in a TOML or YAML file.
//
// A manifest is a list of bindings, each tying one event name to an action:
//
//	[[listener]]
//	event = "user.created"
//	priority = 10
//	action = "print"
//	message = "welcome ${user}"
//
//	[[listener]]
//	event = "user.created"
//	action = "lua"
//	script = "hooks/audit.lua"
//	stop = true
//
// Actions:
//   - log: writes the event and its parameters to the slog logger
//   - print: writes message to the output writer
//   - set: merges params into the event
//   - stop: stops propagation
//   - fail: returns an error built from message, halting the dispatch
//   - lua: runs a script file or inline code (see package lua)
//
// Messages expand $event to the event name and $key or ${key} to event
// parameters. Script paths are relative to the manifest's directory.
package manifest
