// Command renderrob drives Blender render sessions from a TOML job file.
//
// The render command runs one session at a time, guarded by a lock file in
// the state directory. Supporting commands resolve output paths, replay
// finished renders, inspect job files and list session history.
package main
