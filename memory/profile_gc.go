//go:build mortar_gc

package memory

// Only one profile file may be compiled in; a second tag redeclares this
// constant and the build fails.
const buildProfileTag = "mortar_gc"

func init() { buildSwitches.GC = true }
