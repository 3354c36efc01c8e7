//go:build mortar_arc

package memory

// Only one profile file may be compiled in; a second tag redeclares this
// constant and the build fails.
const buildProfileTag = "mortar_arc"

func init() { buildSwitches.ARC = true }
