//go:build mortar_rc

package memory

// Only one profile file may be compiled in; a second tag redeclares this
// constant and the build fails.
const buildProfileTag = "mortar_rc"

func init() { buildSwitches.RC = true }
