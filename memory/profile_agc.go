//go:build mortar_agc

package memory

// Only one profile file may be compiled in; a second tag redeclares this
// constant and the build fails.
const buildProfileTag = "mortar_agc"

func init() { buildSwitches.AGC = true }
