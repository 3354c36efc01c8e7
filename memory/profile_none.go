//go:build !mortar_rc && !mortar_arc && !mortar_gc && !mortar_agc

package memory

const buildProfileTag = ""
