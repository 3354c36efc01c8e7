package memory

import (
	"fmt"
	"strings"
	"sync"
)

// Profile is one of the four memory-management strategies.
type Profile uint8

const (
	// RC is single-thread reference counting.
	RC Profile = iota + 1
	// ARC is multi-thread atomic reference counting.
	ARC
	// GC is single-thread reference counting with a cycle collector.
	GC
	// AGC is multi-thread reference counting with a cycle collector.
	AGC
)

// Profiles lists every profile in selection order.
var Profiles = []Profile{RC, ARC, GC, AGC}

func (p Profile) String() string {
	switch p {
	case RC:
		return "rc"
	case ARC:
		return "arc"
	case GC:
		return "gc"
	case AGC:
		return "agc"
	default:
		return "unset"
	}
}

// Description returns a human-readable name for the profile.
func (p Profile) Description() string {
	switch p {
	case RC:
		return "single-thread reference counting"
	case ARC:
		return "multi-thread reference counting"
	case GC:
		return "single-thread cycle-collecting"
	case AGC:
		return "multi-thread cycle-collecting"
	default:
		return "no profile"
	}
}

// BuildTag returns the build tag that selects p.
func (p Profile) BuildTag() string {
	return "mortar_" + p.String()
}

// MultiThreaded reports whether handles and cells may be shared between
// goroutines.
func (p Profile) MultiThreaded() bool {
	return p == ARC || p == AGC
}

// Collecting reports whether the profile has a cycle collector.
func (p Profile) Collecting() bool {
	return p == GC || p == AGC
}

// ParseProfile parses a profile name ("rc", "arc", "gc", "agc"); the
// "mortar_" build-tag prefix is accepted too.
func ParseProfile(s string) (Profile, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mortar_")
	for _, p := range Profiles {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown memory profile %q", s)
}

// Switches holds one flag per profile, as set by build tags.
type Switches struct {
	RC  bool
	ARC bool
	GC  bool
	AGC bool
}

// SwitchesFromTags sets the switch for every profile build tag in tags.
// Unrelated tags are ignored.
func SwitchesFromTags(tags []string) Switches {
	var s Switches
	for _, tag := range tags {
		switch strings.TrimSpace(tag) {
		case RC.BuildTag():
			s.RC = true
		case ARC.BuildTag():
			s.ARC = true
		case GC.BuildTag():
			s.GC = true
		case AGC.BuildTag():
			s.AGC = true
		}
	}
	return s
}

// Selected returns the enabled profiles in selection order.
func (s Switches) Selected() []Profile {
	var out []Profile
	for _, p := range Profiles {
		if s.enabled(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s Switches) enabled(p Profile) bool {
	switch p {
	case RC:
		return s.RC
	case ARC:
		return s.ARC
	case GC:
		return s.GC
	case AGC:
		return s.AGC
	}
	return false
}

// Resolve returns the single enabled profile. Zero or several enabled
// profiles yield a *SelectionError.
func (s Switches) Resolve() (Profile, error) {
	selected := s.Selected()
	if len(selected) != 1 {
		return 0, &SelectionError{Selected: selected}
	}
	return selected[0], nil
}

// SelectionError reports a profile selection that is not exactly one.
type SelectionError struct {
	Selected []Profile
}

func (e *SelectionError) Error() string {
	if len(e.Selected) == 0 {
		tags := make([]string, len(Profiles))
		for i, p := range Profiles {
			tags[i] = p.BuildTag()
		}
		return fmt.Sprintf("you must enable exactly one of the %s memory profiles (build tags %s)",
			quotedList(Profiles, "or"), strings.Join(tags, ", "))
	}
	return fmt.Sprintf("the %s memory profiles are mutually exclusive and cannot be enabled at the same time; choose only one of them",
		quotedList(e.Selected, "and"))
}

func (e *SelectionError) Unwrap() error {
	if len(e.Selected) == 0 {
		return ErrNoProfile
	}
	return ErrConflictingProfiles
}

// quotedList renders profiles as `"a" and "b"` or `"a", "b", or "c"`.
func quotedList(ps []Profile, final string) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = fmt.Sprintf("%q", p.String())
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " " + final + " " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", " + final + " " + names[len(names)-1]
}

// buildSwitches is filled in by the profile tag files.
var buildSwitches Switches

var buildProfile = sync.OnceValues(func() (Profile, error) {
	return buildSwitches.Resolve()
})

// BuildProfile returns the profile compiled into this binary.
func BuildProfile() (Profile, error) {
	return buildProfile()
}

// mustBuildProfile is BuildProfile for code paths that cannot proceed
// without a profile.
func mustBuildProfile() Profile {
	p, err := BuildProfile()
	if err != nil {
		panic(fmt.Errorf("memory: %w", err))
	}
	return p
}

// CompiledTag returns the profile build tag this binary was built with, or
// "" when none was set.
func CompiledTag() string {
	return buildProfileTag
}
