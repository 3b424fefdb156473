// Package cpu reports the hardware population-count support of the host.
//
// Hamming distances are computed with math/bits, which the compiler lowers to
// POPCNT on amd64 (when available) and to the ASIMD CNT instruction on arm64.
// The report is informational and appears in build logs.
package cpu

import (
	"os"
	"runtime"
	"strings"
)

// Popcount identifies how population counts are executed.
type Popcount uint8

const (
	// Generic is the portable software fallback.
	Generic Popcount = iota
	// POPCNT is the x86-64 POPCNT instruction.
	POPCNT
	// ASIMD is the ARM64 vector CNT instruction.
	ASIMD
)

// String returns the string representation of a Popcount.
func (p Popcount) String() string {
	switch p {
	case Generic:
		return "generic"
	case POPCNT:
		return "popcnt"
	case ASIMD:
		return "asimd"
	default:
		return "unknown"
	}
}

// ParsePopcount parses a string into a Popcount value.
func ParsePopcount(s string) (Popcount, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "popcnt":
		return POPCNT, true
	case "asimd":
		return ASIMD, true
	default:
		return Generic, false
	}
}

var (
	active      Popcount
	hasOverride bool

	// set by platform-specific init
	hasPOPCNT bool
	hasASIMD  bool
)

// initCapabilities runs after platform feature detection.
// HAMLSH_POPCOUNT=generic forces the reported capability down, e.g. to
// compare logs across hosts.
func initCapabilities() {
	if override := os.Getenv("HAMLSH_POPCOUNT"); override != "" {
		if p, ok := ParsePopcount(override); ok && available(p) {
			hasOverride = true
			active = p
			return
		}
	}
	active = detect()
}

func available(p Popcount) bool {
	switch p {
	case Generic:
		return true
	case POPCNT:
		return hasPOPCNT
	case ASIMD:
		return hasASIMD
	default:
		return false
	}
}

func detect() Popcount {
	switch runtime.GOARCH {
	case "amd64":
		if hasPOPCNT {
			return POPCNT
		}
	case "arm64":
		if hasASIMD {
			return ASIMD
		}
	}
	return Generic
}

// Active returns the detected popcount capability.
func Active() Popcount {
	return active
}

// IsOverridden returns true if HAMLSH_POPCOUNT selected the capability.
func IsOverridden() bool {
	return hasOverride
}
