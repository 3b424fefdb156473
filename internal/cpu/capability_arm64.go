//go:build arm64

package cpu

import xcpu "golang.org/x/sys/cpu"

func init() {
	hasASIMD = xcpu.ARM64.HasASIMD
	initCapabilities()
}
