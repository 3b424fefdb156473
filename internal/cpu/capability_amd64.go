//go:build amd64

package cpu

import xcpu "golang.org/x/sys/cpu"

func init() {
	hasPOPCNT = xcpu.X86.HasPOPCNT
	initCapabilities()
}
