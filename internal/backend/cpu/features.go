package cpu

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Features describes the vector extensions the host offers. They decide
// which tile widths the blocked GEMM variants are tuned with.
type Features struct {
	Arch      string
	AVX2      bool
	AVX512    bool
	FMA       bool
	NEON      bool
	ASIMDHalf bool
}

// DetectFeatures reads the host CPU features.
func DetectFeatures() Features {
	return Features{
		Arch:      runtime.GOARCH,
		AVX2:      cpu.X86.HasAVX2,
		AVX512:    cpu.X86.HasAVX512F,
		FMA:       cpu.X86.HasFMA,
		NEON:      cpu.ARM64.HasASIMD,
		ASIMDHalf: cpu.ARM64.HasFPHP && cpu.ARM64.HasASIMDHP,
	}
}

// DefaultTile returns the tile edge of the default blocked kernel.
func (f Features) DefaultTile() int {
	switch {
	case f.AVX512:
		return 64
	case f.AVX2 && f.FMA, f.NEON:
		return 32
	default:
		return 16
	}
}

// String lists the detected extensions.
func (f Features) String() string {
	var names []string
	for _, x := range []struct {
		on   bool
		name string
	}{
		{f.AVX2, "avx2"},
		{f.AVX512, "avx512f"},
		{f.FMA, "fma"},
		{f.NEON, "neon"},
		{f.ASIMDHalf, "fp16"},
	} {
		if x.on {
			names = append(names, x.name)
		}
	}
	if len(names) == 0 {
		return f.Arch + " (scalar)"
	}
	return f.Arch + " (" + strings.Join(names, ", ") + ")"
}
