//go:build linux

package repo

import (
	"os"
	"syscall"
)

// statSnapshot captures the index stat fields from a stat result. Values
// are truncated to the 32-bit widths the index file stores.
func statSnapshot(info os.FileInfo) FileStat {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fallbackStat(info)
	}
	return FileStat{
		CtimeSec:  uint32(st.Ctim.Sec),
		CtimeNsec: uint32(st.Ctim.Nsec),
		MtimeSec:  uint32(st.Mtim.Sec),
		MtimeNsec: uint32(st.Mtim.Nsec),
		Dev:       uint32(st.Dev),
		Ino:       uint32(st.Ino),
		UID:       st.Uid,
		GID:       st.Gid,
	}
}
