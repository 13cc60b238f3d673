//go:build !linux && !darwin

package repo

import "os"

func statSnapshot(info os.FileInfo) FileStat {
	return fallbackStat(info)
}
