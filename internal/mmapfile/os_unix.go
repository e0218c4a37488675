//go:build unix || linux || darwin || freebsd || openbsd || netbsd

package mmapfile

import (
	"os"

	"golang.org/x/sys/unix"
)

const pageSize = 4096

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

func osSync(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}
