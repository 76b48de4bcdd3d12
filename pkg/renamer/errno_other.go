//go:build !windows

package renamer

import "syscall"

func isLockedErrno(errno syscall.Errno) bool {
	return errno == syscall.EBUSY || errno == syscall.ETXTBSY
}

func isTooLongErrno(errno syscall.Errno) bool {
	return errno == syscall.ENAMETOOLONG
}
