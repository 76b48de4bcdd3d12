//go:build windows

package renamer

import "syscall"

const (
	errorSharingViolation = 32
	errorLockViolation    = 33
	errorFilenameExceeded = 206
)

func isLockedErrno(errno syscall.Errno) bool {
	return errno == errorSharingViolation || errno == errorLockViolation
}

func isTooLongErrno(errno syscall.Errno) bool {
	return errno == errorFilenameExceeded || errno == syscall.ENAMETOOLONG
}
