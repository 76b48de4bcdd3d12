package renamer

import (
	"errors"
	"io/fs"
	"syscall"

	"github.com/moyu-x/doc-renamer/pkg/naming"
)

var (
	ErrNoFiles      = errors.New("没有需要处理的文件")
	ErrNoCategories = errors.New("没有选择任何文件类别")
)

// 单个文件失败的原因
const (
	ReasonPermission      = "permission denied"
	ReasonLocked          = "file locked"
	ReasonPathTooLong     = "path too long"
	ReasonSourceMissing   = "source missing"
	ReasonDestExists      = "destination exists"
	ReasonCollision       = "name collision exhausted"
	ReasonLedgerWriteFail = "ledger write failed"
)

// classifyError 把文件系统错误归类为可读的失败原因
func classifyError(err error) string {
	var errno syscall.Errno
	switch {
	case err == nil:
		return ""
	case errors.Is(err, naming.ErrCollisionExhausted):
		return ReasonCollision
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermission
	case errors.Is(err, fs.ErrNotExist):
		return ReasonSourceMissing
	case errors.Is(err, fs.ErrExist):
		return ReasonDestExists
	case errors.As(err, &errno) && isLockedErrno(errno):
		return ReasonLocked
	case errors.As(err, &errno) && isTooLongErrno(errno):
		return ReasonPathTooLong
	}
	return err.Error()
}
