package hasher

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/pkg/logger"
)

// CalculateHash 计算文件内容的 xxHash
func CalculateHash(fs afero.Fs, filePath string) (uint64, error) {
	logger.Get().Debug().Msgf("计算文件哈希: %s", filePath)

	file, err := fs.Open(filePath)
	if err != nil {
		logger.Get().Error().Err(err).Msgf("无法打开文件: %s", filePath)
		return 0, err
	}
	defer file.Close()

	hash := xxhash.New()
	if _, err := io.Copy(hash, file); err != nil {
		logger.Get().Error().Err(err).Msgf("计算哈希失败: %s", filePath)
		return 0, err
	}

	result := hash.Sum64()
	logger.Get().Trace().Msgf("文件哈希计算完成: %s -> %x", filePath, result)
	return result, nil
}

// Digest 返回文件内容哈希的十六进制表示
func Digest(fs afero.Fs, filePath string) (string, error) {
	h, err := CalculateHash(fs, filePath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h), nil
}

// PathToken 返回路径哈希的前 8 位十六进制，只依赖路径本身，与文件内容无关
func PathToken(path string) string {
	sum := xxhash.Sum64String(filepath.Clean(path))
	return fmt.Sprintf("%016x", sum)[:8]
}
