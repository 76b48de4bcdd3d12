package ledger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/moyu-x/doc-renamer/pkg/logger"
)

// 单行事件的最大长度
const maxLineSize = 1 << 20

// FileStore 以 JSON Lines 格式追加写入的旁路日志文件。
// 每次追加后都会 Sync，崩溃时最多丢失写了一半的最后一行，读取时跳过该行。
type FileStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	file afero.File
}

func OpenFileStore(fs afero.Fs, path string) (*FileStore, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	// 打开或创建文件（追加模式）
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}

	if err := terminateLastLine(fs, path, file); err != nil {
		file.Close()
		return nil, fmt.Errorf("修复日志文件失败: %w", err)
	}

	logger.Get().Debug().Msgf("打开日志文件: %s", path)
	return &FileStore{fs: fs, path: path, file: file}, nil
}

// terminateLastLine 上次崩溃留下没有换行的半行时补一个换行，
// 新事件从新的一行开始，不会和残缺内容拼在一起
func terminateLastLine(fs afero.Fs, path string, file afero.File) error {
	info, err := fs.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}

	r, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	last := make([]byte, 1)
	if _, err := r.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}

	logger.Get().Warn().Msgf("日志文件末尾有不完整的行，已补齐换行: %s", path)
	if _, err := file.Write([]byte{'\n'}); err != nil {
		return err
	}
	return file.Sync()
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Append(ev Event) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("序列化日志事件失败: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(line); err != nil {
		return err
	}
	return s.file.Sync()
}

// Events 读取全部事件，无法解析的行记录警告后跳过
func (s *FileStore) Events() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readEvents(s.fs, s.path)
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// ReadFileEvents 只读方式读取日志文件，文件不存在时返回空
func ReadFileEvents(fs afero.Fs, path string) ([]Event, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return nil, err
	}
	return readEvents(fs, path)
}

func readEvents(fs afero.Fs, path string) ([]Event, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("读取日志文件失败: %w", err)
	}

	var events []Event
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			logger.Get().Warn().Err(err).Msgf("跳过无法解析的日志行: %s:%d", path, lineNo)
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("读取日志文件失败: %w", err)
	}

	return events, nil
}
