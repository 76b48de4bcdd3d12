package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

var ErrCollisionExhausted = errors.New("重名尝试次数已用尽")

// Resolver 记录每个目录中已被占用的文件名及其所有者，
// 为候选名称依次尝试 "name (1).ext"、"name (2).ext"……直到找到未被占用的名称。
// 目标文件系统不区分大小写，名称比较前统一做 NFC 规范化和大小写折叠。
type Resolver struct {
	mu          sync.Mutex
	maxAttempts int
	owners      map[string]map[string]string // 目录 → 名称键 → 占用该名称的文件路径
	seeded      map[string]bool
}

func NewResolver(maxAttempts int) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = internal.DefaultMaxAttempts
	}
	return &Resolver{
		maxAttempts: maxAttempts,
		owners:      make(map[string]map[string]string),
		seeded:      make(map[string]bool),
	}
}

// Seed 读取目录中已有的条目并登记为已占用，每个目录只读取一次
func (r *Resolver) Seed(fs afero.Fs, dir string) error {
	dir = filepath.Clean(dir)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seeded[dir] {
		return nil
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return fmt.Errorf("读取目录失败: %w", err)
	}

	for _, entry := range entries {
		r.claimLocked(dir, entry.Name(), filepath.Join(dir, entry.Name()))
	}
	r.seeded[dir] = true

	logger.Get().Debug().Msgf("目录 %s 已登记 %d 个现有条目", dir, len(entries))
	return nil
}

// Claim 把名称登记给 owner，已被其他文件占用时返回 false
func (r *Resolver) Claim(dir, name, owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimLocked(filepath.Clean(dir), name, owner)
}

// Resolve 为候选名称找到目录内唯一的最终名称。
// 名称已属于 owner 自己时直接返回，因此重复运行不会产生新名称。
func (r *Resolver) Resolve(dir string, candidate internal.NameCandidate, owner string) (internal.ResolvedName, error) {
	dir = filepath.Clean(dir)

	r.mu.Lock()
	defer r.mu.Unlock()

	for counter := 0; counter <= r.maxAttempts; counter++ {
		base := candidate.Sanitized
		if counter > 0 {
			base = fmt.Sprintf("%s (%d)", candidate.Sanitized, counter)
		}

		if r.claimLocked(dir, base+candidate.Ext, owner) {
			if counter > 0 {
				logger.Get().Debug().Msgf("名称冲突: %s -> %s%s", candidate.FileName(), base, candidate.Ext)
			}
			return internal.ResolvedName{Base: base, Ext: candidate.Ext, Counter: counter}, nil
		}
	}

	return internal.ResolvedName{}, fmt.Errorf("%w: %s", ErrCollisionExhausted, candidate.FileName())
}

func (r *Resolver) claimLocked(dir, name, owner string) bool {
	claimed, ok := r.owners[dir]
	if !ok {
		claimed = make(map[string]string)
		r.owners[dir] = claimed
	}

	key := nameKey(name)
	if current, exists := claimed[key]; exists && current != owner {
		return false
	}
	claimed[key] = owner
	return true
}

// nameKey 返回用于比较的名称键
func nameKey(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}
