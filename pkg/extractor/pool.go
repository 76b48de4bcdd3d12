package extractor

import (
	"github.com/panjf2000/ants/v2"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/pkg/logger"
)

// Pool 并发执行只读的提取任务，结果通过每个任务独立的 channel 返回，
// 调用方按提交顺序读取即可保持原有顺序
type Pool struct {
	workers   int
	extractor *Extractor
	pool      *ants.Pool
}

func NewPool(extractor *Extractor, workers int) (*Pool, error) {
	if workers <= 0 {
		workers = internal.DefaultWorkers
	}

	logger.Get().Debug().Msgf("创建提取池，工作线程数: %d", workers)

	pool, err := ants.NewPool(workers)
	if err != nil {
		logger.Get().Error().Err(err).Msg("创建 goroutine 池失败")
		return nil, err
	}

	return &Pool{
		workers:   workers,
		extractor: extractor,
		pool:      pool,
	}, nil
}

// Submit 提交一个文件，返回只会收到一个结果的 channel
func (p *Pool) Submit(file internal.ScannedFile) <-chan internal.ExtractionResult {
	result := make(chan internal.ExtractionResult, 1)

	task := func() {
		result <- p.extractor.Extract(file)
	}

	if err := p.pool.Submit(task); err != nil {
		logger.Get().Debug().Err(err).Str("file", file.Path).Msg("提交提取任务失败，改为同步执行")
		task()
	}
	return result
}

func (p *Pool) Close() {
	logger.Get().Debug().Msg("关闭提取池")
	p.pool.Release()
}
