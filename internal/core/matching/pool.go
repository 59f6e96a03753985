package matching

import "sync"

// pool 以固定數量的 worker 消化索引工作，結果由呼叫端依索引寫入
type pool struct {
	workers int
	queue   chan int
}

func newPool(workers, size int) *pool {
	return &pool{
		workers: workers,
		queue:   make(chan int, size),
	}
}

// run 對 [0, n) 每個索引呼叫 fn 一次，全部完成後返回
func (p *pool) run(n int, fn func(i int)) {
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range p.queue {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		p.queue <- i
	}
	close(p.queue)
	wg.Wait()
}
