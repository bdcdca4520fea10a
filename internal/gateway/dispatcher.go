package gateway

import (
	"sync"

	"github.com/taoyao-code/modop-server/internal/mapper"
	"github.com/taoyao-code/modop-server/internal/metrics"
)

// Dispatcher 跳转表的并发安全外壳。
// 核心表本身不加锁，网关侧用读写锁把运行期注册与查询/分发串行化，
// 并在此处维护表相关指标。
type Dispatcher struct {
	mu    sync.RWMutex
	table *mapper.Mapper
	appm  *metrics.AppMetrics
}

// NewDispatcher 包装一张跳转表
func NewDispatcher(table *mapper.Mapper, appm *metrics.AppMetrics) *Dispatcher {
	d := &Dispatcher{table: table, appm: appm}
	if appm != nil {
		appm.TableCapacity.Set(float64(table.Capacity()))
		appm.TableFilled.Set(float64(table.Filled()))
	}
	return d
}

// Add 运行期注册处理函数；表满或 handler 为 nil 时返回 false
func (d *Dispatcher) Add(code byte, h mapper.Handler) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	ok := d.table.Add(code, h)
	if ok && d.appm != nil {
		d.appm.TableFilled.Set(float64(d.table.Filled()))
	}
	return ok
}

// Validate 检查功能码是否已注册
func (d *Dispatcher) Validate(code uint) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table.Validate(code)
}

// Process 按功能码分发（handler 在读锁内同步执行）
func (d *Dispatcher) Process(code uint, value byte) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table.Process(code, value)
}

// Snapshot 返回容量、占用数与当前功能码，供诊断接口使用
func (d *Dispatcher) Snapshot() (capacity, filled uint, codes []uint) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table.Capacity(), d.table.Filled(), d.table.Codes()
}
