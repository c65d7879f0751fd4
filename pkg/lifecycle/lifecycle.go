package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Manager 协调一组后台服务的停机。
// 上层模块（如shutdown）创建它，把句柄(Handle)分发给各个后台Goroutine，
// 停机时广播取消信号并等待所有句柄关闭。
type Manager struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	services map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager 创建一个新的生命周期管理器。
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		services: make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// NewServiceHandle 为一个后台服务注册并返回生命周期句柄。
// 同名服务不允许重复注册。
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.services[name] {
		return nil, fmt.Errorf("生命周期管理器: 服务 '%s' 已被注册", name)
	}
	m.services[name] = true
	m.wg.Add(1)
	fmt.Printf("生命周期管理器: 服务 [%s] 已注册。\n", name)

	return &Handle{
		ctx: m.ctx,
		Close: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if !m.services[name] {
				return
			}
			delete(m.services, name)
			m.wg.Done()
		},
	}, nil
}

// Shutdown 向所有已注册的服务广播停机信号。
func (m *Manager) Shutdown() {
	fmt.Println("生命周期管理器: 广播停机信号...")
	m.cancel()
}

// WaitWithTimeout 等待所有服务关闭或超时，
// 超时后返回仍未关闭的服务名列表。
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		return remaining
	}
}

// Handle 是分发给单个后台服务的生命周期控制器。
type Handle struct {
	ctx context.Context
	// Close 通知管理器本服务已经退出，
	// 应该在服务Goroutine退出前通过defer调用。
	Close func()
}

// Ctx 返回管理器的停机上下文，可直接传给带上下文的阻塞调用。
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 返回停机信号channel，供服务在select中监听。
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err 在停机信号发出后返回取消原因。
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 休眠指定时长，停机信号会提前唤醒并返回取消错误。
// 后台循环应该用它代替time.Sleep和ticker。
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)
	select {
	case <-h.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return h.Err()
	case <-timer.C:
		return nil
	}
}
