package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen 熔断器打开时直接返回
var ErrOpen = errors.New("circuit breaker is open")

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// Config 熔断器配置
type Config struct {
	// FailureThreshold 连续失败多少次后打开
	FailureThreshold int
	// SuccessThreshold 半开状态下成功多少次后关闭
	SuccessThreshold int
	// Cooldown 打开状态持续多久后进入半开
	Cooldown time.Duration
	// HalfOpenMaxCalls 半开状态下同时放行的调用数
	HalfOpenMaxCalls int
	// OnStateChange 状态变化回调，在锁外调用
	OnStateChange func(from, to State)
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

type Breaker struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

func New(cfg Config) *Breaker {
	def := DefaultConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// SetClock 测试用
func (b *Breaker) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

// Execute 在熔断保护下执行 fn
// context 取消不计为失败
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.acquire(); err != nil {
		return err
	}
	err := fn(ctx)
	b.release(err)
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	from := b.state
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.state = StateHalfOpen
		b.successes = 0
		b.inFlight = 0
	}
	to := b.state

	var err error
	switch b.state {
	case StateOpen:
		err = ErrOpen
	case StateHalfOpen:
		if b.inFlight >= b.cfg.HalfOpenMaxCalls {
			err = ErrOpen
		} else {
			b.inFlight++
		}
	}
	b.mu.Unlock()

	b.notify(from, to)
	return err
}

func (b *Breaker) release(err error) {
	b.mu.Lock()
	from := b.state
	if b.state == StateHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}

	switch {
	case err == nil:
		b.failures = 0
		if b.state == StateHalfOpen {
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.state = StateClosed
			}
		}
	case errors.Is(err, context.Canceled):
	default:
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
			b.failures = 0
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}

// State 当前状态
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset 回到关闭状态
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.inFlight = 0
	b.mu.Unlock()
	b.notify(from, StateClosed)
}
