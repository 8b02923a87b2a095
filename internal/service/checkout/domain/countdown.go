package domain

import (
	"fmt"
	"sync"
	"time"
)

// UrgentThresholdSeconds 以下的剩余时间由展示方标记为紧急状态。
// 阈值判断属于消费方，计时器本身不区分紧急与否。
const UrgentThresholdSeconds = 300

// CountdownSnapshot 是某一时刻的倒计时读数。
type CountdownSnapshot struct {
	Remaining int
	Active    bool
}

// Countdown 是挂钟驱动的倒计时器：Start 置满并每秒递减，Stop 停表但不清零，
// 走到 0 自动停表。持有方在离开所属步骤或关闭向导时必须调用 Stop，
// 泄漏的计时器 goroutine 视为缺陷。
type Countdown struct {
	mu        sync.Mutex
	remaining int
	active    bool
	stopCh    chan struct{}
	interval  time.Duration
	subs      map[chan CountdownSnapshot]struct{}
}

func NewCountdown() *Countdown {
	return &Countdown{
		interval: time.Second,
		subs:     make(map[chan CountdownSnapshot]struct{}),
	}
}

// Start 将剩余时间重置为 seconds 并开始递减。重复 Start 会先停掉旧的循环。
func (c *Countdown) Start(seconds int) {
	c.mu.Lock()
	if c.active {
		close(c.stopCh)
	}
	c.remaining = seconds
	c.active = true
	c.stopCh = make(chan struct{})
	stop := c.stopCh
	snap := CountdownSnapshot{Remaining: c.remaining, Active: true}
	c.mu.Unlock()

	c.publish(snap)
	go c.run(stop)
}

// Stop 停止递减并确定性地回收内部 goroutine，剩余时间保持不变。
// 对已停止的计时器调用是无害的空操作。
func (c *Countdown) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	close(c.stopCh)
	snap := CountdownSnapshot{Remaining: c.remaining, Active: false}
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Countdown) Snapshot() CountdownSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CountdownSnapshot{Remaining: c.remaining, Active: c.active}
}

// Subscribe 注册一个接收每次读数变化的通道，消费方处理不过来时会丢帧而不是阻塞计时。
func (c *Countdown) Subscribe() chan CountdownSnapshot {
	ch := make(chan CountdownSnapshot, 8)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

func (c *Countdown) Unsubscribe(ch chan CountdownSnapshot) {
	c.mu.Lock()
	delete(c.subs, ch)
	c.mu.Unlock()
}

func (c *Countdown) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.tick() {
				return
			}
		}
	}
}

// tick 递减一秒，走到 0 时停表。返回值表示循环是否继续。
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.active = false
	}
	snap := CountdownSnapshot{Remaining: c.remaining, Active: c.active}
	c.mu.Unlock()

	c.publish(snap)
	return snap.Active
}

func (c *Countdown) publish(snap CountdownSnapshot) {
	c.mu.Lock()
	for ch := range c.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	c.mu.Unlock()
}

// FormatMMSS 把剩余秒数格式化为 MM:SS 展示串。
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
