// Package ratelimiter spaces outgoing Telegram calls per chat so the bot stays
// under the platform's flood limits.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	queueSize       = 1000
)

type request struct {
	ctx    context.Context
	chatID int64
	do     func(ctx context.Context) error
	done   chan error
}

type RateLimiter struct {
	queue    chan request
	lastSent map[int64]time.Time
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	log      *slog.Logger

	privateRate time.Duration
	groupRate   time.Duration
}

func New(log *slog.Logger) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		queue:       make(chan request, queueSize),
		lastSent:    make(map[int64]time.Time),
		ctx:         ctx,
		cancel:      cancel,
		log:         log,
		privateRate: privateChatRate,
		groupRate:   groupChatRate,
	}

	go rl.processQueue()

	return rl
}

// Do runs fn once the chat's rate allows it. Calls are executed one at a
// time in submission order.
func (rl *RateLimiter) Do(
	ctx context.Context,
	chatID int64,
	fn func(ctx context.Context) error,
) error {
	if err := rl.ctx.Err(); err != nil {
		return err
	}

	req := request{
		ctx:    ctx,
		chatID: chatID,
		do:     fn,
		done:   make(chan error, 1),
	}

	select {
	case rl.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	}
}

func (rl *RateLimiter) Stop() {
	rl.cancel()
}

func (rl *RateLimiter) processQueue() {
	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.done <- rl.ctx.Err()
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if err := rl.ctx.Err(); err != nil {
		req.done <- err
		return
	}

	rl.mu.Lock()
	lastSent, exists := rl.lastSent[req.chatID]
	rl.mu.Unlock()

	if exists {
		delay := rl.delay(req.chatID, lastSent, time.Now())

		if delay > 0 {
			rl.log.DebugContext(req.ctx, "Rate limiting message",
				"chatID", req.chatID,
				"delay", delay,
				"queueLen", len(rl.queue))

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.ctx.Done():
				timer.Stop()
				req.done <- req.ctx.Err()

				return
			case <-rl.ctx.Done():
				timer.Stop()
				req.done <- rl.ctx.Err()

				return
			}
		}
	}

	err := req.do(req.ctx)

	rl.mu.Lock()
	rl.lastSent[req.chatID] = time.Now()
	rl.mu.Unlock()

	req.done <- err
}

func (rl *RateLimiter) delay(chatID int64, lastSent time.Time, now time.Time) time.Duration {
	elapsed := now.Sub(lastSent)

	return max(rl.rate(chatID)-elapsed, 0)
}

// rate is slower for groups, which Telegram identifies by negative ids.
func (rl *RateLimiter) rate(chatID int64) time.Duration {
	if chatID < 0 {
		return rl.groupRate
	}
	return rl.privateRate
}
