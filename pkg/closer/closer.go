package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Func — сигнатура функции закрытия ресурса.
type Func func(ctx context.Context) error

// Closer копит функции закрытия ресурсов и запускает их в порядке LIFO.
// Если контекст отменяется до завершения, остаток закрывается принудительно
// с собственным таймаутом.
type Closer struct {
	funcs         []Func
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

func NewCloser(forcedTimeout time.Duration) *Closer {
	const defaultForcedTimeout = 2 * time.Second

	if forcedTimeout == 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add добавляет функцию в список закрытия
func (c *Closer) Add(f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, f)
}

// Close закрывает все зарегистрированные ресурсы. Повторные вызовы — no-op.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.mu.Unlock()

		var errs []string
		for i := len(funcs) - 1; i >= 0; i-- {
			done := make(chan error, 1)
			f := funcs[i]
			go func() {
				done <- f(ctx)
			}()

			select {
			case ferr := <-done:
				if ferr != nil {
					errs = append(errs, fmt.Sprintf("[!] %v", ferr))
				}
			case <-ctx.Done():
				errs = append(errs, c.forcedClose(funcs[:i+1])...)
				err = fmt.Errorf(
					"shutdown interrupted after %d/%d funcs:\n%s",
					len(funcs)-1-i, len(funcs), strings.Join(errs, "\n"),
				)
				return
			}
		}

		if len(errs) > 0 {
			err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
		}
	})

	return err
}

// forcedClose параллельно запускает оставшиеся функции закрытия.
func (c *Closer) forcedClose(funcs []Func) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, f := range funcs {
		f := f
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ferr := f(ctx); ferr != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %v", ferr))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
