package observe

import (
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	cdpruntime "github.com/chromedp/cdproto/runtime"
)

// collector accumulates CDP events between reset points. Events arrive on
// the browser's event goroutine, so every counter is mutex-guarded.
type collector struct {
	mu sync.Mutex

	requests            int
	failedRequests      int
	writeRequests       int
	blockedWrites       int
	consoleErrors       int
	consoleWarnings     int
	unhandledRejections int
}

func newCollector() *collector { return &collector{} }

func (c *collector) handle(ev any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		c.requests++
		if isWriteMethod(e.Request.Method) {
			c.writeRequests++
		}
	case *network.EventLoadingFailed:
		c.failedRequests++
		if e.BlockedReason != "" {
			c.blockedWrites++
		}
	case *cdpruntime.EventConsoleAPICalled:
		switch e.Type {
		case cdpruntime.APITypeError:
			c.consoleErrors++
		case cdpruntime.APITypeWarning:
			c.consoleWarnings++
		}
	case *cdpruntime.EventExceptionThrown:
		if d := e.ExceptionDetails; d != nil && strings.Contains(strings.ToLower(d.Text), "unhandled") {
			c.unhandledRejections++
		} else {
			c.consoleErrors++
		}
	}
}

// reset clears all counters; called between the before snapshot and the
// interaction so navigation traffic never counts as interaction feedback.
func (c *collector) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = 0
	c.failedRequests = 0
	c.writeRequests = 0
	c.blockedWrites = 0
	c.consoleErrors = 0
	c.consoleWarnings = 0
	c.unhandledRejections = 0
}

func (c *collector) counts() (requests, failed, writes, blocked, errors, warnings, rejections int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests, c.failedRequests, c.writeRequests, c.blockedWrites,
		c.consoleErrors, c.consoleWarnings, c.unhandledRejections
}

func isWriteMethod(m string) bool {
	switch strings.ToUpper(m) {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}
