// Package observe drives a headless browser to produce the judgment
// pipeline's inputs: a settled before/after document pair per interaction
// plus the per-sensor summaries. All capture trouble is folded into sensor
// outcomes here; judgment downstream never retries or re-captures.
package observe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/odavlstudio/verax-sub011/internal/capture"
	"github.com/odavlstudio/verax-sub011/internal/logging"
	"github.com/odavlstudio/verax-sub011/internal/promise"
)

// Config controls the browser session.
type Config struct {
	Headless bool
	Timeout  time.Duration // per-interaction budget
	Settle   time.Duration // wait after navigation and after the interaction
}

// DefaultConfig is tuned for CI: headless, generous settle.
func DefaultConfig() Config {
	return Config{Headless: true, Timeout: 30 * time.Second, Settle: 1500 * time.Millisecond}
}

// Observer owns one browser allocator for a scan.
type Observer struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config) *Observer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultConfig().Settle
	}
	return &Observer{cfg: cfg, log: logging.New("observe")}
}

// ObserveAll captures one observation per promise, sequentially, in catalog
// order. A promise whose capture breaks still yields an observation — with
// failed outcomes — so judgment sees every interaction.
func (o *Observer) ObserveAll(ctx context.Context, target string, promises []promise.Promise) ([]capture.Observation, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	observations := make([]capture.Observation, 0, len(promises))
	for i, p := range promises {
		obs := o.observeOne(allocCtx, target, p, i)
		observations = append(observations, obs)
	}
	return observations, nil
}

func (o *Observer) observeOne(allocCtx context.Context, target string, p promise.Promise, index int) capture.Observation {
	start := time.Now()
	obs := capture.Observation{PromiseID: p.ID, InteractionIndex: index}

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	runCtx, cancelTimeout := context.WithTimeout(browserCtx, o.cfg.Timeout)
	defer cancelTimeout()

	col := newCollector()
	chromedp.ListenTarget(runCtx, col.handle)

	if err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(o.cfg.Settle),
	); err != nil {
		o.log.Warn("navigation failed", "promise", p.ID, "err", err)
		obs.Outcomes = append(obs.Outcomes, capture.Failure(capture.SensorDOM, err.Error(), "navigate"))
		obs.ElapsedMs = time.Since(start).Milliseconds()
		return obs
	}

	before := o.snapshot(runCtx, &obs, "before")
	obs.BeforeHTML = before.html

	// Only activity caused by the interaction counts as its feedback.
	col.reset()

	interacted := o.interact(runCtx, p, &obs)
	if interacted {
		_ = chromedp.Run(runCtx, chromedp.Sleep(o.cfg.Settle))
	}

	after := o.snapshot(runCtx, &obs, "after")
	obs.AfterHTML = after.html

	o.summarize(&obs, col, before, after)
	obs.ElapsedMs = time.Since(start).Milliseconds()
	return obs
}

// interact performs the promised interaction. A missing selector is a
// capture fact, not an abort: the observation records it and judgment
// proceeds on whatever the sensors saw.
func (o *Observer) interact(ctx context.Context, p promise.Promise, obs *capture.Observation) bool {
	var present bool
	err := chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf("document.querySelector(%q) !== null", p.Selector), &present))
	if err != nil || !present {
		msg := fmt.Sprintf("selector %q not found", p.Selector)
		if err != nil {
			msg = err.Error()
		}
		o.log.Warn("interaction skipped", "promise", p.ID, "reason", msg)
		obs.Outcomes = append(obs.Outcomes, capture.Failure(capture.SensorDOM, msg, "interaction"))
		return false
	}

	var action chromedp.Action
	switch p.Interaction {
	case "fill":
		action = chromedp.SendKeys(p.Selector, p.Value, chromedp.ByQuery)
	case "submit":
		action = chromedp.Submit(p.Selector, chromedp.ByQuery)
	default:
		action = chromedp.Click(p.Selector, chromedp.ByQuery)
	}
	if err := chromedp.Run(ctx, action); err != nil {
		o.log.Warn("interaction failed", "promise", p.ID, "err", err)
		obs.Outcomes = append(obs.Outcomes, capture.Failure(capture.SensorDOM, err.Error(), "interaction"))
		return false
	}
	obs.Outcomes = append(obs.Outcomes, capture.Success(capture.SensorDOM, nil, "interaction"))
	return true
}
