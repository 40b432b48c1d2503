package monitor

// Fetch, render, wait, repeat.
// Any fetch or render failure ends Run; the last good image stays on disk.

import (
	"context"
	"fmt"
	"time"

	"elpris/internal/clients_api/tibber"
	"elpris/internal/features/pricechart"
	logging "elpris/internal/infra/log"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 30 * time.Second

	statusTimeLayout = "2006-01-02 15:04:05"
)

type PriceFetcher interface {
	FetchPrices(ctx context.Context) (*tibber.PriceInfo, error)
}

type ChartRenderer interface {
	Render(info *tibber.PriceInfo, state pricechart.RenderState) (pricechart.RenderResult, error)
}

// Publisher receives every freshly rendered chart.
type Publisher interface {
	Publish(ctx context.Context, result pricechart.RenderResult, info *tibber.PriceInfo) error
}

// Options configures a Driver. Zero values pick the defaults.
type Options struct {
	Schedule     cron.Schedule // default RefreshSchedule in Location
	PollInterval time.Duration
	Location     *time.Location
	Publisher    Publisher
	Now          func() time.Time
	Sleep        func(ctx context.Context, d time.Duration) error
}

// Driver owns the render state between cycles.
type Driver struct {
	fetcher   PriceFetcher
	renderer  ChartRenderer
	schedule  cron.Schedule
	poll      time.Duration
	location  *time.Location
	publisher Publisher
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error

	state pricechart.RenderState
}

func NewDriver(fetcher PriceFetcher, renderer ChartRenderer, opts Options) *Driver {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	schedule := opts.Schedule
	if schedule == nil {
		schedule = RefreshSchedule{Location: loc}
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &Driver{
		fetcher:   fetcher,
		renderer:  renderer,
		schedule:  schedule,
		poll:      poll,
		location:  loc,
		publisher: opts.Publisher,
		now:       now,
		sleep:     sleep,
		state:     pricechart.NewRenderState(),
	}
}

// State returns the state the next cycle will start from.
func (d *Driver) State() pricechart.RenderState {
	return d.state
}

// Run loops until ctx is cancelled (nil) or a cycle fails (that error).
func (d *Driver) Run(ctx context.Context) error {
	logging.LogInfo("Starting price chart driver",
		zap.Duration("pollInterval", d.poll),
		zap.String("timezone", d.location.String()))

	for {
		if _, err := d.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				logging.LogInfo("Driver stopped during cycle", zap.Error(err))
				return nil
			}
			return err
		}

		if err := d.wait(ctx); err != nil {
			logging.LogInfo("Driver stopped", zap.Error(err))
			return nil
		}
	}
}

// RunOnce performs one fetch and render cycle and advances the state.
func (d *Driver) RunOnce(ctx context.Context) (pricechart.RenderResult, error) {
	d.state.CycleCount++
	startTime := d.now()

	logging.LogStatus(fmt.Sprintf("Boot count: %d", d.state.CycleCount))
	logging.LogStatus(fmt.Sprintf("Previous max: %s", d.state.PreviousMaxY.String()))

	info, err := d.fetcher.FetchPrices(ctx)
	if err != nil {
		logging.LogError("Failed to fetch prices", zap.Int("cycle", d.state.CycleCount), zap.Error(err))
		return pricechart.RenderResult{}, err
	}

	result, err := d.renderer.Render(info, d.state)
	if err != nil {
		logging.LogError("Failed to render price chart", zap.Int("cycle", d.state.CycleCount), zap.Error(err))
		return pricechart.RenderResult{}, err
	}
	d.state.PreviousMaxY = result.NewMaxY

	logging.LogSuccess("Price chart updated",
		zap.Int("cycle", d.state.CycleCount),
		zap.String("path", result.Path),
		zap.String("maxY", result.NewMaxY.String()),
		zap.Int64("duration_ms", d.now().Sub(startTime).Milliseconds()))

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, result, info); err != nil {
			logging.LogWarn("Failed to publish price chart", zap.Error(err))
		}
	}

	return result, nil
}

// wait blocks until the next scheduled run, checking the clock every poll interval.
func (d *Driver) wait(ctx context.Context) error {
	next := d.schedule.Next(d.now().In(d.location))

	for {
		now := d.now().In(d.location)
		logging.LogStatus("Next run at: " + next.Format(statusTimeLayout))
		logging.LogStatus("Now: " + now.Format(statusTimeLayout))
		if !now.Before(next) {
			return nil
		}
		if err := d.sleep(ctx, d.poll); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
