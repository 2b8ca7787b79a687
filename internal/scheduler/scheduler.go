package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/subtelemetry/internal/clock"
	"github.com/railzwaylabs/subtelemetry/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var Module = fx.Module("scheduler",
	fx.Provide(New),
)

var (
	ErrInvalidHook     = errors.New("invalid_hook")
	ErrInvalidInterval = errors.New("invalid_interval")
	ErrNoHandler       = errors.New("no_handler")
)

// Handler runs one occurrence of an action with its stored arguments.
type Handler func(ctx context.Context, args datatypes.JSON) error

// Recurring describes a recurring action to register.
type Recurring struct {
	Hook         string
	Group        string
	Args         any
	InitialDelay time.Duration
	Interval     time.Duration
}

type Scheduler struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	cfg   config.SchedulerConfig
	genID *snowflake.Node

	mu       sync.RWMutex
	handlers map[string]Handler
	cron     *cron.Cron
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
	GenID  *snowflake.Node
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:       p.DB,
		log:      p.Log.Named("scheduler"),
		clock:    p.Clock,
		cfg:      p.Config.Scheduler,
		genID:    p.GenID,
		handlers: map[string]Handler{},
	}
}

// Handle binds a handler to a hook. Actions for hooks without a handler are
// claimed and recorded as failed.
func (s *Scheduler) Handle(hook string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[hook] = h
}

func (s *Scheduler) handler(hook string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[hook]
	return h, ok
}

// ScheduleRecurring registers the action unless one already exists for the
// same hook and group. It reports whether a new action was created.
func (s *Scheduler) ScheduleRecurring(ctx context.Context, r Recurring) (bool, error) {
	if r.Hook == "" {
		return false, ErrInvalidHook
	}
	if r.Interval < time.Second {
		return false, ErrInvalidInterval
	}

	args, err := json.Marshal(r.Args)
	if err != nil {
		return false, fmt.Errorf("encode args: %w", err)
	}

	now := s.clock.Now(ctx)
	action := Action{
		ID:              s.genID.Generate(),
		Hook:            r.Hook,
		GroupName:       r.Group,
		Args:            datatypes.JSON(args),
		IntervalSeconds: int64(r.Interval / time.Second),
		NextRunAt:       now.Add(r.InitialDelay),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hook"}, {Name: "group_name"}},
			DoNothing: true,
		}).
		Create(&action)
	if res.Error != nil {
		return false, res.Error
	}

	created := res.RowsAffected == 1
	s.log.Info("recurring action registered",
		zap.String("hook", r.Hook),
		zap.String("group", r.Group),
		zap.Bool("created", created),
		zap.Time("next_run_at", action.NextRunAt),
	)
	return created, nil
}

// Unschedule removes the action for the hook and group.
func (s *Scheduler) Unschedule(ctx context.Context, hook, group string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("hook = ? AND group_name = ?", hook, group).
		Delete(&Action{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Pending returns the registered action for the hook and group, if any.
func (s *Scheduler) Pending(ctx context.Context, hook, group string) (*Action, error) {
	var actions []Action
	err := s.db.WithContext(ctx).
		Where("hook = ? AND group_name = ?", hook, group).
		Limit(1).
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, nil
	}
	return &actions[0], nil
}

// RunDue runs every action whose time has come, up to the batch size. Each
// action is claimed by bumping its version, so concurrent pollers never run
// the same occurrence twice.
func (s *Scheduler) RunDue(ctx context.Context) (int, error) {
	ctx, run := s.ensureJobRun(ctx, "run_due")
	s.logJobStart(ctx, run)
	defer s.logJobFinish(ctx, run)

	now := s.clock.Now(ctx)
	limit := s.cfg.BatchSize
	if limit <= 0 {
		limit = 25
	}

	var due []Action
	err := s.db.WithContext(ctx).
		Where("next_run_at <= ?", now).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.poll.failed", "", err)
		return 0, err
	}

	for _, action := range due {
		claimed, err := s.claim(ctx, action, now)
		if err != nil {
			s.logSchedulerError(ctx, run, "scheduler.claim.failed", action.Hook, err)
			continue
		}
		if !claimed {
			continue
		}
		s.execute(ctx, run, action)
	}
	return run.Processed(), nil
}

func (s *Scheduler) claim(ctx context.Context, action Action, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&Action{}).
		Where("id = ? AND version = ?", action.ID, action.Version).
		Updates(map[string]any{
			"version":     gorm.Expr("version + 1"),
			"next_run_at": now.Add(action.Interval()),
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Scheduler) execute(ctx context.Context, run *jobRun, action Action) {
	started := s.clock.Now(ctx)

	var runErr error
	if h, ok := s.handler(action.Hook); ok {
		runErr = safeCall(ctx, h, action.Args)
	} else {
		runErr = fmt.Errorf("%w: %s", ErrNoHandler, action.Hook)
	}

	lastError := ""
	if runErr != nil {
		lastError = runErr.Error()
		s.logSchedulerError(ctx, run, "scheduler.action.failed", action.Hook, runErr)
	} else {
		run.AddProcessed(1)
	}

	err := s.db.WithContext(ctx).
		Model(&Action{}).
		Where("id = ?", action.ID).
		Updates(map[string]any{
			"last_run_at": started,
			"last_error":  lastError,
		}).Error
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.record.failed", action.Hook, err)
	}
}

func safeCall(ctx context.Context, h Handler, args datatypes.JSON) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, args)
}

// Start polls for due actions on the configured interval. A poll that is
// still running when the next one fires is skipped.
func (s *Scheduler) Start() {
	poll := s.cfg.PollInterval
	if poll <= 0 {
		poll = 30 * time.Second
	}

	logger := cronLogger{log: s.log.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(cron.Every(poll), cron.FuncJob(func() {
		if _, err := s.RunDue(context.Background()); err != nil {
			s.log.Warn("scheduler poll failed", zap.Error(err))
		}
	}))
	c.Start()

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	s.log.Info("scheduler started", zap.Duration("poll_interval", poll))
}

// Stop waits for a running poll to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run ties the polling loop to the application lifecycle.
func Run(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: s.Stop,
	})
}
