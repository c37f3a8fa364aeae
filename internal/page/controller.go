package page

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"meettimer/internal/bus"
	"meettimer/internal/core/message"
	"meettimer/internal/core/model"
	"meettimer/internal/core/timekeeper"
	"meettimer/internal/core/visibility"
	"meettimer/internal/logfields"
	"meettimer/internal/metrics"
	"meettimer/internal/storage"
)

const eventBuffer = 64

// Config contains runtime options for a page controller.
type Config struct {
	TickInterval  time.Duration
	PollInterval  time.Duration
	DebounceDelay time.Duration
	Classifier    visibility.Classifier
	Detector      visibility.Detector
}

// DefaultConfig returns one-second ticks, a five-second fallback poll and a
// one-second mutation debounce.
func DefaultConfig() Config {
	return Config{
		TickInterval:  time.Second,
		PollInterval:  5 * time.Second,
		DebounceDelay: time.Second,
		Classifier:    visibility.DefaultClassifier(),
		Detector:      visibility.DefaultDetector(),
	}
}

// Deps are the collaborators of a page controller.
type Deps struct {
	Target    bus.Target
	Document  Document
	Mount     Mount
	Store     storage.Store
	Sender    bus.Sender
	Scheduler Scheduler
	Navigator Navigator
	Clock     clockwork.Clock
	Logger    *slog.Logger
	Metrics   metrics.Recorder
}

// Controller keeps at most one widget on a page in sync with the shared
// timer. All state is owned by the goroutine calling Run or Dispatch.
type Controller struct {
	config    Config
	target    bus.Target
	document  Document
	mount     Mount
	store     *storage.Safe
	sender    bus.Sender
	scheduler Scheduler
	navigator Navigator
	logger    *slog.Logger
	metrics   metrics.Recorder

	keeper         *timekeeper.Keeper
	widget         Widget
	lastURL        string
	stopTick       func()
	cancelDebounce func()
	events         chan Event
}

// New creates a page controller.
func New(config Config, deps Deps) *Controller {
	defaults := DefaultConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = defaults.DebounceDelay
	}
	if config.Classifier == (visibility.Classifier{}) {
		config.Classifier = defaults.Classifier
	}
	if config.Detector == nil {
		config.Detector = defaults.Detector
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(logfields.Context("page"), logfields.Target(string(deps.Target)))
	recorder := metrics.OrNoop(deps.Metrics)

	return &Controller{
		config:    config,
		target:    deps.Target,
		document:  deps.Document,
		mount:     deps.Mount,
		store:     storage.NewSafe(deps.Store, logger, recorder),
		sender:    deps.Sender,
		scheduler: deps.Scheduler,
		navigator: deps.Navigator,
		logger:    logger,
		metrics:   recorder,
		keeper:    timekeeper.New(deps.Clock),
		events:    make(chan Event, eventBuffer),
	}
}

// Post queues an event without blocking. It is safe to call from any goroutine.
func (controller *Controller) Post(event Event) bool {
	select {
	case controller.events <- event:
		return true
	default:
		return false
	}
}

// Trigger queues a visibility re-evaluation request.
func (controller *Controller) Trigger(trigger Trigger) bool {
	return controller.Post(Event{Kind: EventTrigger, Trigger: trigger})
}

// Run loads the page and processes events until ctx is done.
func (controller *Controller) Run(ctx context.Context, inbox <-chan message.Message) error {
	var stopPoll func()
	if controller.scheduler != nil {
		cancel, err := controller.scheduler.Every("poll-"+string(controller.target), controller.config.PollInterval, func() {
			controller.Trigger(TriggerPoll)
		})
		if err != nil {
			controller.logger.Warn("Visibility poll disabled", logfields.Error(err))
		} else {
			stopPoll = cancel
		}
	}
	defer func() {
		if stopPoll != nil {
			stopPoll()
		}
		controller.Close()
	}()

	controller.Dispatch(ctx, Event{Kind: EventTrigger, Trigger: TriggerLoad})
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-inbox:
			if !ok {
				inbox = nil
				continue
			}
			controller.Dispatch(ctx, Event{Kind: EventMessage, Message: msg})
		case event := <-controller.events:
			controller.Dispatch(ctx, event)
		}
	}
}

// Close tears down the widget and all scheduled work. Stored state is untouched.
func (controller *Controller) Close() {
	if controller.cancelDebounce != nil {
		controller.cancelDebounce()
		controller.cancelDebounce = nil
	}
	controller.unmountWidget()
}

// Dispatch handles one event.
func (controller *Controller) Dispatch(ctx context.Context, event Event) {
	switch event.Kind {
	case EventTrigger:
		controller.handleTrigger(ctx, event.Trigger)
	case EventReevaluate:
		controller.reevaluate(ctx, event.Trigger)
	case EventTick:
		controller.tick(ctx)
	case EventMessage:
		controller.handleMessage(ctx, event.Message)
	}
}

// Mounted reports whether the widget is currently shown.
func (controller *Controller) Mounted() bool {
	return controller.widget != nil
}

// State returns the in-memory timer copy.
func (controller *Controller) State() model.TimerState {
	return controller.keeper.State()
}

func (controller *Controller) handleTrigger(ctx context.Context, trigger Trigger) {
	switch trigger {
	case TriggerLoad:
		controller.reload(ctx)
		controller.reevaluate(ctx, trigger)
	case TriggerMutation:
		controller.debounce()
	case TriggerPoll, TriggerFocus:
		controller.refreshVisibilityFlags(ctx)
		controller.reevaluate(ctx, trigger)
	default:
		controller.reevaluate(ctx, trigger)
	}
}

func (controller *Controller) debounce() {
	if controller.scheduler == nil {
		controller.Post(Event{Kind: EventReevaluate, Trigger: TriggerMutation})
		return
	}
	if controller.cancelDebounce != nil {
		controller.cancelDebounce()
	}
	controller.cancelDebounce = controller.scheduler.After(controller.config.DebounceDelay, func() {
		controller.Post(Event{Kind: EventReevaluate, Trigger: TriggerMutation})
	})
}

func (controller *Controller) reevaluate(ctx context.Context, trigger Trigger) {
	snapshot, err := controller.snapshot()
	if err != nil {
		controller.logger.Debug("Page snapshot unavailable", logfields.Trigger(string(trigger)), logfields.Error(err))
	}

	if snapshot.URL != controller.lastURL {
		navigated := controller.lastURL != ""
		controller.lastURL = snapshot.URL
		if controller.navigator != nil {
			controller.navigator.Navigate(controller.target, snapshot.URL)
		}
		if navigated {
			controller.logger.Debug("Page navigated", logfields.URL(snapshot.URL))
			if controller.widget != nil {
				controller.reload(ctx)
				controller.render(ctx)
			}
		}
	}

	kind := controller.config.Classifier.Classify(snapshot.URL)
	presenting := kind == visibility.KindSecondary && controller.config.Detector.Presenting(snapshot)
	state := controller.keeper.State()
	visible := visibility.Visible(kind, presenting, state.ShowOnMeet, state.ShowOnPresentation)

	switch {
	case visible && controller.widget == nil:
		controller.logger.Debug("Showing widget", logfields.Kind(kind.String()), logfields.Trigger(string(trigger)))
		controller.mountWidget(ctx)
	case !visible && controller.widget != nil:
		controller.logger.Debug("Hiding widget", logfields.Kind(kind.String()), logfields.Trigger(string(trigger)))
		controller.unmountWidget()
	}
}

func (controller *Controller) snapshot() (visibility.Snapshot, error) {
	if controller.document == nil {
		return visibility.Snapshot{}, errors.New("no document")
	}
	return controller.document.Snapshot()
}

func (controller *Controller) reload(ctx context.Context) {
	repaired := controller.keeper.Load(controller.store.Load(ctx))
	if len(repaired) > 0 {
		controller.store.Set(ctx, repaired)
	}
}

func (controller *Controller) refreshVisibilityFlags(ctx context.Context) {
	values := controller.store.Get(ctx, model.KeyShowOnMeet, model.KeyShowOnPresentation)
	stored := model.FromValues(values)
	controller.keeper.SetVisibility(stored.ShowOnMeet, stored.ShowOnPresentation)
}

func (controller *Controller) mountWidget(ctx context.Context) {
	if controller.widget != nil || controller.mount == nil {
		return
	}
	widget := controller.mount()
	if widget == nil {
		return
	}
	controller.widget = widget
	controller.metrics.IncWidget(true)

	controller.reload(ctx)
	controller.render(ctx)
	if controller.keeper.State().IsRunning {
		controller.startTick()
	}
}

func (controller *Controller) unmountWidget() {
	controller.stopTicking()
	if controller.widget == nil {
		return
	}
	controller.widget.Remove()
	controller.widget = nil
	controller.metrics.IncWidget(false)
}

func (controller *Controller) startTick() {
	if controller.stopTick != nil || controller.scheduler == nil {
		return
	}
	cancel, err := controller.scheduler.Every("tick-"+string(controller.target), controller.config.TickInterval, func() {
		controller.Post(Event{Kind: EventTick})
	})
	if err != nil {
		controller.logger.Warn("Timer refresh disabled", logfields.Error(err))
		return
	}
	controller.stopTick = cancel
}

func (controller *Controller) stopTicking() {
	if controller.stopTick == nil {
		return
	}
	controller.stopTick()
	controller.stopTick = nil
}

func (controller *Controller) tick(ctx context.Context) {
	if !controller.keeper.State().IsRunning {
		controller.stopTicking()
		return
	}
	controller.keeper.Tick()
	controller.store.Set(ctx, controller.keeper.State().Values(model.KeyCurrentSeconds))
	controller.render(ctx)
}

func (controller *Controller) render(ctx context.Context) {
	if controller.widget == nil {
		return
	}
	state := controller.keeper.State()
	controller.widget.SetText(timekeeper.Format(state.CurrentSeconds))

	alarm := controller.keeper.Alarm()
	controller.widget.SetAlarm(alarm.Active)
	if alarm.Changed {
		controller.logger.Debug("Alarm state changed", slog.Bool("active", alarm.Active), logfields.Seconds(state.CurrentSeconds))
	}
	controller.metrics.SetElapsedSeconds(state.CurrentSeconds)

	if controller.sender == nil {
		return
	}
	err := controller.sender.Send(ctx, bus.PopupTarget, message.TimeUpdate(state.CurrentSeconds))
	if err != nil && !errors.Is(err, bus.ErrNoRecipient) {
		controller.logger.Debug("Time update not delivered", logfields.Error(err))
	}
}

func (controller *Controller) handleMessage(ctx context.Context, msg message.Message) {
	if err := msg.Validate(); err != nil {
		controller.logger.Debug("Ignoring message", logfields.Error(err))
		return
	}
	if !msg.IsCommand() {
		return
	}
	controller.metrics.IncCommand("page", string(msg.Action))

	switch msg.Action {
	case message.ActionUpdateTarget:
		controller.keeper.SetTarget(msg.TargetMinutes)
		controller.store.Set(ctx, controller.keeper.State().Values(model.KeyTargetMinutes))
		controller.render(ctx)
	case message.ActionToggleTimer:
		persist := controller.keeper.Toggle(msg.IsRunning)
		controller.store.Set(ctx, persist)
		if msg.IsRunning && controller.widget != nil {
			controller.startTick()
		} else if !msg.IsRunning {
			controller.stopTicking()
		}
		controller.render(ctx)
	case message.ActionResetTimer:
		persist := controller.keeper.Reset()
		controller.stopTicking()
		if controller.widget != nil {
			controller.widget.SetAlarm(false)
		}
		controller.render(ctx)
		controller.store.Set(ctx, persist)
	case message.ActionUpdateVisibility:
		controller.keeper.SetVisibility(msg.ShowOnMeet, msg.ShowOnPresentation)
		controller.store.Set(ctx, controller.keeper.State().Values(model.KeyShowOnMeet, model.KeyShowOnPresentation))
		controller.reevaluate(ctx, TriggerMessage)
	}
}
