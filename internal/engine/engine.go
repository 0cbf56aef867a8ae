// Package engine wires the lifecycle components together and owns the
// background scheduler. The host adapter calls into Engine for every
// inbound event; everything downstream of those calls is deterministic
// given a Clock.
package engine

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/config"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/cooldown"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/despawn"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/grace"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/hud"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/picker"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/profile"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/selection"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/telemetry"
	"github.com/ArZorMC/PickYourDifficulty-sub000/internal/world"
)

// Deps are the host-side adapters and runtime knobs the engine cannot
// build itself.
type Deps struct {
	ConfigPath string
	DataDir    string
	Locator    world.Locator
	Overlays   world.OverlayFactory
	Perms      world.PermissionChecker
	Menu       world.MenuRenderer
	Sounds     world.SoundPlayer
	Notify     world.Notifier
	Dispatch   world.CommandDispatcher
	Roster     world.Roster
	Playtime   world.Playtime
	Events     telemetry.Repository
	Clock      Clock
	Logger     *log.Logger
}

// Engine owns every lifecycle component. Construct with NewEngine, then
// Start once; Close is the only valid way to shut down.
type Engine struct {
	mu         sync.Mutex
	cfgPath    string
	clock      Clock
	logger     *log.Logger
	events     telemetry.Repository
	catalog    *profile.Catalog
	selections *selection.Store
	cooldowns  *cooldown.Tracker
	prefs      *hud.Prefs
	registry   *despawn.Registry
	policy     despawn.TTLPolicy
	flow       *picker.Flow
	reminder   *grace.Reminder
	settings   config.Settings
	sched      *scheduler
}

func NewEngine(cfg *config.Config, deps Deps) (*Engine, error) {
	catalog, err := profile.Build(cfg)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = RealClock{}
	}

	e := &Engine{
		cfgPath:    deps.ConfigPath,
		clock:      clock,
		logger:     logger,
		events:     deps.Events,
		catalog:    catalog,
		selections: selection.NewStore(deps.DataDir, catalog.FallbackName),
		cooldowns:  cooldown.NewTracker(deps.DataDir, cfg.Settings.CooldownSeconds),
		prefs:      hud.NewPrefs(deps.DataDir),
		settings:   cfg.Settings,
	}
	e.policy = despawn.TTLPolicy{
		EnforceFloor: cfg.Settings.Despawn.EnforceFloor,
		FloorSeconds: cfg.Settings.Despawn.FloorSeconds,
	}
	e.registry = despawn.NewRegistry(deps.DataDir, deps.Locator, deps.Overlays, despawn.Options{
		OverlaysEnabled: cfg.Settings.Overlays.Enabled,
		OverlayText:     cfg.Settings.Overlays.Text,
		Verbose:         cfg.Settings.VerboseDiagnostics,
	}, logger)
	e.flow = picker.NewFlow(picker.Deps{
		Catalog:    catalog,
		Selections: e.selections,
		Cooldowns:  e.cooldowns,
		Perms:      deps.Perms,
		Menu:       deps.Menu,
		Sounds:     deps.Sounds,
		Notify:     deps.Notify,
		Dispatch:   deps.Dispatch,
		Events:     deps.Events,
		Logger:     logger,
	}, flowSettings(cfg.Settings))
	e.reminder = grace.NewReminder(catalog, e.selections, deps.Playtime, deps.Roster, deps.Notify, graceSettings(cfg.Settings))
	return e, nil
}

func flowSettings(s config.Settings) picker.Settings {
	return picker.Settings{
		AllowReselect:       s.AllowReselect,
		RequireConfirmation: s.RequireConfirmation,
		HideUnpermitted:     s.HideUnpermitted,
		WelcomeEnabled:      s.WelcomeEnabled,
	}
}

func graceSettings(s config.Settings) grace.Settings {
	return grace.Settings{
		RemindOnLogin:   s.Grace.RemindOnLogin,
		IntervalSeconds: s.Grace.RemindIntervalSeconds,
		Template:        s.Grace.ReminderTemplate,
	}
}

// Start loads every snapshot, recovers persisted despawn timers, and
// starts the background scheduler. Recovered timers get no overlays here;
// the first reconcile pass re-attaches them.
func (e *Engine) Start() error {
	if err := e.selections.Load(); err != nil {
		return fmt.Errorf("load selections: %w", err)
	}
	if err := e.cooldowns.Load(); err != nil {
		return fmt.Errorf("load cooldowns: %w", err)
	}
	if err := e.prefs.Load(); err != nil {
		return fmt.Errorf("load overlay prefs: %w", err)
	}
	kept, discarded, err := e.registry.Recover(e.clock.Now())
	if err != nil {
		return fmt.Errorf("recover despawn timers: %w", err)
	}
	e.logger.Printf("engine: recovered %d despawn timers, discarded %d expired", kept, discarded)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sched != nil {
		return fmt.Errorf("engine already started")
	}
	e.sched = newScheduler(
		time.Duration(e.settings.Despawn.ReconcileIntervalSeconds)*time.Second,
		time.Duration(e.settings.Grace.RemindIntervalSeconds)*time.Second,
	)
	go e.sched.run(e)
	return nil
}

// Close stops the scheduler, destroys live overlays, and writes every
// snapshot. The despawn snapshot survives so timers outlive the restart.
func (e *Engine) Close() error {
	e.mu.Lock()
	sched := e.sched
	e.sched = nil
	e.mu.Unlock()
	if sched != nil {
		sched.halt()
	}

	e.registry.Shutdown()
	if err := e.selections.Save(); err != nil {
		return fmt.Errorf("save selections: %w", err)
	}
	if err := e.cooldowns.Save(); err != nil {
		return fmt.Errorf("save cooldowns: %w", err)
	}
	if err := e.prefs.Save(); err != nil {
		return fmt.Errorf("save overlay prefs: %w", err)
	}
	return nil
}

// HandleJoin fires the login reminder and, when configured, auto-opens
// the browse screen for players with no committed choice yet.
func (e *Engine) HandleJoin(p world.PlayerID) {
	now := e.clock.Now()
	if e.reminder.OnJoin(p, now) {
		e.record(telemetry.EventReminderSent, telemetry.EventMetadata{
			"player":  string(p),
			"trigger": "login",
		})
	}

	e.mu.Lock()
	autoOpen := e.settings.AutoOpenOnJoin
	e.mu.Unlock()
	if autoOpen && !e.selections.HasSelected(p) {
		if err := e.flow.OpenBrowse(p, now); err != nil {
			e.logger.Printf("engine: auto-open for %s: %v", p, err)
		}
	}
}

// HandleQuit drops the player's ephemeral state. Committed selections,
// cooldowns, and despawn timers all survive a quit.
func (e *Engine) HandleQuit(p world.PlayerID) {
	e.flow.Forget(p)
	e.reminder.Forget(p)
}

// PromptIfUnselected opens the browse screen only for players who never
// committed a choice. It reports whether a screen was opened.
func (e *Engine) PromptIfUnselected(p world.PlayerID) bool {
	if e.selections.HasSelected(p) {
		return false
	}
	return e.flow.OpenBrowse(p, e.clock.Now()) == nil
}

// OpenBrowse exposes the selection flow to the host command layer.
func (e *Engine) OpenBrowse(p world.PlayerID) error {
	return e.flow.OpenBrowse(p, e.clock.Now())
}

func (e *Engine) SelectOption(p world.PlayerID, name string) error {
	return e.flow.SelectOption(p, name, e.clock.Now())
}

func (e *Engine) Confirm(p world.PlayerID) error {
	return e.flow.Confirm(p, e.clock.Now())
}

func (e *Engine) Cancel(p world.PlayerID) error {
	return e.flow.Cancel(p)
}

// HandleDeathDrop tracks one item dropped on death. Its TTL comes from
// the owner's difficulty, floor-clamped when the floor is enforced.
func (e *Engine) HandleDeathDrop(owner world.PlayerID, item world.Item) {
	e.registerDrop(owner, item, 0)
}

// HandleManualDrop tracks a deliberately dropped item. A positive
// override wins over the profile TTL and is never clamped.
func (e *Engine) HandleManualDrop(owner world.PlayerID, item world.Item, overrideSeconds int) {
	e.registerDrop(owner, item, overrideSeconds)
}

func (e *Engine) registerDrop(owner world.PlayerID, item world.Item, overrideSeconds int) {
	prof := e.profileOf(owner)
	ttl := e.policy.Resolve(overrideSeconds, prof.DespawnSeconds)
	if ttl <= 0 {
		return
	}
	e.registry.Register(item, ttl, e.clock.Now())
	e.record(telemetry.EventTimerRegistered, telemetry.EventMetadata{
		"player":      string(owner),
		"object":      string(item.ID()),
		"ttl_seconds": strconv.Itoa(ttl),
	})
}

// HandlePickup stops tracking a picked-up item. Unknown ids are a no-op.
func (e *Engine) HandlePickup(id world.ObjectID) {
	if _, tracked := e.registry.Entry(id); !tracked {
		return
	}
	e.registry.Unregister(id)
	e.record(telemetry.EventTimerRemoved, telemetry.EventMetadata{"object": string(id)})
}

// profileOf resolves the player's effective profile: their committed
// choice when it still exists in the catalog, the fallback otherwise.
func (e *Engine) profileOf(p world.PlayerID) profile.Profile {
	if prof, ok := e.catalog.Resolve(e.selections.Get(p)); ok {
		return prof
	}
	return e.catalog.Fallback()
}

// InGrace reports whether the player is still inside their difficulty's
// damage-immunity window.
func (e *Engine) InGrace(p world.PlayerID) bool {
	return e.reminder.InGrace(p)
}

// ReconcileNow runs one reconciliation pass against the world.
func (e *Engine) ReconcileNow() despawn.TickResult {
	res := e.registry.Reconcile(e.clock.Now())
	for i := 0; i < res.Expired; i++ {
		e.record(telemetry.EventTimerExpired, nil)
	}
	e.record(telemetry.EventReconcileTick, telemetry.EventMetadata{
		"scanned": strconv.Itoa(res.Scanned),
		"gone":    strconv.Itoa(res.Gone),
		"expired": strconv.Itoa(res.Expired),
		"skipped": strconv.Itoa(res.Skipped),
	})
	return res
}

// GraceSweepNow runs one reminder sweep over the online roster.
func (e *Engine) GraceSweepNow() int {
	sent := e.reminder.Sweep(e.clock.Now())
	for i := 0; i < sent; i++ {
		e.record(telemetry.EventReminderSent, telemetry.EventMetadata{"trigger": "sweep"})
	}
	return sent
}

// Reload re-reads the config file and pushes the new settings into every
// component. A config that fails to load or validate leaves the running
// engine untouched.
func (e *Engine) Reload() error {
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return err
	}
	if err := e.catalog.Replace(cfg); err != nil {
		return err
	}

	// Snapshots are written wholesale on reload as well as shutdown, so a
	// crash between reloads loses nothing committed before the last one.
	if err := e.selections.Save(); err != nil {
		return fmt.Errorf("save selections: %w", err)
	}
	if err := e.cooldowns.Save(); err != nil {
		return fmt.Errorf("save cooldowns: %w", err)
	}
	if err := e.prefs.Save(); err != nil {
		return fmt.Errorf("save overlay prefs: %w", err)
	}

	e.cooldowns.SetWindow(cfg.Settings.CooldownSeconds)
	e.flow.SetSettings(flowSettings(cfg.Settings))
	e.reminder.SetSettings(graceSettings(cfg.Settings))
	e.registry.SetOptions(despawn.Options{
		OverlaysEnabled: cfg.Settings.Overlays.Enabled,
		OverlayText:     cfg.Settings.Overlays.Text,
		Verbose:         cfg.Settings.VerboseDiagnostics,
	})

	e.mu.Lock()
	e.policy = despawn.TTLPolicy{
		EnforceFloor: cfg.Settings.Despawn.EnforceFloor,
		FloorSeconds: cfg.Settings.Despawn.FloorSeconds,
	}
	e.settings = cfg.Settings
	restart := e.sched != nil
	if restart {
		old := e.sched
		e.sched = newScheduler(
			time.Duration(cfg.Settings.Despawn.ReconcileIntervalSeconds)*time.Second,
			time.Duration(cfg.Settings.Grace.RemindIntervalSeconds)*time.Second,
		)
		next := e.sched
		e.mu.Unlock()
		old.halt()
		go next.run(e)
	} else {
		e.mu.Unlock()
	}

	e.record(telemetry.EventConfigReloaded, telemetry.EventMetadata{"version": cfg.Version})
	e.logger.Printf("engine: config reloaded, %d difficulties", len(cfg.Difficulties))
	return nil
}

// Selections exposes the selection store to the admin layer.
func (e *Engine) Selections() *selection.Store { return e.selections }

// Cooldowns exposes the cooldown tracker to the admin layer.
func (e *Engine) Cooldowns() *cooldown.Tracker { return e.cooldowns }

// Prefs exposes the overlay visibility store to the admin layer.
func (e *Engine) Prefs() *hud.Prefs { return e.prefs }

// Catalog exposes the difficulty catalog.
func (e *Engine) Catalog() *profile.Catalog { return e.catalog }

// Registry exposes the despawn registry.
func (e *Engine) Registry() *despawn.Registry { return e.registry }

// Clock exposes the engine clock to the admin layer.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// Stats aggregates recorded events since a point in time.
func (e *Engine) Stats(since time.Time) (telemetry.Stats, error) {
	if e.events == nil {
		return telemetry.Stats{}, fmt.Errorf("telemetry disabled")
	}
	events, err := e.events.GetEvents(since, nil)
	if err != nil {
		return telemetry.Stats{}, err
	}
	return telemetry.CalculateStats(events, since)
}

func (e *Engine) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if e.events == nil {
		return
	}
	if err := e.events.RecordEvent(t, md); err != nil {
		e.logger.Printf("engine: record %s: %v", t, err)
	}
}
