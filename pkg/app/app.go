package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nordfrost-se/controller/pkg/alarm"
	"github.com/nordfrost-se/controller/pkg/compressor"
	"github.com/nordfrost-se/controller/pkg/config"
	"github.com/nordfrost-se/controller/pkg/hardware"
	"github.com/nordfrost-se/controller/pkg/meter"
	"github.com/nordfrost-se/controller/pkg/mqtt"
	"github.com/nordfrost-se/controller/pkg/sensor"
	"github.com/nordfrost-se/controller/pkg/stats"
	"github.com/nordfrost-se/controller/pkg/status"
	"github.com/nordfrost-se/controller/pkg/store"
)

// Publisher is the outbound telemetry surface; nil disables publishing.
type Publisher interface {
	PublishStatus(status.Status) error
}

// Persisted chunk keys. Chunks load sequentially at boot, a failed chunk
// falls back to its zero value without touching the others.
const (
	chunkTiming   = "timing"
	chunkFreeze   = "freeze"
	chunkAlarm    = "alarm"
	chunkAdaptive = "adaptive"
	chunkSetpoint = "setpoint"
	chunkStats    = "stats"
)

type alarmChunk struct {
	Fatal    compressor.Alarm `json:"fatal"`
	GhostRun bool             `json:"ghostRun"`
}

type adaptiveChunk struct {
	Shift float64 `json:"shift"`
}

type setpointChunk struct {
	SetpointC float64 `json:"setpointC"`
	Set       bool    `json:"set"`
}

type App struct {
	wg      *sync.WaitGroup
	cli     *config.CliConfig
	control config.ControlConfig

	hw     hardware.Interface
	db     *store.Store
	pub    Publisher
	alarms *alarm.ActiveAlarms

	meterCache *meter.Cache
	meterRead  func() (*meter.Data, error)

	st    *compressor.State
	daily stats.Daily

	lastDecision compressor.Decision
	lastExec     compressor.ExecResult
	lastAdaptive int64
	lastMeter    *meter.Data

	commands chan mqtt.Command

	now func() int64
}

func New(cli *config.CliConfig, control config.ControlConfig, hw hardware.Interface, db *store.Store, pub Publisher) *App {
	return &App{
		wg:         &sync.WaitGroup{},
		cli:        cli,
		control:    control,
		hw:         hw,
		db:         db,
		pub:        pub,
		alarms:     &alarm.ActiveAlarms{},
		meterCache: &meter.Cache{},
		commands:   make(chan mqtt.Command, 8),
		now:        func() int64 { return time.Now().Unix() },
	}
}

// SetPublisher wires the telemetry output after construction, for the case
// where the broker client needs the command callback first.
func (a *App) SetPublisher(p Publisher) {
	a.pub = p
}

// SetMeterReader enables the power meter poller.
func (a *App) SetMeterReader(read func() (*meter.Data, error)) {
	a.meterRead = read
}

// OnCommand queues one inbound command for the next tick. It is safe to call
// from the broker callback goroutine; the queue keeps all state mutation on
// the tick goroutine.
func (a *App) OnCommand(cmd mqtt.Command) {
	select {
	case a.commands <- cmd:
	default:
		logrus.Warnf("command queue full, dropping %s", cmd.Cmd)
	}
}

// Start loads persisted state, reconciles it with the reported relay state
// and launches the control loop.
func (a *App) Start(ctx context.Context) error {
	a.boot(ctx)

	if a.meterRead != nil {
		a.wg.Add(1)
		go a.meterLoop(ctx)
	}

	a.wg.Add(1)
	go a.controlLoop(ctx)
	return nil
}

func (a *App) Wait() {
	a.wg.Wait()
}

func (a *App) boot(ctx context.Context) {
	if rejections := a.control.Validate(); len(rejections) > 0 {
		for _, r := range rejections {
			logrus.Warnf("config rejected: %s", r)
		}
	}

	relayOn, err := a.hw.RelayState()
	if err != nil {
		logrus.Errorf("relay state unknown at boot, assuming off: %s", err)
		relayOn = false
	}

	now := a.now()
	a.st = compressor.NewState(relayOn, now, a.control.MinOnSeconds)
	a.daily = stats.NewDaily(now)
	a.lastAdaptive = now
	a.loadState(ctx, relayOn, now)
}

func (a *App) loadState(ctx context.Context, relayOn bool, now int64) {
	var (
		timing   compressor.TimingState
		freeze   compressor.FreezeState
		alarms   alarmChunk
		adaptive adaptiveChunk
		setpoint setpointChunk
		daily    stats.Daily
	)
	a.db.LoadSequence(ctx, []store.Chunk{
		{Key: chunkTiming, Dest: &timing},
		{Key: chunkFreeze, Dest: &freeze},
		{Key: chunkAlarm, Dest: &alarms},
		{Key: chunkAdaptive, Dest: &adaptive},
		{Key: chunkSetpoint, Dest: &setpoint},
		{Key: chunkStats, Dest: &daily},
	})

	// persisted timing only tightens the pessimistic boot guess, it never
	// shortens a wait
	if timing.LastOnTime > 0 && timing.LastOnTime < a.st.Timing.LastOnTime {
		a.st.Timing.LastOnTime = timing.LastOnTime
	}
	if timing.LastOffTime > a.st.Timing.LastOffTime {
		a.st.Timing.LastOffTime = timing.LastOffTime
	}
	a.st.Freeze = freeze
	a.st.FatalAlarm = alarms.Fatal
	a.st.GhostRun = alarms.GhostRun
	if a.st.FatalAlarm != compressor.AlarmNone {
		a.alarms.Add(string(a.st.FatalAlarm))
	}
	if a.st.GhostRun {
		a.alarms.Add(alarm.GhostRun)
	}
	a.st.AdaptiveShift = adaptive.Shift
	if setpoint.Set {
		a.control.SetpointC = setpoint.SetpointC
		if rejections := a.control.Validate(); len(rejections) > 0 {
			logrus.Warnf("persisted setpoint rejected: %v", rejections)
		}
	}
	if daily.Day == stats.NewDaily(now).Day {
		a.daily = daily
	}

	logrus.WithFields(logrus.Fields{
		"relayOn":       relayOn,
		"freezeLocked":  a.st.Freeze.Locked,
		"fatalAlarm":    a.st.FatalAlarm,
		"adaptiveShift": a.st.AdaptiveShift,
		"setpointC":     a.control.SetpointC,
	}).Info("state loaded")
}

func (a *App) controlLoop(ctx context.Context) {
	defer a.wg.Done()

	tick := time.NewTicker(time.Duration(a.cli.TickSeconds) * time.Second)
	publish := time.NewTicker(time.Duration(a.cli.PublishSeconds) * time.Second)
	save := time.NewTicker(time.Duration(a.cli.SaveSeconds) * time.Second)
	defer tick.Stop()
	defer publish.Stop()
	defer save.Stop()

	for {
		select {
		case <-tick.C:
			a.Tick(ctx, a.now())
		case <-publish.C:
			a.publishStatus()
		case <-save.C:
			a.saveState(ctx)
		case <-ctx.Done():
			a.saveState(context.Background())
			if err := a.hw.Close(); err != nil {
				logrus.Errorf("hardware close: %s", err)
			}
			return
		}
	}
}

func (a *App) meterLoop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			data, err := a.meterRead()
			if err != nil {
				logrus.Errorf("meter read: %s", err)
				continue
			}
			a.meterCache.Set(data)
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs one full control cycle. Exported so the binary and the tests
// drive the same pipeline.
func (a *App) Tick(ctx context.Context, now int64) {
	a.drainCommands(ctx, now)

	airRaw := a.readChannel(hardware.ChannelAir)
	evapRaw := a.readChannel(hardware.ChannelEvaporator)

	st := *a.st
	healthCfg := sensor.HealthConfig{
		NoReadingSeconds: a.control.SensorNoReadingSeconds,
		CriticalSeconds:  a.control.SensorCriticalSeconds,
		StuckSeconds:     a.control.SensorStuckSeconds,
		EpsilonC:         a.control.SensorEpsilonC,
	}
	var airEv, evapEv sensor.HealthEvents
	st.AirHealth, airEv = sensor.UpdateHealth(airRaw, now, st.AirHealth, healthCfg)
	st.EvapHealth, evapEv = sensor.UpdateHealth(evapRaw, now, st.EvapHealth, healthCfg)
	a.logHealth("air", airEv)
	a.logHealth("evaporator", evapEv)

	var airTemp, evapTemp *float64
	if airRaw != nil {
		v, sm := st.AirSmooth.Update(*airRaw, a.control.SmootherAlpha)
		st.AirSmooth = sm
		airTemp = &v
	}
	if evapRaw != nil {
		v, sm := st.EvapSmooth.Update(*evapRaw, a.control.SmootherAlpha)
		st.EvapSmooth = sm
		evapTemp = &v
	}

	if st.AirHealth.Critical && !st.LimpMode {
		logrus.Warn("air sensor critical, entering limp mode")
		st.LimpMode = true
	}
	if !st.AirHealth.Critical && st.LimpMode {
		logrus.Info("air sensor recovered, leaving limp mode")
		st.LimpMode = false
	}

	// the alarm list is authoritative; the state fields mirror it
	st.FatalAlarm = compressor.Alarm(a.alarms.FirstFatal())
	st.GhostRun = a.alarms.Has(alarm.GhostRun)

	var fev compressor.FreezeEvent
	st.Freeze, fev = compressor.EvaluateFreeze(evapTemp, now, st.Freeze, &a.control)
	if fev != compressor.FreezeNoChange {
		logrus.WithFields(logrus.Fields{
			"event": fev,
			"locks": st.Freeze.LockCount,
		}).Warn("freeze protection")
	}

	a.diagnoseMeter(&st, now)

	if compressor.CheckWeld(st, airTemp, now, &a.control) {
		if st.FatalAlarm == compressor.AlarmNone {
			logrus.Error("relay weld suspected")
			st.FatalAlarm = compressor.AlarmWeld
			a.alarms.Add(alarm.Weld)
		}
	}

	in := compressor.Input{Now: now, AirTemp: airTemp, EvapTemp: evapTemp}
	d, st := compressor.Decide(in, st, &a.control)

	d, st, res, err := compressor.Execute(d, st, airTemp, now, a.hw, &a.control, func(s *compressor.State) error {
		return a.persistTransition(ctx, s)
	})
	if err != nil {
		logrus.Errorf("executor: %s", err)
	}
	if res.Switched {
		logrus.WithFields(logrus.Fields{
			"on":     st.ConfirmedOn,
			"reason": d.Reason,
			"detail": d.Detail,
		}).Info("compressor switched")
	}
	if res.HealthScore != nil {
		logrus.WithField("score", *res.HealthScore).Info("cooling health score")
	}

	elapsed := int64(a.cli.TickSeconds)
	st.WindowTotalSeconds += elapsed
	if st.ConfirmedOn {
		st.WindowOnSeconds += elapsed
	}

	if now-a.lastAdaptive >= a.control.AdaptiveIntervalSeconds && st.WindowTotalSeconds > 0 {
		if shift, changed := compressor.AdjustShift(st.DutyPercent(), st.AdaptiveShift, &a.control); changed {
			logrus.WithFields(logrus.Fields{
				"duty":  st.DutyPercent(),
				"shift": shift,
			}).Info("adaptive hysteresis adjusted")
			st.AdaptiveShift = shift
		}
		st.ResetWindow()
		a.lastAdaptive = now
	}

	switchedOn := res.Switched && st.ConfirmedOn
	locked := fev == compressor.FreezeEngaged
	var completed stats.Daily
	var rolled bool
	a.daily, completed, rolled = a.daily.Tick(now, elapsed, st.ConfirmedOn, airTemp, switchedOn, locked)
	if rolled {
		logrus.WithFields(logrus.Fields{
			"day":    completed.Day,
			"duty":   completed.DutyPercent(),
			"cycles": completed.CycleCount,
			"minAir": completed.MinAirC,
			"maxAir": completed.MaxAirC,
			"locks":  completed.FreezeLocks,
		}).Info("daily statistics")
	}

	a.lastDecision = d
	a.lastExec = res
	*a.st = st
}

func (a *App) readChannel(ch hardware.Channel) *float64 {
	v, err := a.hw.ReadTemperature(ch)
	if err != nil {
		logrus.Errorf("read %s: %s", ch, err)
		return nil
	}
	return v
}

func (a *App) logHealth(name string, ev sensor.HealthEvents) {
	if ev.WentOffline {
		logrus.WithField("offlineFor", ev.OfflineFor).Warnf("%s sensor offline", name)
	}
	if ev.WentCritical {
		logrus.Errorf("%s sensor critical", name)
	}
	if ev.WentStuck {
		logrus.Warnf("%s sensor stuck", name)
	}
	if ev.Recovered {
		logrus.Infof("%s sensor recovered", name)
	}
	if ev.Unstuck {
		logrus.Infof("%s sensor moving again", name)
	}
}

func (a *App) diagnoseMeter(st *compressor.State, now int64) {
	if !a.meterCache.Fresh(time.Unix(now, 0), time.Minute) {
		return
	}
	data := a.meterCache.Get()
	a.lastMeter = data
	diag := meter.Diagnose(data, st.IntendedOn, a.control.LockedRotorCurrentA, a.control.GhostRunPowerW)
	if diag.LockedRotor && st.FatalAlarm == compressor.AlarmNone {
		logrus.WithField("currentA", data.L1_A).Error("locked rotor suspected")
		st.FatalAlarm = compressor.AlarmLockedRotor
		a.alarms.Add(alarm.LockedRotor)
	}
	if diag.GhostRun && !st.GhostRun {
		logrus.WithField("powerW", data.Current_W).Error("power draw while commanded off")
		st.GhostRun = true
		a.alarms.Add(alarm.GhostRun)
	}
}

func (a *App) drainCommands(ctx context.Context, now int64) {
	for {
		select {
		case cmd := <-a.commands:
			a.applyCommand(ctx, cmd, now)
		default:
			return
		}
	}
}

func (a *App) applyCommand(ctx context.Context, cmd mqtt.Command, now int64) {
	switch cmd.Cmd {
	case mqtt.CmdBoostOn:
		a.st.TurboUntil = now + a.control.TurboMaxSeconds
		logrus.WithField("until", a.st.TurboUntil).Info("turbo boost on")
	case mqtt.CmdBoostOff:
		a.st.TurboUntil = 0
		logrus.Info("turbo boost off")
	case mqtt.CmdStatus:
		a.publishStatus()
	case mqtt.CmdAlarmReset:
		a.st.FatalAlarm = compressor.AlarmNone
		a.st.GhostRun = false
		if a.alarms.Clear() {
			logrus.Info("alarms reset")
		}
		a.saveChunk(ctx, chunkAlarm, alarmChunk{})
	case mqtt.CmdSetpoint:
		prev := a.control.SetpointC
		a.control.SetpointC = *cmd.Value
		if rejections := a.control.Validate(); len(rejections) > 0 {
			// revert silently, the rejection is only logged
			logrus.Warnf("setpoint %v rejected: %v", *cmd.Value, rejections)
			a.control.SetpointC = prev
			return
		}
		logrus.WithField("setpointC", a.control.SetpointC).Info("setpoint changed")
		a.saveChunk(ctx, chunkSetpoint, setpointChunk{SetpointC: a.control.SetpointC, Set: true})
	}
}

// persistTransition is the synchronous save on every relay switch.
func (a *App) persistTransition(ctx context.Context, st *compressor.State) error {
	if err := a.db.SaveChunk(ctx, chunkTiming, st.Timing); err != nil {
		return err
	}
	return a.db.SaveChunk(ctx, chunkFreeze, st.Freeze)
}

func (a *App) saveChunk(ctx context.Context, key string, v any) {
	if err := a.db.SaveChunk(ctx, key, v); err != nil {
		logrus.Errorf("save %s: %s", key, err)
	}
}

func (a *App) saveState(ctx context.Context) {
	a.saveChunk(ctx, chunkTiming, a.st.Timing)
	a.saveChunk(ctx, chunkFreeze, a.st.Freeze)
	a.saveChunk(ctx, chunkAlarm, alarmChunk{
		Fatal:    compressor.Alarm(a.alarms.FirstFatal()),
		GhostRun: a.alarms.Has(alarm.GhostRun),
	})
	a.saveChunk(ctx, chunkAdaptive, adaptiveChunk{Shift: a.st.AdaptiveShift})
	a.saveChunk(ctx, chunkStats, a.daily)
}

func (a *App) publishStatus() {
	if a.pub == nil {
		return
	}
	if err := a.pub.PublishStatus(a.Status()); err != nil {
		logrus.Errorf("publish status: %s", err)
	}
}
