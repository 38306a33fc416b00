package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/engine/handlers"
	"isogrid-server/internal/grid"
	"isogrid-server/internal/systems"
	"isogrid-server/pkg/api"
	"isogrid-server/pkg/levels"
	"isogrid-server/pkg/logger"
)

// InstanceCommand обертка команды клиента, уже привязанной к сущности
type InstanceCommand struct {
	Cmd domain.InternalCommand
}

// JoinRequest - вход игрока на уровень: новое подключение или варп.
// Пустые Cell/Facing означают точку спавна уровня, пустые Stats - полное здоровье.
type JoinRequest struct {
	ID     domain.EntityID        `json:"id"`
	Name   string                 `json:"name,omitempty"`
	Cell   *domain.GridCell       `json:"cell,omitempty"`
	Facing *domain.Facing         `json:"facing,omitempty"`
	Stats  *domain.StatsComponent `json:"stats,omitempty"`
	Warped bool                   `json:"warped,omitempty"`
}

// Warper переносит игрока на другой уровень (реализует GameService).
type Warper interface {
	Warp(fromLevel, toLevel int, req JoinRequest)
}

// Roster знает, на каком уровне сейчас игрок (реализует GameService).
type Roster interface {
	LevelOf(id domain.EntityID) (int, bool)
}

// Publisher - получатель снимков (network.Broadcaster).
type Publisher interface {
	HasSubscriber(id domain.EntityID) bool
	SendTo(id domain.EntityID, msg api.ServerResponse)
}

// Instance представляет собой один изолированный запущенный уровень.
// Все поля симуляции принадлежат горутине Run; снаружи доступны только каналы и Snapshot.
type Instance struct {
	ID    int
	Level *levels.Level

	Grid         grid.IsoGrid
	Occupancy    *grid.OccupancyMap
	Reservations *systems.Reservations
	Search       *grid.AStar

	// Акторы в порядке регистрации: в этом порядке идут оба прохода тика.
	actors []*Actor
	byID   map[domain.EntityID]*Actor

	events   EventQueue
	nav      *NavData
	sim      SimConfig
	handlers map[domain.ActionType]handlers.HandlerFunc

	// Каналы коммуникации
	CommandChan chan InstanceCommand   // Команды от игроков
	JoinChan    chan JoinRequest       // Вход новых игроков и варпы
	LeaveChan   chan domain.EntityID   // Отключение игроков

	Publisher Publisher
	Warper    Warper
	Roster    Roster // nil в реплее: журнал уже содержит только состоявшиеся входы

	CurrentTick uint64 // Локальное время этого уровня
	TickRate    int
	nextOrder   int
	resync      map[domain.EntityID]string // кому нужен полный снимок и с каким типом

	Journal *domain.ReplaySession // Лента команд

	snapMu   sync.RWMutex
	snapshot api.ServerResponse
	eventLog *EventLog
}

// NewInstance собирает уровень: сетку, карту занятости, бронирование, поиск пути и мобов.
func NewInstance(level *levels.Level, sim SimConfig, tickRate int, seed int64) *Instance {
	g := grid.NewIsoGrid(level.Origin, level.TileWidth)
	occ := grid.NewOccupancyMap(grid.Bounds{Width: level.Width, Height: level.Height})
	occ.MarkStatic(level.Blocked...)

	i := &Instance{
		ID:           level.ID,
		Level:        level,
		Grid:         g,
		Occupancy:    occ,
		Reservations: systems.NewReservations(occ),
		Search:       grid.NewAStar(occ),
		byID:         make(map[domain.EntityID]*Actor),
		sim:          sim,
		handlers:     DefaultHandlers(),
		CommandChan:  make(chan InstanceCommand, 100),
		JoinChan:     make(chan JoinRequest, 16),
		LeaveChan:    make(chan domain.EntityID, 16),
		TickRate:     tickRate,
		resync:       make(map[domain.EntityID]string),
		eventLog:     NewEventLog(),
		Journal: &domain.ReplaySession{
			SessionID: ulid.Make().String(),
			LevelID:   level.ID,
			Seed:      seed,
			TickRate:  tickRate,
			Timestamp: time.Now().Unix(),
			Actions:   make([]domain.ReplayAction, 0),
		},
	}
	i.nav = &NavData{
		Grid:         i.Grid,
		Reservations: i.Reservations,
		Search:       i.Search,
		World:        i,
	}

	for idx, m := range level.Mobs {
		tmpl, ok := levels.TemplateFor(m.Kind)
		if !ok {
			continue
		}
		id := domain.PackEntityID(m.Kind, level.ID, uint64(idx+1))
		a := NewActor(id, m.Kind, tmpl.Name, domain.NewStats(tmpl.MaxHP), i.speedFor(m.Kind), i.tuning(), &i.events)
		i.addActor(a, m.Cell, m.Facing)
	}

	i.refreshSnapshot()
	return i
}

func (i *Instance) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component":   "instance",
		"instance_id": i.ID,
	})
}

func (i *Instance) tuning() Tuning {
	return Tuning{
		BiteDamage:    i.sim.BiteDamage,
		BiteDuration:  i.sim.BiteDuration,
		PursuitRadius: i.sim.PursuitRadius,
	}
}

func (i *Instance) speedFor(kind domain.ActorKind) float64 {
	if kind == domain.ActorKindWolf {
		return i.sim.WolfSpeed
	}
	return i.sim.PlayerSpeed
}

// Run запускает игровой цикл ЭТОГО инстанса с фиксированным шагом.
func (i *Instance) Run(ctx context.Context) {
	rate := i.TickRate
	if rate <= 0 {
		rate = domain.DefaultTickRate
	}
	dt := 1.0 / float64(rate)
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	i.log().WithField("tick_rate", rate).Info("Instance loop started")
	for {
		select {
		case <-ctx.Done():
			i.log().WithField("tick", i.CurrentTick).Info("Instance loop stopped")
			return
		case <-ticker.C:
			i.Tick(dt)
			i.Publish()
		}
	}
}

// Tick - один шаг симуляции:
// входящие -> логика (порядок регистрации) -> события -> физика -> события.
func (i *Instance) Tick(dt float64) {
	i.drainInbound()
	i.step(dt)
}

func (i *Instance) step(dt float64) {
	for _, a := range i.actors {
		a.OnLogicUpdate(dt)
	}
	i.events.Drain(i.processEvent)

	for _, a := range i.actors {
		a.OnPhysicsUpdate(dt)
	}
	i.events.Drain(i.processEvent)

	i.CurrentTick++
	i.refreshSnapshot()
}

// drainInbound разбирает накопившиеся входящие без блокировки: входы, выходы, команды.
// Читает только горутина инстанса, поэтому len() достаточно.
func (i *Instance) drainInbound() {
	for len(i.JoinChan) > 0 {
		i.ApplyJoin(<-i.JoinChan)
	}
	for len(i.LeaveChan) > 0 {
		i.ApplyLeave(<-i.LeaveChan)
	}
	for len(i.CommandChan) > 0 {
		wrapper := <-i.CommandChan
		i.ApplyCommand(wrapper.Cmd)
	}
}

// ApplyJoin регистрирует игрока. Если клетка занята, берется ближайшая свободная.
// Запрос игрока, который уже отключился или числится на другом уровне, отбрасывается (nil).
func (i *Instance) ApplyJoin(req JoinRequest) *Actor {
	if existing, ok := i.byID[req.ID]; ok {
		i.log().WithField("actor", req.ID).Warn("Join ignored: actor already on level")
		return existing
	}
	if i.Roster != nil {
		if lvl, ok := i.Roster.LevelOf(req.ID); !ok || lvl != i.ID {
			i.log().WithFields(logrus.Fields{"actor": req.ID, "warped": req.Warped}).Info("Join dropped: player is not routed here")
			return nil
		}
	}
	i.record(domain.ActionJoin, req.ID, req)

	cell, facing := i.Level.Spawn.Cell, i.Level.Spawn.Facing
	if req.Cell != nil {
		cell = *req.Cell
	}
	if req.Facing != nil {
		facing = *req.Facing
	}
	cell = i.freeCellNear(cell)

	stats := req.Stats.Clone()
	if stats == nil {
		stats = domain.NewStats(levels.Player.MaxHP)
	}
	name := req.Name
	if name == "" {
		name = levels.Player.Name
	}

	a := NewActor(req.ID, domain.ActorKindPlayer, name, stats, i.sim.PlayerSpeed, i.tuning(), &i.events)
	i.addActor(a, cell, facing)
	i.resync[a.ID] = api.MsgTypeUpdate
	if req.Warped {
		i.resync[a.ID] = api.MsgTypeWarp
	}

	i.log().WithFields(logrus.Fields{"actor": a.ID, "cell": cell}).Info("Player joined")
	return a
}

// ApplyLeave убирает игрока (отключение). Брони освобождаются сразу.
func (i *Instance) ApplyLeave(id domain.EntityID) {
	if i.removeActor(id) == nil {
		return
	}
	i.record(domain.ActionLeave, id, nil)
	i.log().WithField("actor", id).Info("Player left")
}

// ApplyCommand выполняет команду клиента в контексте уровня
func (i *Instance) ApplyCommand(cmd domain.InternalCommand) {
	a, ok := i.byID[cmd.Actor]
	if !ok {
		i.log().WithFields(logrus.Fields{"actor": cmd.Actor, "action": cmd.Action}).Debug("Command for unknown actor dropped")
		return
	}
	handler, ok := i.handlers[cmd.Action]
	if !ok {
		return
	}

	ctx := handlers.Context{
		Actor: a.ID,
		Kind:  a.Kind,
		Alive: a.Alive(),
		Tick:  i.CurrentTick,
	}
	if a.Kind == domain.ActorKindPlayer {
		ctx.Input = a.Input()
	}

	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		i.log().WithFields(logrus.Fields{"actor": a.ID, "action": cmd.Action}).WithError(err).Warn("Command rejected")
		if i.Publisher != nil {
			i.Publisher.SendTo(a.ID, api.ServerResponse{Type: api.MsgTypeError, Tick: i.CurrentTick, LevelID: i.ID, Error: err.Error()})
		}
		return
	}

	if cmd.Action.Journaled() {
		i.recordRaw(cmd.Action, a.ID, cmd.Payload)
	}
	if result.Resync {
		i.resync[a.ID] = api.MsgTypeUpdate
	}
	if result.Msg != "" {
		i.AddLog(a.ID, result.MsgType, result.Msg)
	}
}

func (i *Instance) addActor(a *Actor, cell domain.GridCell, facing domain.Facing) {
	a.Order = i.nextOrder
	i.nextOrder++
	a.placeAt(i.Grid, cell, facing)
	// Клетка под актором бронируется сразу, до выдачи навигации.
	// ReserveLocation остается только как повтор, если клетку кто-то держит.
	if i.Reservations.RequestReserve(a.ID, cell) {
		a.Reservation = domain.ReservationNone
	}
	i.actors = append(i.actors, a)
	i.byID[a.ID] = a
}

// removeActor удаляет актора, сохраняя порядок остальных.
func (i *Instance) removeActor(id domain.EntityID) *Actor {
	a, ok := i.byID[id]
	if !ok {
		return nil
	}
	i.Reservations.ReleaseAll(id)
	delete(i.byID, id)
	delete(i.resync, id)
	for idx, other := range i.actors {
		if other.ID == id {
			i.actors = append(i.actors[:idx], i.actors[idx+1:]...)
			break
		}
	}
	return a
}

// freeCellNear - ближайшая (BFS, порядок N, E, S, W) свободная клетка.
// Учитывает клетки, которые уже обещаны акторам, еще не успевшим их забронировать.
func (i *Instance) freeCellNear(start domain.GridCell) domain.GridCell {
	if !i.Occupancy.Bounds().Contains(start) {
		start = i.Level.Spawn.Cell
	}
	free := func(c domain.GridCell) bool {
		return i.Occupancy.Walkable(c) && !i.spawnPending(c)
	}
	if free(start) {
		return start
	}

	seen := map[domain.GridCell]bool{start: true}
	queue := []domain.GridCell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range c.Neighbors() {
			if seen[n] || !i.Occupancy.Bounds().Contains(n) || i.Occupancy.IsStatic(n) {
				continue
			}
			seen[n] = true
			if free(n) {
				return n
			}
			queue = append(queue, n)
		}
	}
	return start
}

func (i *Instance) spawnPending(c domain.GridCell) bool {
	for _, a := range i.actors {
		if a.Reservation == domain.ReserveLocation && a.spawnCell == c {
			return true
		}
	}
	return false
}

// processEvent - разбор очереди событий: выдача навигации, варпы, журнал.
func (i *Instance) processEvent(ev domain.SimEvent) {
	i.logEvent(ev)

	switch ev.Type {
	case domain.EventNavRequest:
		if a, ok := i.byID[ev.Actor]; ok && !a.HasNavData() {
			a.SetNavData(i.nav)
		}
	case domain.EventArrived:
		a, ok := i.byID[ev.Actor]
		if !ok || a.Kind != domain.ActorKindPlayer {
			return
		}
		if w, ok := i.Level.WarpAt(ev.Cell); ok {
			i.warpOut(a, w)
		}
	}
}

func (i *Instance) warpOut(a *Actor, w levels.Warp) {
	i.removeActor(a.ID)
	i.events.Push(domain.SimEvent{Type: domain.EventWarpEntered, Actor: a.ID, Cell: w.TargetCell, Facing: w.Facing, Level: w.TargetLevel})

	if i.Warper == nil {
		return
	}
	cell, facing := w.TargetCell, w.Facing
	i.Warper.Warp(i.ID, w.TargetLevel, JoinRequest{
		ID:     a.ID,
		Name:   a.Name,
		Cell:   &cell,
		Facing: &facing,
		Stats:  a.Stats.Clone(),
		Warped: true,
	})
}

func (i *Instance) record(action domain.ActionType, id domain.EntityID, payload interface{}) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			i.log().WithError(err).Error("Failed to journal action")
			return
		}
		raw = b
	}
	i.recordRaw(action, id, raw)
}

func (i *Instance) recordRaw(action domain.ActionType, id domain.EntityID, payload json.RawMessage) {
	i.Journal.Actions = append(i.Journal.Actions, domain.ReplayAction{
		Tick:    i.CurrentTick,
		Token:   id,
		Action:  action,
		Payload: append(json.RawMessage(nil), payload...),
	})
}

// --- Surroundings ---

func (i *Instance) Nearby(self *Actor, radius float64) []systems.Candidate {
	candidates := make([]systems.Candidate, 0, len(i.actors))
	for _, a := range i.actors {
		candidates = append(candidates, systems.Candidate{
			ID:       a.ID,
			Kind:     a.Kind,
			Position: a.Position,
			Cell:     i.Grid.WorldToGrid(a.Position),
			Alive:    a.Alive(),
			Order:    a.Order,
		})
	}
	return systems.FindNearby(self.ID, self.Position, radius, candidates)
}

func (i *Instance) ActorCell(id domain.EntityID) (domain.GridCell, bool, bool) {
	a, ok := i.byID[id]
	if !ok {
		return domain.GridCell{}, false, false
	}
	return i.Grid.WorldToGrid(a.Position), a.Alive(), true
}

func (i *Instance) Damage(target domain.EntityID, amount int) systems.DamageResult {
	a, ok := i.byID[target]
	if !ok {
		return systems.DamageResult{}
	}
	return systems.ApplyDamage(target, a.Stats, amount)
}

// --- Accessors ---

// Actor возвращает актора уровня по ID.
func (i *Instance) Actor(id domain.EntityID) (*Actor, bool) {
	a, ok := i.byID[id]
	return a, ok
}

// Actors - акторы в порядке регистрации.
func (i *Instance) Actors() []*Actor {
	return i.actors
}

func (i *Instance) EventLog() []api.LogEntry {
	return i.eventLog.Recent()
}
