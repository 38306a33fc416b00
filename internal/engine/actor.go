package engine

import (
	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/grid"
	"isogrid-server/internal/systems"
	"isogrid-server/pkg/logger"
)

// Surroundings - то, что актор может спросить у владельца уровня.
type Surroundings interface {
	// Nearby - кандидаты в радиусе (запрос близости), отсортированные по расстоянию.
	Nearby(self *Actor, radius float64) []systems.Candidate
	// ActorCell - текущая клетка актора и жив ли он.
	ActorCell(id domain.EntityID) (cell domain.GridCell, alive bool, found bool)
	// Damage применяет урон к актору уровня.
	Damage(target domain.EntityID, amount int) systems.DamageResult
}

// NavData - навигационные данные уровня. Актор получает их в ответ на EventNavRequest
// и до этого не делает ничего, кроме повторного запроса.
type NavData struct {
	Grid         grid.IsoGrid
	Reservations *systems.Reservations
	Search       grid.PathSearcher
	World        Surroundings
}

// EventSink принимает события актора (очередь уровня).
type EventSink interface {
	Push(ev domain.SimEvent)
}

// Tuning - параметры поведения актора из SimConfig.
type Tuning struct {
	BiteDamage    int
	BiteDuration  float64
	PursuitRadius float64
}

// HeldInput - источник ввода игрока: направление, которое сейчас "зажато".
// Опрашивается один раз за логический тик.
type HeldInput struct {
	facing domain.Facing
	held   bool
}

func (h *HeldInput) Hold(f domain.Facing) {
	h.facing = f
	h.held = true
}

func (h *HeldInput) Release() {
	h.held = false
}

// Poll возвращает текущее намерение или ничего.
func (h *HeldInput) Poll() (domain.Facing, bool) {
	return h.facing, h.held
}

// Actor - одна фигура на сетке и ее автомат движения.
// Позиция меняется только через Advance во время движения (или при спавне).
type Actor struct {
	ID    domain.EntityID
	Kind  domain.ActorKind
	Name  string
	Order int // порядок регистрации на уровне
	Stats *domain.StatsComponent
	Speed float64

	Position    domain.WorldPosition
	Facing      domain.Facing
	State       domain.ActorState
	Reservation domain.ReservationState

	// destination != nil - единственный признак "в движении".
	destination *domain.WorldPosition
	origin      domain.GridCell
	destCell    domain.GridCell
	spawnCell   domain.GridCell

	nav    *NavData
	events EventSink
	input  HeldInput
	tuning Tuning

	// Acting
	actTarget  domain.EntityID
	actCell    domain.GridCell
	actElapsed float64
	actDone    bool
}

// NewActor создает актора. Клетку под ним бронирует уровень при размещении,
// если она занята, актор повторяет бронь сам (ReserveLocation).
func NewActor(id domain.EntityID, kind domain.ActorKind, name string, stats *domain.StatsComponent, speed float64, tuning Tuning, events EventSink) *Actor {
	return &Actor{
		ID:          id,
		Kind:        kind,
		Name:        name,
		Stats:       stats,
		Speed:       speed,
		State:       domain.StateIdle,
		Reservation: domain.ReserveLocation,
		events:      events,
		tuning:      tuning,
	}
}

// SetNavData - ответ владельца уровня на EventNavRequest.
func (a *Actor) SetNavData(nav *NavData) {
	a.nav = nav
}

func (a *Actor) HasNavData() bool {
	return a.nav != nil
}

// Input - источник намерений игрока (MOVE/STOP).
func (a *Actor) Input() *HeldInput {
	return &a.input
}

// Destination возвращает мировую точку назначения, если актор в движении.
func (a *Actor) Destination() (domain.WorldPosition, bool) {
	if a.destination == nil {
		return domain.WorldPosition{}, false
	}
	return *a.destination, true
}

func (a *Actor) IsMoving() bool {
	return a.destination != nil
}

func (a *Actor) Alive() bool {
	return a.Stats == nil || !a.Stats.IsDead
}

// Cell - клетка под текущей позицией актора.
func (a *Actor) Cell() domain.GridCell {
	if a.nav == nil {
		return a.spawnCell
	}
	return a.nav.Grid.WorldToGrid(a.Position)
}

// CompleteAction - внешний сигнал "анимация действия закончилась".
// Следующий логический тик разрешит Acting досрочно.
func (a *Actor) CompleteAction() {
	if a.State == domain.StateActing {
		a.actDone = true
	}
}

func (a *Actor) emit(ev domain.SimEvent) {
	ev.Actor = a.ID
	a.push(ev)
}

// push - событие от имени другого актора (гибель цели).
func (a *Actor) push(ev domain.SimEvent) {
	if a.events != nil {
		a.events.Push(ev)
	}
}

func (a *Actor) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "actor",
		"actor":     a.ID,
		"state":     a.State,
	})
}

// OnLogicUpdate - логический проход тика: решения, бронирование, Acting.
func (a *Actor) OnLogicUpdate(dt float64) {
	if a.nav == nil {
		a.emit(domain.SimEvent{Type: domain.EventNavRequest})
		return
	}

	if a.Reservation == domain.ReserveLocation {
		cell := a.Cell()
		if !a.nav.Reservations.RequestReserve(a.ID, cell) {
			// Клетку спавна кто-то держит: ждем, пока освободится.
			a.emit(domain.SimEvent{Type: domain.EventSpawnBlocked, Cell: cell})
			return
		}
		a.Reservation = domain.ReservationNone
	}

	if !a.Alive() {
		return
	}

	switch a.State {
	case domain.StateIdle:
		a.updateIdle()
	case domain.StateStartMoving:
		a.startMoving()
	case domain.StateActing:
		a.updateActing(dt)
	case domain.StateMoving:
		// Движением управляет физический проход.
	}
}

// OnPhysicsUpdate - физический проход: продвижение к клетке назначения и прибытие.
func (a *Actor) OnPhysicsUpdate(dt float64) {
	if a.nav == nil || a.destination == nil {
		return
	}

	pos, arrived := systems.Advance(a.Position, *a.destination, a.Facing, a.nav.Grid.TileWidth, a.Speed, dt)
	a.Position = pos
	if !arrived {
		return
	}

	a.destination = nil
	if a.Reservation == domain.ReserveDestination {
		a.nav.Reservations.Release(a.ID, a.origin)
		a.Reservation = domain.ReservationNone
	}
	a.State = domain.StateIdle
	a.emit(domain.SimEvent{Type: domain.EventArrived, Cell: a.destCell, From: a.origin, Facing: a.Facing})
}

func (a *Actor) updateIdle() {
	if a.Kind.IsPursuer() {
		a.pursue()
		return
	}

	facing, ok := a.input.Poll()
	if !ok {
		return
	}
	a.commitIntent(facing)
}

// commitIntent: поворот и шаг взаимоисключающие. Если направление другое, этот тик
// уходит только на поворот, шаг начнется на следующем тике с тем же намерением.
func (a *Actor) commitIntent(facing domain.Facing) {
	if facing != a.Facing {
		a.Facing = facing
		a.emit(domain.SimEvent{Type: domain.EventTurned, Cell: a.Cell(), Facing: facing})
		return
	}
	a.State = domain.StateStartMoving
	a.startMoving()
}

func (a *Actor) startMoving() {
	from := a.Cell()
	dest := a.nav.Grid.WorldToGrid(a.nav.Grid.Step(a.Position, a.Facing))

	if !a.nav.Reservations.RequestReserve(a.ID, dest) {
		a.State = domain.StateIdle
		a.emit(domain.SimEvent{Type: domain.EventMoveBlocked, Cell: dest, From: from, Facing: a.Facing})
		return
	}

	target := a.nav.Grid.GridToWorld(dest)
	a.destination = &target
	a.origin = from
	a.destCell = dest
	a.Reservation = domain.ReserveDestination
	a.State = domain.StateMoving
	a.emit(domain.SimEvent{Type: domain.EventMoveCommitted, Cell: dest, From: from, Facing: a.Facing})
}

func (a *Actor) pursue() {
	here := a.Cell()

	var target *domain.GridCell
	var targetID domain.EntityID
	nearby := a.nav.World.Nearby(a, a.tuning.PursuitRadius)
	if c, ok := systems.NearestPlayer(nearby); ok {
		cell := c.Cell
		target = &cell
		targetID = c.ID
	}

	res := systems.ComputePursuit(here, target, a.nav.Search)
	switch res.Outcome {
	case domain.PursuitReachedTarget:
		facing := domain.MustFacingToward(here, res.Cell)
		if facing != a.Facing {
			a.Facing = facing
			a.emit(domain.SimEvent{Type: domain.EventTurned, Cell: here, Facing: facing})
			return
		}
		a.beginAct(targetID, res.Cell)
	case domain.PursuitFoundPath:
		a.commitIntent(domain.MustFacingToward(here, res.Cell))
	}
}

func (a *Actor) beginAct(target domain.EntityID, cell domain.GridCell) {
	a.State = domain.StateActing
	a.actTarget = target
	a.actCell = cell
	a.actElapsed = 0
	a.actDone = false
	a.emit(domain.SimEvent{Type: domain.EventBiteStarted, Target: target, Cell: cell, Facing: a.Facing})
}

func (a *Actor) updateActing(dt float64) {
	a.actElapsed += dt
	if !a.actDone && a.actElapsed < a.tuning.BiteDuration {
		return
	}

	cell, alive, found := a.nav.World.ActorCell(a.actTarget)
	if found && systems.BiteConnects(a.actCell, cell, alive) {
		res := a.nav.World.Damage(a.actTarget, a.tuning.BiteDamage)
		a.emit(domain.SimEvent{Type: domain.EventBiteLanded, Target: a.actTarget, Cell: a.actCell, Amount: res.Applied})
		if res.Killed {
			a.push(domain.SimEvent{Type: domain.EventActorDied, Actor: a.actTarget, Cell: a.actCell})
		}
	} else {
		a.log().WithField("target", a.actTarget).Debug("Bite missed: target left the cell")
		a.emit(domain.SimEvent{Type: domain.EventBiteMissed, Target: a.actTarget, Cell: a.actCell})
	}

	a.State = domain.StateIdle
	a.actTarget = domain.NoEntity
	a.actElapsed = 0
	a.actDone = false
}

// placeAt ставит актора ровно в якорь клетки (спавн, варп).
func (a *Actor) placeAt(g grid.IsoGrid, cell domain.GridCell, facing domain.Facing) {
	a.Position = g.GridToWorld(cell)
	a.spawnCell = cell
	a.Facing = facing
	a.destination = nil
	a.State = domain.StateIdle
	a.Reservation = domain.ReserveLocation
}
