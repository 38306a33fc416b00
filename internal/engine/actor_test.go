package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isogrid-server/internal/domain"
	"isogrid-server/internal/engine/handlers"
	"isogrid-server/internal/systems"
)

func TestActorRequestsNavDataFirst(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 1, Y: 1}, mob{cell: domain.GridCell{X: 6, Y: 6}})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	wolf := inst.Actors()[0]

	require.False(t, wolf.HasNavData())
	holder, held := inst.Reservations.HolderOf(domain.GridCell{X: 6, Y: 6})
	require.True(t, held, "spawn cell is held from placement")
	assert.Equal(t, wolf.ID, holder)
	assert.Equal(t, domain.ReservationNone, wolf.Reservation)

	runTicks(inst, 1)
	assert.True(t, wolf.HasNavData(), "nav request must be answered by the level")
	assert.Equal(t, []domain.GridCell{{X: 6, Y: 6}}, inst.Reservations.HeldBy(wolf.ID))
}

func TestJoinedActorHoldsCellBeforeNavData(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	a := inst.ApplyJoin(JoinRequest{ID: playerID(1), Facing: facingPtr(domain.FacingSE)})
	a.Input().Hold(domain.FacingSE)
	runTicks(inst, 1)

	// b встает на клетку, куда a собирается шагнуть на этом же тике.
	b := inst.ApplyJoin(JoinRequest{ID: playerID(2), Cell: cellPtr(4, 3)})
	require.Equal(t, domain.GridCell{X: 4, Y: 3}, b.Cell())
	require.False(t, b.HasNavData())

	runTicks(inst, 1)
	holder, ok := inst.Reservations.HolderOf(domain.GridCell{X: 4, Y: 3})
	require.True(t, ok)
	assert.Equal(t, b.ID, holder)
	assert.Equal(t, []domain.GridCell{{X: 3, Y: 3}}, inst.Reservations.HeldBy(a.ID))
	assert.Equal(t, domain.StateIdle, a.State)
	assert.False(t, a.IsMoving())
	assert.True(t, hasEvent(inst, "MOVE_BLOCKED", a.ID))
	assert.False(t, hasEvent(inst, "SPAWN_BLOCKED", b.ID))
}

func TestSpawnOnHeldCellRetriesUntilFree(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	squatter := playerID(9)
	require.True(t, inst.Reservations.RequestReserve(squatter, domain.GridCell{X: 3, Y: 3}))

	// freeCellNear видит только блокировки, поэтому подставим клетку напрямую.
	p := NewActor(playerID(1), domain.ActorKindPlayer, "p", domain.NewStats(100), 3, inst.tuning(), &inst.events)
	inst.addActor(p, domain.GridCell{X: 3, Y: 3}, domain.FacingSW)
	assert.Equal(t, domain.ReserveLocation, p.Reservation)

	runTicks(inst, 2)
	assert.True(t, hasEvent(inst, "SPAWN_BLOCKED", p.ID))
	assert.Empty(t, inst.Reservations.HeldBy(p.ID))

	inst.Reservations.Release(squatter, domain.GridCell{X: 3, Y: 3})
	runTicks(inst, 1)
	assert.Equal(t, []domain.GridCell{{X: 3, Y: 3}}, inst.Reservations.HeldBy(p.ID))
	assert.Equal(t, domain.ReservationNone, p.Reservation)
}

func TestTurnBeforeWalk(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	p := inst.ApplyJoin(JoinRequest{ID: playerID(1)})
	require.Equal(t, domain.FacingSW, p.Facing)

	p.Input().Hold(domain.FacingSE)
	anchor := inst.Grid.GridToWorld(domain.GridCell{X: 3, Y: 3})

	runTicks(inst, 2)
	assert.Equal(t, domain.FacingSE, p.Facing, "second tick turns")
	assert.Equal(t, domain.StateIdle, p.State)
	assert.False(t, p.IsMoving())
	assert.Equal(t, anchor, p.Position, "turning never moves")
	assert.True(t, hasEvent(inst, "TURNED", p.ID))

	runTicks(inst, 1)
	assert.Equal(t, domain.StateMoving, p.State, "third tick commits with the same intent")
	assert.Equal(t, domain.ReserveDestination, p.Reservation)
	dest, ok := inst.Reservations.HolderOf(domain.GridCell{X: 4, Y: 3})
	require.True(t, ok)
	assert.Equal(t, p.ID, dest)
	origin, ok := inst.Reservations.HolderOf(domain.GridCell{X: 3, Y: 3})
	require.True(t, ok, "origin stays reserved while moving")
	assert.Equal(t, p.ID, origin)
	assert.InDelta(t, anchor.X+4.8, p.Position.X, 1e-9)
	assert.InDelta(t, anchor.Y+2.4, p.Position.Y, 1e-9)
}

func TestArrivalSnapsAndReleasesOrigin(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	p := inst.ApplyJoin(JoinRequest{ID: playerID(1), Facing: facingPtr(domain.FacingSE)})
	p.Input().Hold(domain.FacingSE)

	// Тик 1 - навигация, тик 2 - шаг, еще три физических прохода до прибытия.
	runTicks(inst, 4)
	require.True(t, p.IsMoving())

	p.Input().Release()
	runTicks(inst, 1)
	assert.False(t, p.IsMoving())
	assert.Equal(t, domain.StateIdle, p.State)
	assert.Equal(t, domain.ReservationNone, p.Reservation)
	assert.Equal(t, inst.Grid.GridToWorld(domain.GridCell{X: 4, Y: 3}), p.Position, "arrival snaps exactly")
	assert.Equal(t, []domain.GridCell{{X: 4, Y: 3}}, inst.Reservations.HeldBy(p.ID))
	assert.True(t, hasEvent(inst, "ARRIVED", p.ID))

	runTicks(inst, 3)
	assert.Equal(t, domain.GridCell{X: 4, Y: 3}, p.Cell(), "released input does not start a new step")
}

func TestContentionResolvedInRegistrationOrder(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 0, Y: 0})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)

	a := inst.ApplyJoin(JoinRequest{ID: playerID(1), Cell: cellPtr(2, 3), Facing: facingPtr(domain.FacingSE)})
	b := inst.ApplyJoin(JoinRequest{ID: playerID(2), Cell: cellPtr(4, 3), Facing: facingPtr(domain.FacingNW)})
	a.Input().Hold(domain.FacingSE)
	b.Input().Hold(domain.FacingNW)

	runTicks(inst, 2)

	holder, ok := inst.Reservations.HolderOf(domain.GridCell{X: 3, Y: 3})
	require.True(t, ok)
	assert.Equal(t, a.ID, holder, "first registered actor wins the contested cell")
	assert.Equal(t, domain.StateMoving, a.State)

	assert.Equal(t, domain.StateIdle, b.State)
	assert.Equal(t, inst.Grid.GridToWorld(domain.GridCell{X: 4, Y: 3}), b.Position)
	assert.True(t, hasEvent(inst, "MOVE_BLOCKED", b.ID))
}

func TestBiteLandsOnStationaryTarget(t *testing.T) {
	// Волк в (3,3) смотрит на SW, игрок в соседней клетке (3,4).
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 4}, mob{cell: domain.GridCell{X: 3, Y: 3}, facing: domain.FacingSW})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	wolf := inst.Actors()[0]
	p := inst.ApplyJoin(JoinRequest{ID: playerID(1)})

	runTicks(inst, 2)
	require.Equal(t, domain.StateActing, wolf.State)
	assert.True(t, hasEvent(inst, "BITE_STARTED", wolf.ID))

	runTicks(inst, 2)
	assert.Equal(t, 100, p.Stats.HP, "bite window still open")

	runTicks(inst, 1)
	assert.Equal(t, 100-inst.sim.BiteDamage, p.Stats.HP)
	assert.Equal(t, domain.StateIdle, wolf.State)
	assert.True(t, hasEvent(inst, "BITE_LANDED", wolf.ID))
}

func TestBiteMissesTargetThatLeft(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 4}, mob{cell: domain.GridCell{X: 3, Y: 3}, facing: domain.FacingSW})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	wolf := inst.Actors()[0]
	p := inst.ApplyJoin(JoinRequest{ID: playerID(1)})
	p.Input().Hold(domain.FacingSW)

	runTicks(inst, 2)
	require.Equal(t, domain.StateActing, wolf.State)
	require.Equal(t, domain.StateMoving, p.State)

	runTicks(inst, 3)
	assert.Equal(t, 100, p.Stats.HP)
	assert.True(t, hasEvent(inst, "BITE_MISSED", wolf.ID))
	assert.False(t, hasEvent(inst, "BITE_LANDED", wolf.ID))
}

func TestCompleteActionResolvesEarly(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 4}, mob{cell: domain.GridCell{X: 3, Y: 3}, facing: domain.FacingSW})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	wolf := inst.Actors()[0]
	p := inst.ApplyJoin(JoinRequest{ID: playerID(1)})

	runTicks(inst, 2)
	require.Equal(t, domain.StateActing, wolf.State)

	wolf.CompleteAction()
	runTicks(inst, 1)
	assert.Equal(t, 100-inst.sim.BiteDamage, p.Stats.HP)
}

func TestWolfTurnsBeforeBiting(t *testing.T) {
	// Игрок к юго-востоку (4,3), волк смотрит на SW.
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 4, Y: 3}, mob{cell: domain.GridCell{X: 3, Y: 3}, facing: domain.FacingSW})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	wolf := inst.Actors()[0]
	inst.ApplyJoin(JoinRequest{ID: playerID(1)})

	runTicks(inst, 2)
	assert.Equal(t, domain.FacingSE, wolf.Facing)
	assert.Equal(t, domain.StateIdle, wolf.State)

	runTicks(inst, 1)
	assert.Equal(t, domain.StateActing, wolf.State)
}

func TestDeadPlayerIgnoresInput(t *testing.T) {
	sim := testSim()
	sim.BiteDamage = 1000
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 4}, mob{cell: domain.GridCell{X: 3, Y: 3}, facing: domain.FacingSW})
	inst := NewInstance(lvl, sim, testTickRate, 1)
	p := inst.ApplyJoin(JoinRequest{ID: playerID(1)})

	runTicks(inst, 5)
	require.False(t, p.Alive())
	assert.True(t, hasEvent(inst, "ACTOR_DIED", p.ID))

	journaled := len(inst.Journal.Actions)
	inst.ApplyCommand(domain.InternalCommand{Action: domain.ActionMove, Actor: p.ID, Payload: []byte(`{"facing":"ne"}`)})
	_, held := p.Input().Poll()
	assert.False(t, held)
	assert.Len(t, inst.Journal.Actions, journaled, "rejected command is not journaled")

	runTicks(inst, 3)
	holder, ok := inst.Reservations.HolderOf(domain.GridCell{X: 3, Y: 4})
	require.True(t, ok, "dead actor keeps blocking its cell")
	assert.Equal(t, p.ID, holder)
}

func TestHandlerRejectsMobInput(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 1, Y: 1}, mob{cell: domain.GridCell{X: 6, Y: 6}})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	wolf := inst.Actors()[0]

	_, err := inst.handlers[domain.ActionMove](handlers.Context{Actor: wolf.ID, Kind: wolf.Kind, Alive: true}, []byte(`{"facing":"ne"}`))
	assert.ErrorIs(t, err, handlers.ErrNotControllable)
}

// killerWorld - окружение, в котором любой укус смертелен.
type killerWorld struct{ cell domain.GridCell }

func (w killerWorld) Nearby(*Actor, float64) []systems.Candidate { return nil }
func (w killerWorld) ActorCell(domain.EntityID) (domain.GridCell, bool, bool) {
	return w.cell, true, true
}
func (w killerWorld) Damage(domain.EntityID, int) systems.DamageResult {
	return systems.DamageResult{Applied: 10, HPBefore: 10, Killed: true}
}

func TestKillingBiteWithoutEventSink(t *testing.T) {
	target := domain.GridCell{X: 2, Y: 3}
	wolf := NewActor(domain.PackEntityID(domain.ActorKindWolf, 0, 1), domain.ActorKindWolf, "wolf",
		domain.NewStats(30), 3, Tuning{BiteDamage: 10, BiteDuration: 0.1}, nil)
	wolf.SetNavData(&NavData{World: killerWorld{cell: target}})
	wolf.Reservation = domain.ReservationNone
	wolf.beginAct(playerID(1), target)

	assert.NotPanics(t, func() { wolf.OnLogicUpdate(0.1) })
	assert.Equal(t, domain.StateIdle, wolf.State)
}
