package engine

import (
	"isogrid-server/internal/domain"
	"isogrid-server/pkg/api"
)

// refreshSnapshot пересобирает общий снимок уровня после тика.
// Снимок без сетки и препятствий: их получают только при полном обновлении.
func (i *Instance) refreshSnapshot() {
	snap := api.ServerResponse{
		Type:    api.MsgTypeUpdate,
		Tick:    i.CurrentTick,
		LevelID: i.ID,
		Actors:  make([]api.ActorView, 0, len(i.actors)),
	}
	for _, a := range i.actors {
		snap.Actors = append(snap.Actors, i.actorView(a))
	}

	i.snapMu.Lock()
	i.snapshot = snap
	i.snapMu.Unlock()
}

func (i *Instance) actorView(a *Actor) api.ActorView {
	cell := i.Grid.WorldToGrid(a.Position)
	view := api.ActorView{
		ID:        a.ID.Token(),
		Kind:      a.Kind.String(),
		Name:      a.Name,
		Cell:      api.CellView{X: cell.X, Y: cell.Y},
		Facing:    a.Facing.String(),
		State:     a.State.String(),
		Animation: a.Facing.Animation(animationFor(a)),
	}
	view.Pos.X = a.Position.X
	view.Pos.Y = a.Position.Y

	if a.Stats != nil {
		view.Stats = &api.StatsView{
			HP:     a.Stats.HP,
			MaxHP:  a.Stats.MaxHP,
			IsDead: a.Stats.IsDead,
		}
	}
	return view
}

func animationFor(a *Actor) string {
	switch {
	case a.State == domain.StateActing:
		return "bite"
	case a.IsMoving():
		return "walk"
	default:
		return "idle"
	}
}

// Snapshot возвращает последний общий снимок (безопасно из любой горутины).
func (i *Instance) Snapshot() api.ServerResponse {
	i.snapMu.RLock()
	defer i.snapMu.RUnlock()
	return i.snapshot
}

// FullSnapshot - снимок вместе с метаданными сетки и статическими препятствиями.
func (i *Instance) FullSnapshot() api.ServerResponse {
	snap := i.Snapshot()
	i.withLevelData(&snap)
	return snap
}

func (i *Instance) withLevelData(snap *api.ServerResponse) {
	snap.Grid = &api.GridMeta{
		Width:     i.Level.Width,
		Height:    i.Level.Height,
		TileWidth: i.Level.TileWidth,
		OriginX:   i.Level.Origin.X,
		OriginY:   i.Level.Origin.Y,
	}
	snap.Blocked = make([]api.CellView, 0, len(i.Level.Blocked))
	for _, c := range i.Level.Blocked {
		snap.Blocked = append(snap.Blocked, api.CellView{X: c.X, Y: c.Y})
	}
}

// Publish рассылает снимок всем игрокам уровня, у которых есть подписка в хабе.
// Вызывается горутиной инстанса после каждого тика.
func (i *Instance) Publish() {
	if i.Publisher == nil {
		return
	}
	base := i.Snapshot()

	for _, a := range i.actors {
		if a.Kind != domain.ActorKindPlayer || !i.Publisher.HasSubscriber(a.ID) {
			continue
		}
		msg := base
		msg.MyEntityID = a.ID.Token()
		if msgType, ok := i.resync[a.ID]; ok {
			msg.Type = msgType
			i.withLevelData(&msg)
			delete(i.resync, a.ID)
		}
		i.Publisher.SendTo(a.ID, msg)
	}
}
