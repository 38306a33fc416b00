package systems

import (
	"isogrid-server/internal/domain"
)

// Advance сдвигает актора на один тик к клетке назначения.
//
// velocity = MovementVector(facing) * speed * dt. Если новая позиция ближе
// ArrivalSnapDistance к dest, или шаг проскочил бы dest, позиция прилипает ровно к dest
// и возвращается arrived=true (вызывающий очищает destination).
// Это единственный путь, которым меняется позиция во время движения.
func Advance(pos, dest domain.WorldPosition, facing domain.Facing, tileWidth, speed, dt float64) (domain.WorldPosition, bool) {
	velocity := facing.MovementVector(tileWidth).Scale(speed * dt)
	next := pos.Add(velocity)

	if next.DistanceTo(dest) < domain.ArrivalSnapDistance {
		return dest, true
	}

	// Проскочили: остаток пути до dest короче шага и направлен туда же.
	remaining := dest.Sub(pos)
	stepLen := velocity.Length()
	if stepLen > 0 && remaining.Dot(velocity) > 0 && remaining.Length() <= stepLen {
		return dest, true
	}

	return next, false
}
