package levels

import (
	"isogrid-server/internal/domain"
)

// Встроенные уровни: используются, когда каталог уровней не задан.
const (
	MeadowLevelID  = 0
	CottageLevelID = 1
)

// Meadow - стартовая поляна: пара волков, деревья и тропинка к домику.
func Meadow() *Level {
	return NewLevel(MeadowLevelID, "Поляна", nil).
		WithSize(16, 12).
		WithBorder().
		Block(
			domain.GridCell{X: 6, Y: 4},
			domain.GridCell{X: 6, Y: 5},
			domain.GridCell{X: 7, Y: 5},
			domain.GridCell{X: 9, Y: 2},
			domain.GridCell{X: 4, Y: 8},
		).
		WithSpawn(domain.GridCell{X: 3, Y: 3}, domain.FacingSW).
		AddMob(domain.ActorKindWolf, domain.GridCell{X: 11, Y: 8}, domain.FacingNW).
		AddMob(domain.ActorKindWolf, domain.GridCell{X: 12, Y: 3}, domain.FacingSW).
		AddWarp(domain.GridCell{X: 13, Y: 9}, CottageLevelID, domain.GridCell{X: 2, Y: 2}, domain.FacingSE).
		MustBuild()
}

// Cottage - домик без мобов, выход обратно на поляну.
func Cottage() *Level {
	return NewLevel(CottageLevelID, "Домик", nil).
		WithSize(8, 8).
		WithBorder().
		WithSpawn(domain.GridCell{X: 3, Y: 3}, domain.FacingSE).
		AddWarp(domain.GridCell{X: 6, Y: 6}, MeadowLevelID, domain.GridCell{X: 12, Y: 9}, domain.FacingNW).
		MustBuild()
}

// Builtin возвращает встроенный набор уровней.
func Builtin() map[int]*Level {
	return map[int]*Level{
		MeadowLevelID:  Meadow(),
		CottageLevelID: Cottage(),
	}
}
