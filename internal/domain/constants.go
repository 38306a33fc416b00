package domain

// Геометрия сетки
const (
	// DefaultTileWidth - ширина изометрического тайла в мировых единицах.
	DefaultTileWidth = 32.0

	// ArrivalSnapDistance - если до цели меньше этого, прилипаем к ней ровно.
	ArrivalSnapDistance = 1.0
)

// Скорости в тайлах в секунду (умножаются на вектор шага).
const (
	PlayerSpeed = 3.0
	WolfSpeed   = 3.5
)

// Бой
const (
	PlayerMaxHP = 100
	WolfMaxHP   = 30

	// BiteDamage - урон одного укуса. Один удар за цикл Acting.
	BiteDamage = 10

	// BiteDuration - окно укуса в секундах (длительность анимации укуса).
	BiteDuration = 0.6
)

// Восприятие
const (
	// PursuitSearchRadius - радиус поиска целей в мировых единицах.
	PursuitSearchRadius = 160.0
)

// Тики
const (
	DefaultTickRate = 30
)
