package levels

import (
	"math/rand"

	"isogrid-server/internal/domain"
)

// Константы генерации
const (
	DefaultWidth  = 40
	DefaultHeight = 25
	MinRoomSize   = 4
	MaxRoomSize   = 10
)

// Rect - Вспомогательная структура для комнаты
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Center() domain.GridCell {
	return domain.GridCell{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.W && r.X+r.W >= other.X &&
		r.Y <= other.Y+other.H && r.Y+r.H >= other.Y
}

// LevelBuilder предоставляет fluent API для создания уровней
// (тесты, встроенные уровни и процедурная генерация по сиду).
type LevelBuilder struct {
	level  Level
	walls  [][]bool
	rooms  []Rect
	rng    *rand.Rand
	carved bool
}

// NewLevel создает новый builder для уровня. rng нужен только для WithRooms/SpawnMobs.
func NewLevel(id int, name string, rng *rand.Rand) *LevelBuilder {
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(id)))
	}
	b := &LevelBuilder{
		level: Level{ID: id, Name: name, TileWidth: domain.DefaultTileWidth},
		rng:   rng,
	}
	return b.WithSize(DefaultWidth, DefaultHeight)
}

// WithSize устанавливает размер карты (сбрасывает стены).
func (b *LevelBuilder) WithSize(width, height int) *LevelBuilder {
	b.level.Width = width
	b.level.Height = height
	b.walls = make([][]bool, height)
	for y := range b.walls {
		b.walls[y] = make([]bool, width)
	}
	b.rooms = nil
	b.carved = false
	return b
}

func (b *LevelBuilder) WithTileWidth(w float64) *LevelBuilder {
	b.level.TileWidth = w
	return b
}

func (b *LevelBuilder) WithOrigin(p domain.WorldPosition) *LevelBuilder {
	b.level.Origin = p
	return b
}

// Block помечает клетки как статические препятствия.
func (b *LevelBuilder) Block(cells ...domain.GridCell) *LevelBuilder {
	for _, c := range cells {
		b.setWall(c, true)
	}
	return b
}

// WithBorder обносит уровень стеной по периметру.
func (b *LevelBuilder) WithBorder() *LevelBuilder {
	for x := 0; x < b.level.Width; x++ {
		b.setWall(domain.GridCell{X: x, Y: 0}, true)
		b.setWall(domain.GridCell{X: x, Y: b.level.Height - 1}, true)
	}
	for y := 0; y < b.level.Height; y++ {
		b.setWall(domain.GridCell{X: 0, Y: y}, true)
		b.setWall(domain.GridCell{X: b.level.Width - 1, Y: y}, true)
	}
	return b
}

// WithRooms заливает карту стеной и вырезает комнаты, соединенные коридорами.
func (b *LevelBuilder) WithRooms(maxRooms int) *LevelBuilder {
	for y := range b.walls {
		for x := range b.walls[y] {
			b.walls[y][x] = true
		}
	}

	b.rooms = make([]Rect, 0, maxRooms)
	for i := 0; i < maxRooms; i++ {
		w := b.randRange(MinRoomSize, MaxRoomSize)
		h := b.randRange(MinRoomSize, MaxRoomSize)
		if w+2 > b.level.Width || h+2 > b.level.Height {
			continue
		}
		x := b.randRange(1, b.level.Width-w-1)
		y := b.randRange(1, b.level.Height-h-1)

		newRoom := Rect{X: x, Y: y, W: w, H: h}

		// Проверяем пересечения
		failed := false
		for _, other := range b.rooms {
			if newRoom.Intersects(other) {
				failed = true
				break
			}
		}
		if failed {
			continue
		}

		b.carveRoom(newRoom)

		// Соединяем с предыдущей комнатой
		if len(b.rooms) > 0 {
			prev := b.rooms[len(b.rooms)-1].Center()
			curr := newRoom.Center()

			if b.rng.Intn(2) == 0 {
				b.carveHCorridor(prev.X, curr.X, prev.Y)
				b.carveVCorridor(prev.Y, curr.Y, curr.X)
			} else {
				b.carveVCorridor(prev.Y, curr.Y, prev.X)
				b.carveHCorridor(prev.X, curr.X, curr.Y)
			}
		}
		b.rooms = append(b.rooms, newRoom)
	}

	b.carved = true
	return b
}

// WithSpawn ставит точку появления игрока.
func (b *LevelBuilder) WithSpawn(cell domain.GridCell, facing domain.Facing) *LevelBuilder {
	b.level.Spawn = Spawn{Cell: cell, Facing: facing}
	return b
}

// AddMob добавляет моба в конкретную клетку.
func (b *LevelBuilder) AddMob(kind domain.ActorKind, cell domain.GridCell, facing domain.Facing) *LevelBuilder {
	b.level.Mobs = append(b.level.Mobs, MobSpawn{Kind: kind, Cell: cell, Facing: facing})
	return b
}

// SpawnMobs раскидывает мобов по случайным комнатам (кроме первой, где стоит игрок).
func (b *LevelBuilder) SpawnMobs(kind domain.ActorKind, count int) *LevelBuilder {
	for i := 0; i < count && len(b.rooms) > 1; i++ {
		room := b.rooms[b.rng.Intn(len(b.rooms)-1)+1]

		// Пробуем найти свободную клетку (макс 20 попыток)
		for attempt := 0; attempt < 20; attempt++ {
			c := domain.GridCell{
				X: room.X + 1 + b.rng.Intn(room.W-1),
				Y: room.Y + 1 + b.rng.Intn(room.H-1),
			}
			if b.isWall(c) || b.taken(c) {
				continue
			}
			b.AddMob(kind, c, domain.AllFacings[b.rng.Intn(len(domain.AllFacings))])
			break
		}
	}
	return b
}

// AddWarp добавляет переход на другой уровень.
func (b *LevelBuilder) AddWarp(cell domain.GridCell, targetLevel int, targetCell domain.GridCell, facing domain.Facing) *LevelBuilder {
	b.level.Warps = append(b.level.Warps, Warp{Cell: cell, TargetLevel: targetLevel, TargetCell: targetCell, Facing: facing})
	return b
}

// PlaceExit ставит варп в центр последней комнаты.
func (b *LevelBuilder) PlaceExit(targetLevel int, targetCell domain.GridCell, facing domain.Facing) *LevelBuilder {
	if len(b.rooms) == 0 {
		return b
	}
	return b.AddWarp(b.rooms[len(b.rooms)-1].Center(), targetLevel, targetCell, facing)
}

// StartCell возвращает стартовую позицию (центр первой комнаты)
func (b *LevelBuilder) StartCell() domain.GridCell {
	if len(b.rooms) > 0 {
		return b.rooms[0].Center()
	}
	return domain.GridCell{X: b.level.Width / 2, Y: b.level.Height / 2}
}

// Build собирает и проверяет уровень.
func (b *LevelBuilder) Build() (*Level, error) {
	l := b.level
	if b.carved && l.Spawn == (Spawn{}) {
		l.Spawn.Cell = b.StartCell()
	}

	l.Blocked = nil
	for y, row := range b.walls {
		for x, wall := range row {
			if wall {
				l.Blocked = append(l.Blocked, domain.GridCell{X: x, Y: y})
			}
		}
	}
	l.Mobs = append([]MobSpawn(nil), b.level.Mobs...)
	l.Warps = append([]Warp(nil), b.level.Warps...)

	l.Normalize()
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// MustBuild - для встроенных уровней и тестов.
func (b *LevelBuilder) MustBuild() *Level {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// --- Helper functions ---

func (b *LevelBuilder) randRange(min, max int) int {
	return b.rng.Intn(max-min+1) + min
}

func (b *LevelBuilder) setWall(c domain.GridCell, wall bool) {
	if c.Y < 0 || c.Y >= len(b.walls) || c.X < 0 || c.X >= len(b.walls[c.Y]) {
		return
	}
	b.walls[c.Y][c.X] = wall
}

func (b *LevelBuilder) isWall(c domain.GridCell) bool {
	if c.Y < 0 || c.Y >= len(b.walls) || c.X < 0 || c.X >= len(b.walls[c.Y]) {
		return true
	}
	return b.walls[c.Y][c.X]
}

func (b *LevelBuilder) taken(c domain.GridCell) bool {
	if c == b.StartCell() || c == b.level.Spawn.Cell {
		return true
	}
	for _, m := range b.level.Mobs {
		if m.Cell == c {
			return true
		}
	}
	return false
}

func (b *LevelBuilder) carveRoom(room Rect) {
	for y := room.Y + 1; y < room.Y+room.H; y++ {
		for x := room.X + 1; x < room.X+room.W; x++ {
			b.setWall(domain.GridCell{X: x, Y: y}, false)
		}
	}
}

func (b *LevelBuilder) carveHCorridor(x1, x2, y int) {
	for x := min(x1, x2); x <= max(x1, x2); x++ {
		b.setWall(domain.GridCell{X: x, Y: y}, false)
	}
}

func (b *LevelBuilder) carveVCorridor(y1, y2, x int) {
	for y := min(y1, y2); y <= max(y1, y2); y++ {
		b.setWall(domain.GridCell{X: x, Y: y}, false)
	}
}
