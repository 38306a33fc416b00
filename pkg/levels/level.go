package levels

import (
	"errors"
	"fmt"
	"sort"

	"isogrid-server/internal/domain"
)

// ErrInvalidLevel - файл уровня не прошел схему или семантическую проверку.
var ErrInvalidLevel = errors.New("invalid level")

// Level - описание уровня: размеры сетки, статические препятствия, точки появления и варпы.
type Level struct {
	ID        int                  `yaml:"id" json:"id"`
	Name      string               `yaml:"name" json:"name"`
	Width     int                  `yaml:"width" json:"width"`
	Height    int                  `yaml:"height" json:"height"`
	TileWidth float64              `yaml:"tile_width" json:"tileWidth"`
	Origin    domain.WorldPosition `yaml:"origin" json:"origin"`

	// Tiles - ASCII-раскладка (ряд = Y, символ = X): '#' стена, '@' спавн игрока, 'w' волк.
	// Разворачивается в Blocked/Spawn/Mobs при загрузке.
	Tiles []string `yaml:"tiles,omitempty" json:"-"`

	Blocked []domain.GridCell `yaml:"blocked,omitempty" json:"blocked"`
	Spawn   Spawn             `yaml:"spawn" json:"spawn"`
	Mobs    []MobSpawn        `yaml:"mobs,omitempty" json:"mobs"`
	Warps   []Warp            `yaml:"warps,omitempty" json:"warps"`
}

// Spawn - точка появления игрока.
type Spawn struct {
	Cell   domain.GridCell `yaml:"cell" json:"cell"`
	Facing domain.Facing   `yaml:"facing" json:"facing"`
}

// MobSpawn - моб, появляющийся при загрузке уровня.
type MobSpawn struct {
	Kind   domain.ActorKind `yaml:"kind" json:"kind"`
	Cell   domain.GridCell  `yaml:"cell" json:"cell"`
	Facing domain.Facing    `yaml:"facing" json:"facing"`
}

// Warp - клетка перехода на другой уровень.
// Игрок, прибывший на Cell, переносится на TargetLevel в TargetCell лицом в Facing.
type Warp struct {
	Cell        domain.GridCell `yaml:"cell" json:"cell"`
	TargetLevel int             `yaml:"target_level" json:"targetLevel"`
	TargetCell  domain.GridCell `yaml:"target_cell" json:"targetCell"`
	Facing      domain.Facing   `yaml:"facing" json:"facing"`
}

func (l *Level) InBounds(c domain.GridCell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < l.Width && c.Y < l.Height
}

// WarpAt возвращает варп на клетке, если он там есть.
func (l *Level) WarpAt(c domain.GridCell) (Warp, bool) {
	for _, w := range l.Warps {
		if w.Cell == c {
			return w, true
		}
	}
	return Warp{}, false
}

// expandTiles переносит ASCII-раскладку в явные поля.
func (l *Level) expandTiles() error {
	if len(l.Tiles) == 0 {
		return nil
	}

	if l.Height == 0 {
		l.Height = len(l.Tiles)
	}
	if l.Width == 0 {
		for _, row := range l.Tiles {
			if len(row) > l.Width {
				l.Width = len(row)
			}
		}
	}

	spawnSeen := false
	for y, row := range l.Tiles {
		for x, ch := range row {
			cell := domain.GridCell{X: x, Y: y}
			switch ch {
			case '#':
				l.Blocked = append(l.Blocked, cell)
			case '@':
				if spawnSeen {
					return fmt.Errorf("level %d: second player spawn at %s: %w", l.ID, cell, ErrInvalidLevel)
				}
				spawnSeen = true
				l.Spawn.Cell = cell
			case 'w':
				l.Mobs = append(l.Mobs, MobSpawn{Kind: domain.ActorKindWolf, Cell: cell})
			case '.', ' ':
			default:
				return fmt.Errorf("level %d: unknown tile %q at %s: %w", l.ID, ch, cell, ErrInvalidLevel)
			}
		}
	}
	l.Tiles = nil
	return nil
}

// Normalize заполняет значения по умолчанию и упорядочивает препятствия.
func (l *Level) Normalize() {
	if l.TileWidth <= 0 {
		l.TileWidth = domain.DefaultTileWidth
	}
	sort.Slice(l.Blocked, func(i, j int) bool {
		a, b := l.Blocked[i], l.Blocked[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	// дубликаты
	out := l.Blocked[:0]
	for i, c := range l.Blocked {
		if i > 0 && c == l.Blocked[i-1] {
			continue
		}
		out = append(out, c)
	}
	l.Blocked = out
}

// Validate - семантическая проверка, которую не выражает схема.
func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("level %d: size %dx%d: %w", l.ID, l.Width, l.Height, ErrInvalidLevel)
	}

	blocked := make(map[domain.GridCell]struct{}, len(l.Blocked))
	for _, c := range l.Blocked {
		if !l.InBounds(c) {
			return fmt.Errorf("level %d: blocked cell %s out of bounds: %w", l.ID, c, ErrInvalidLevel)
		}
		blocked[c] = struct{}{}
	}

	occupied := make(map[domain.GridCell]string)
	claim := func(what string, c domain.GridCell) error {
		if !l.InBounds(c) {
			return fmt.Errorf("level %d: %s at %s out of bounds: %w", l.ID, what, c, ErrInvalidLevel)
		}
		if _, ok := blocked[c]; ok {
			return fmt.Errorf("level %d: %s at %s is inside a wall: %w", l.ID, what, c, ErrInvalidLevel)
		}
		if other, ok := occupied[c]; ok {
			return fmt.Errorf("level %d: %s at %s overlaps %s: %w", l.ID, what, c, other, ErrInvalidLevel)
		}
		occupied[c] = what
		return nil
	}

	if err := claim("player spawn", l.Spawn.Cell); err != nil {
		return err
	}
	for i, m := range l.Mobs {
		if !m.Kind.IsPursuer() {
			return fmt.Errorf("level %d: mob #%d has kind %s: %w", l.ID, i, m.Kind, ErrInvalidLevel)
		}
		if err := claim(fmt.Sprintf("mob #%d", i), m.Cell); err != nil {
			return err
		}
	}

	warps := make(map[domain.GridCell]struct{}, len(l.Warps))
	for i, w := range l.Warps {
		if !l.InBounds(w.Cell) {
			return fmt.Errorf("level %d: warp #%d at %s out of bounds: %w", l.ID, i, w.Cell, ErrInvalidLevel)
		}
		if _, ok := blocked[w.Cell]; ok {
			return fmt.Errorf("level %d: warp #%d at %s is inside a wall: %w", l.ID, i, w.Cell, ErrInvalidLevel)
		}
		if _, dup := warps[w.Cell]; dup {
			return fmt.Errorf("level %d: two warps at %s: %w", l.ID, w.Cell, ErrInvalidLevel)
		}
		warps[w.Cell] = struct{}{}
	}
	return nil
}

// CheckWarpTargets проверяет, что все варпы ведут на известные уровни в проходимые клетки.
func CheckWarpTargets(all map[int]*Level) error {
	ids := make([]int, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		l := all[id]
		for i, w := range l.Warps {
			target, ok := all[w.TargetLevel]
			if !ok {
				return fmt.Errorf("level %d: warp #%d targets unknown level %d: %w", id, i, w.TargetLevel, ErrInvalidLevel)
			}
			if !target.InBounds(w.TargetCell) {
				return fmt.Errorf("level %d: warp #%d target %s outside level %d: %w", id, i, w.TargetCell, w.TargetLevel, ErrInvalidLevel)
			}
			for _, c := range target.Blocked {
				if c == w.TargetCell {
					return fmt.Errorf("level %d: warp #%d target %s is a wall on level %d: %w", id, i, w.TargetCell, w.TargetLevel, ErrInvalidLevel)
				}
			}
		}
	}
	return nil
}
