package domain

import (
	"fmt"
	"math"
)

// WorldPosition - точка в мировых координатах (float).
// Никогда не мутируется на месте, только заменяется целиком.
type WorldPosition struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vector - смещение в мировых координатах.
type Vector = WorldPosition

func (p WorldPosition) Add(v Vector) WorldPosition {
	return WorldPosition{X: p.X + v.X, Y: p.Y + v.Y}
}

func (p WorldPosition) Sub(other WorldPosition) Vector {
	return Vector{X: p.X - other.X, Y: p.Y - other.Y}
}

func (p WorldPosition) Scale(k float64) WorldPosition {
	return WorldPosition{X: p.X * k, Y: p.Y * k}
}

// Dot - скалярное произведение.
func (p WorldPosition) Dot(other WorldPosition) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Length - длина вектора.
func (p WorldPosition) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// DistanceTo возвращает точное расстояние до другой точки.
func (p WorldPosition) DistanceTo(other WorldPosition) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// ApproxEqual сравнивает покомпонентно с допуском eps.
func (p WorldPosition) ApproxEqual(other WorldPosition, eps float64) bool {
	return math.Abs(p.X-other.X) <= eps && math.Abs(p.Y-other.Y) <= eps
}

func (p WorldPosition) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}
