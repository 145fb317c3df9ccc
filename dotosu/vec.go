package dotosu

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Vec2 is a playfield position or direction. The playfield is 512×384 units.
type Vec2 struct{ X, Y float64 }

const (
	PlayfieldWidth  = 512
	PlayfieldHeight = 384
)

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(f float64) Vec2 { return Vec2{a.X * f, a.Y * f} }
func (a Vec2) Dot(b Vec2) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }
func (a Vec2) Dist(b Vec2) float64  { return math.Hypot(a.X-b.X, a.Y-b.Y) }
func (a Vec2) Equal(b Vec2) bool    { return a.X == b.X && a.Y == b.Y }

// Lerp interpolates linearly from a to b.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Normalize returns the unit vector of a, or the zero vector for a zero-length a.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

func almostEq(a, b Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
