package fab

// Point is a position on the board in millimeters.
type Point struct {
	X, Y float64
}

// Route is an ordered sequence of waypoints describing one orthogonal trace
// path. Consecutive waypoints differ in exactly one axis, which keeps the
// path drawable by a single-width traced aperture without angle artifacts.
type Route []Point

// Strategy selects which axis a route follows first. The choice is made per
// net segment by the layout author; the router never infers it.
type Strategy int

const (
	// HorizontalFirst moves along X from the start, then along Y.
	HorizontalFirst Strategy = iota
	// VerticalFirst moves along Y from the start, then along X.
	VerticalFirst
)

// RouteBetween produces a two- or three-point orthogonal path from a to b
// using the given strategy. When the endpoints share an axis value the
// route degenerates to a single straight segment with no zero-length
// intermediate leg.
//
// Routes are not checked for collisions with other routes, pads, or board
// edges; that is the responsibility of whoever authors the fixed layout.
func RouteBetween(a, b Point, s Strategy) Route {
	if a.X == b.X || a.Y == b.Y {
		return Route{a, b}
	}
	if s == VerticalFirst {
		return Route{a, {X: a.X, Y: b.Y}, b}
	}
	return Route{a, {X: b.X, Y: a.Y}, b}
}

// RouteHorizontalFirst routes a to b moving along X first.
func RouteHorizontalFirst(a, b Point) Route {
	return RouteBetween(a, b, HorizontalFirst)
}

// RouteVerticalFirst routes a to b moving along Y first.
func RouteVerticalFirst(a, b Point) Route {
	return RouteBetween(a, b, VerticalFirst)
}
