package main

// Position and Velocity are the demo's two plain-data components;
// their schemas are auto-derived from Go field kinds at registration
// (both fields map to the "number" proptype.Descriptor).
type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	DX float64
	DY float64
}
