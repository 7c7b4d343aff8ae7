package flashfinder

import "math"

// Geometry describes the optical detector layout to the flash builder.
// Implementations must be safe for concurrent readers.
type Geometry interface {
	// NChannels is the number of optical channels in the detector.
	NChannels() int
	// NPlanes is the number of wire readout planes.
	NPlanes() int
	// ChannelCenter returns the (x, y, z) center of a channel's detector.
	ChannelCenter(channel int) [3]float64
	// NearestWire returns the wire index on the given plane closest to the
	// projection of the point onto that plane.
	NearestWire(xyz [3]float64, plane int) int
}

// WirePlane holds the wire orientation of one readout plane. The wire
// coordinate of a point is z·cos(θ) − y·sin(θ); wire w sits at
// WireZero + w·Pitch along that axis.
type WirePlane struct {
	CosAngle float64
	SinAngle float64
	Pitch    float64
	WireZero float64
	NWires   int
}

// NewWirePlane builds a WirePlane from its wire angle in radians.
func NewWirePlane(angle float64, pitch float64, wireZero float64, nWires int) WirePlane {
	return WirePlane{
		CosAngle: math.Cos(angle),
		SinAngle: math.Sin(angle),
		Pitch:    pitch,
		WireZero: wireZero,
		NWires:   nWires,
	}
}

// DetectorGeometry is a concrete Geometry backed by per-channel detector
// centers and per-plane wire parameters, typically loaded from the
// calibration database.
type DetectorGeometry struct {
	Centers [][3]float64
	Planes  []WirePlane
}

func (g *DetectorGeometry) NChannels() int { return len(g.Centers) }

func (g *DetectorGeometry) NPlanes() int { return len(g.Planes) }

func (g *DetectorGeometry) ChannelCenter(channel int) [3]float64 {
	return g.Centers[channel]
}

func (g *DetectorGeometry) NearestWire(xyz [3]float64, plane int) int {
	p := g.Planes[plane]
	coord := xyz[2]*p.CosAngle - xyz[1]*p.SinAngle
	w := int(math.Round((coord - p.WireZero) / p.Pitch))
	if w < 0 {
		w = 0
	}
	if w >= p.NWires {
		w = p.NWires - 1
	}
	return w
}

// DefaultGeometry builds a single-plane bench geometry with channels
// spread along z. Used when running without the database.
func DefaultGeometry(nChannels int) *DetectorGeometry {
	const spacing = 0.3 // meters between channel centers
	centers := make([][3]float64, nChannels)
	for i := range centers {
		centers[i] = [3]float64{0, 0, float64(i) * spacing}
	}
	return &DetectorGeometry{
		Centers: centers,
		Planes: []WirePlane{
			{CosAngle: 1, SinAngle: 0, Pitch: spacing, WireZero: 0, NWires: nChannels},
		},
	}
}
