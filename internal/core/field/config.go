package field

import (
	"fmt"
	"math"

	"github.com/zeusync/cellsim/internal/core/geom"
)

type Shape string

const (
	ShapeSphere Shape = "sphere"
	ShapeBox    Shape = "box"
)

const DefaultMaxPlacementAttempts = 100000

// Config fixes the geometry of the field for the lifetime of a simulation.
type Config struct {
	Shape  Shape   `yaml:"shape"`
	Radius float64 `yaml:"radius"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
	// BufferFraction widens box placement beyond the imaging volume.
	BufferFraction       float64 `yaml:"buffer_fraction"`
	MaxPlacementAttempts int     `yaml:"max_placement_attempts"`
	// UniformSphereSampling draws sphere placements uniformly by volume
	// instead of uniformly in radius.
	UniformSphereSampling bool `yaml:"uniform_sphere_sampling"`
}

func (c Config) Validate() error {
	switch c.Shape {
	case ShapeSphere:
		if c.Radius <= 0 {
			return fmt.Errorf("%w: sphere radius must be positive", ErrInvalidGeometry)
		}
	case ShapeBox:
		if c.Width <= 0 || c.Height <= 0 || c.Depth <= 0 {
			return fmt.Errorf("%w: box dimensions must be positive", ErrInvalidGeometry)
		}
	default:
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidGeometry, c.Shape)
	}
	if c.BufferFraction < 0 {
		return fmt.Errorf("%w: buffer fraction must be non-negative", ErrInvalidGeometry)
	}
	if c.MaxPlacementAttempts < 0 {
		return fmt.Errorf("%w: max placement attempts must be non-negative", ErrInvalidGeometry)
	}
	return nil
}

// Center of a sphere sits at (R, R, R) so the volume lies in the positive
// octant; a box is centred on its imaging volume.
func (c Config) Center() geom.Vector3 {
	if c.Shape == ShapeSphere {
		return geom.Vec(c.Radius, c.Radius, c.Radius)
	}
	return geom.Vec(c.Width/2, c.Height/2, c.Depth/2)
}

// Volume of the region agents are placed in.
func (c Config) Volume() float64 {
	if c.Shape == ShapeSphere {
		return 4.0 / 3.0 * math.Pi * c.Radius * c.Radius * c.Radius
	}
	bf := c.BufferFraction
	return c.Width * (1 + 2*bf) * c.Height * (1 + 2*bf) * c.Depth * (1 + bf)
}

// Outside reports whether loc lies beyond the permitted volume.
func (c Config) Outside(loc geom.Vector3) bool {
	if c.Shape == ShapeSphere {
		return loc.DistanceSq(c.Center()) > c.Radius*c.Radius
	}
	bf := c.BufferFraction
	return loc.X < -c.Width*bf || loc.X > c.Width+c.Width*bf ||
		loc.Y < -c.Height*bf || loc.Y > c.Height+c.Height*bf ||
		loc.Z < 0 || loc.Z > c.Depth+c.Depth*bf
}

// InsideImagingVolume reports whether loc lies in [0,w]x[0,h]x[0,d]. For a
// sphere the imaging volume is its bounding cube.
func (c Config) InsideImagingVolume(loc geom.Vector3) bool {
	w, h, d := c.Width, c.Height, c.Depth
	if c.Shape == ShapeSphere {
		w, h, d = 2*c.Radius, 2*c.Radius, 2*c.Radius
	}
	return loc.X >= 0 && loc.X <= w &&
		loc.Y >= 0 && loc.Y <= h &&
		loc.Z >= 0 && loc.Z <= d
}

func (c Config) maxAttempts() int {
	if c.MaxPlacementAttempts == 0 {
		return DefaultMaxPlacementAttempts
	}
	return c.MaxPlacementAttempts
}
