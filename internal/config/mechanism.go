package config

import (
	"fmt"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
)

// GroundName refers to the fixed root in joint, spring and constraint
// descriptions.
const GroundName = "ground"

// Vec is a 3-vector. Empty means zero.
type Vec []float64

// Mechanism is a declarative description of a kinematic tree with its
// force elements and constraints.
type Mechanism struct {
	Description string       `yaml:"description,omitempty"`
	Gravity     Vec          `yaml:"gravity,flow,omitempty"`
	Bodies      []Body       `yaml:"bodies"`
	Joints      []Joint      `yaml:"joints"`
	Springs     []Spring     `yaml:"springs,omitempty"`
	Constraints []Constraint `yaml:"constraints,omitempty"`
	Forces      []Force      `yaml:"forces,omitempty"`
}

// Body selects a shape constructor. Only the fields of the chosen shape
// are read.
type Body struct {
	Name        string  `yaml:"name"`
	Shape       string  `yaml:"shape"`
	Density     float64 `yaml:"density,omitempty"`
	Length      float64 `yaml:"length,omitempty"`
	OuterRadius float64 `yaml:"outer_radius,omitempty"`
	InnerRadius float64 `yaml:"inner_radius,omitempty"`
	Radius      float64 `yaml:"radius,omitempty"`
	Radii       Vec     `yaml:"radii,flow,omitempty"`
	Size        Vec     `yaml:"size,flow,omitempty"`
	Mass        float64 `yaml:"mass,omitempty"`
}

// Rotation is an axis-angle rotation, angle in radians.
type Rotation struct {
	Axis  Vec     `yaml:"axis,flow"`
	Angle float64 `yaml:"angle"`
}

// Joint connects Child to Parent. Coordinates are numbered in list order.
type Joint struct {
	Type              string    `yaml:"type"`
	Parent            string    `yaml:"parent"`
	Child             string    `yaml:"child"`
	Axis              Vec       `yaml:"axis,flow,omitempty"`
	ParentOffset      Vec       `yaml:"parent_offset,flow,omitempty"`
	ParentRotation    *Rotation `yaml:"parent_rotation,omitempty"`
	SuccessorOffset   Vec       `yaml:"successor_offset,flow,omitempty"`
	SuccessorRotation *Rotation `yaml:"successor_rotation,omitempty"`
}

// Point is a body-fixed point, offset from the centre of mass in body
// coordinates. On the ground the offset is an inertial position.
type Point struct {
	Body   string `yaml:"body"`
	Offset Vec    `yaml:"offset,flow,omitempty"`
}

// Spring is either a point-to-point spring-damper ("point", A and B) or a
// spring-damper on one joint coordinate ("joint", Joint names the child
// body of the joint).
type Spring struct {
	Type      string  `yaml:"type"`
	A         Point   `yaml:"a,omitempty"`
	B         Point   `yaml:"b,omitempty"`
	Joint     string  `yaml:"joint,omitempty"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
	Rest      float64 `yaml:"rest"`
}

// Constraint is either a point coincidence ("point", optional inertial
// Axes) or a joint lock ("lock").
type Constraint struct {
	Type  string `yaml:"type"`
	A     Point  `yaml:"a,omitempty"`
	B     Point  `yaml:"b,omitempty"`
	Axes  []Vec  `yaml:"axes,flow,omitempty"`
	Joint string `yaml:"joint,omitempty"`
}

// Force is a constant inertial force applied at a body-fixed point.
type Force struct {
	At    Point `yaml:"at"`
	Force Vec   `yaml:"force,flow"`
}

var (
	Shapes     = []string{"rod", "ellipsoid", "sphere", "cuboid", "point"}
	JointTypes = []string{"revolute", "prismatic", "fixed"}
)

// DOF counts the coordinates of the described joints.
func (m *Mechanism) DOF() int {
	n := 0
	for _, j := range m.Joints {
		if j.Type == "revolute" || j.Type == "prismatic" {
			n++
		}
	}
	return n
}

// Validate checks names, references and vector sizes. Shape parameters
// and tree topology are checked when the mechanism is built.
func (m *Mechanism) Validate() error {
	if err := checkVec("gravity", m.Gravity); err != nil {
		return err
	}
	if len(m.Bodies) == 0 {
		return fmt.Errorf("%w: mechanism has no bodies", dynamo.ErrConfiguration)
	}

	names := map[string]bool{GroundName: true}
	for i, b := range m.Bodies {
		if b.Name == "" {
			return fmt.Errorf("%w: body %d has no name", dynamo.ErrConfiguration, i)
		}
		if names[b.Name] {
			return fmt.Errorf("%w: body name %q used twice", dynamo.ErrConfiguration, b.Name)
		}
		names[b.Name] = true
		if !contains(Shapes, b.Shape) {
			return fmt.Errorf("%w: body %q has unknown shape %q", dynamo.ErrConfiguration, b.Name, b.Shape)
		}
		if err := checkVec(b.Name+".radii", b.Radii); err != nil {
			return err
		}
		if err := checkVec(b.Name+".size", b.Size); err != nil {
			return err
		}
	}

	joints := map[string]bool{}
	for i, j := range m.Joints {
		what := fmt.Sprintf("joint %d", i)
		if !contains(JointTypes, j.Type) {
			return fmt.Errorf("%w: %s has unknown type %q", dynamo.ErrConfiguration, what, j.Type)
		}
		if !names[j.Parent] {
			return fmt.Errorf("%w: %s parent %q is not a body", dynamo.ErrConfiguration, what, j.Parent)
		}
		if !names[j.Child] || j.Child == GroundName {
			return fmt.Errorf("%w: %s child %q is not a movable body", dynamo.ErrConfiguration, what, j.Child)
		}
		if j.Type != "fixed" && len(j.Axis) != 3 {
			return fmt.Errorf("%w: %s needs a 3-vector axis", dynamo.ErrConfiguration, what)
		}
		for _, v := range []struct {
			name string
			v    Vec
		}{{"parent_offset", j.ParentOffset}, {"successor_offset", j.SuccessorOffset}} {
			if err := checkVec(what+"."+v.name, v.v); err != nil {
				return err
			}
		}
		for _, r := range []*Rotation{j.ParentRotation, j.SuccessorRotation} {
			if r != nil && len(r.Axis) != 3 {
				return fmt.Errorf("%w: %s rotation needs a 3-vector axis", dynamo.ErrConfiguration, what)
			}
		}
		if j.Type != "fixed" {
			joints[j.Child] = true
		}
	}

	for i, s := range m.Springs {
		what := fmt.Sprintf("spring %d", i)
		switch s.Type {
		case "point":
			if err := checkPoints(what, names, s.A, s.B); err != nil {
				return err
			}
		case "joint":
			if !joints[s.Joint] {
				return fmt.Errorf("%w: %s joint %q does not name a moving joint's child", dynamo.ErrConfiguration, what, s.Joint)
			}
		default:
			return fmt.Errorf("%w: %s has unknown type %q", dynamo.ErrConfiguration, what, s.Type)
		}
	}

	for i, c := range m.Constraints {
		what := fmt.Sprintf("constraint %d", i)
		switch c.Type {
		case "point":
			if err := checkPoints(what, names, c.A, c.B); err != nil {
				return err
			}
			for _, a := range c.Axes {
				if len(a) != 3 {
					return fmt.Errorf("%w: %s axes must be 3-vectors", dynamo.ErrConfiguration, what)
				}
				if a[0] == 0 && a[1] == 0 && a[2] == 0 {
					return fmt.Errorf("%w: %s has a zero-length axis", dynamo.ErrConfiguration, what)
				}
			}
		case "lock":
			if !joints[c.Joint] {
				return fmt.Errorf("%w: %s joint %q does not name a moving joint's child", dynamo.ErrConfiguration, what, c.Joint)
			}
		default:
			return fmt.Errorf("%w: %s has unknown type %q", dynamo.ErrConfiguration, what, c.Type)
		}
	}

	for i, f := range m.Forces {
		what := fmt.Sprintf("force %d", i)
		if !names[f.At.Body] || f.At.Body == GroundName {
			return fmt.Errorf("%w: %s body %q is not a movable body", dynamo.ErrConfiguration, what, f.At.Body)
		}
		if len(f.Force) != 3 {
			return fmt.Errorf("%w: %s needs a 3-vector force", dynamo.ErrConfiguration, what)
		}
		if err := checkVec(what+".offset", f.At.Offset); err != nil {
			return err
		}
	}
	return nil
}

func checkPoints(what string, names map[string]bool, a, b Point) error {
	for _, p := range []Point{a, b} {
		if !names[p.Body] {
			return fmt.Errorf("%w: %s body %q is not a body", dynamo.ErrConfiguration, what, p.Body)
		}
		if err := checkVec(what+".offset", p.Offset); err != nil {
			return err
		}
	}
	if a.Body == b.Body {
		return fmt.Errorf("%w: %s connects %q to itself", dynamo.ErrConfiguration, what, a.Body)
	}
	return nil
}

func checkVec(what string, v Vec) error {
	if len(v) != 0 && len(v) != 3 {
		return fmt.Errorf("%w: %s has %d components, want 3", dynamo.ErrConfiguration, what, len(v))
	}
	return nil
}
