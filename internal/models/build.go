// Package models turns mechanism descriptions into multibody systems and
// provides the torque-free tumbling body driver.
package models

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/body"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/config"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/constraint"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/force"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/joint"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/spatial"
)

// Model is a built mechanism. Bodies and joints are addressed by the body
// names of the description; a joint is named after its child body.
type Model struct {
	*multibody.MultiRigidBody

	Description string
	Names       []string // body names by BodyID, "ground" first
	IDs         map[string]multibody.BodyID
	Joints      map[string]multibody.Joint
}

// coordinate is a joint with a single generalized coordinate.
type coordinate interface {
	multibody.Joint
	Coordinate() (q, qDot float64)
}

// Build validates m and assembles it. Setup has been called on the result.
func Build(m *config.Mechanism, opts ...multibody.Option) (*Model, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	gravity := body.DefaultGravity
	if len(m.Gravity) == 3 {
		gravity = vec(m.Gravity)
	}

	model := &Model{
		MultiRigidBody: multibody.New(opts...),
		Description:    m.Description,
		Names:          []string{config.GroundName},
		IDs:            map[string]multibody.BodyID{config.GroundName: multibody.Ground},
		Joints:         map[string]multibody.Joint{},
	}

	for _, bc := range m.Bodies {
		b, err := newBody(bc, gravity)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		b.Name = bc.Name
		id, err := model.AddBody(b)
		if err != nil {
			return nil, err
		}
		model.IDs[bc.Name] = id
		model.Names = append(model.Names, bc.Name)
	}

	for _, jc := range m.Joints {
		j, err := newJoint(jc)
		if err != nil {
			return nil, fmt.Errorf("joint to %q: %w", jc.Child, err)
		}
		if err := model.Connect(model.IDs[jc.Parent], model.IDs[jc.Child], j); err != nil {
			return nil, err
		}
		model.Joints[jc.Child] = j
	}

	for i, sc := range m.Springs {
		s, err := model.newSpring(sc)
		if err != nil {
			return nil, fmt.Errorf("spring %d: %w", i, err)
		}
		model.AddSpringDamper(s)
	}
	for _, fc := range m.Forces {
		model.AddSpringDamper(&force.ConstantForce{At: model.attachment(fc.At), Force: vec(fc.Force)})
	}
	for i, cc := range m.Constraints {
		c, err := model.newConstraint(cc)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i, err)
		}
		model.AddConstraint(c)
	}

	if err := model.Setup(m.DOF()); err != nil {
		return nil, err
	}
	return model, nil
}

// Coordinate returns the single-coordinate joint whose child is name.
func (m *Model) Coordinate(name string) (coordinate, error) {
	j, ok := m.Joints[name].(coordinate)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not the child of a moving joint", dynamo.ErrConfiguration, name)
	}
	return j, nil
}

// CoordinateNames names each generalized coordinate after the child body
// of the joint that owns it.
func (m *Model) CoordinateNames() []string {
	nq, err := m.NQ()
	if err != nil {
		return nil
	}
	names := make([]string, nq)
	for child, j := range m.Joints {
		for k := 0; k < j.DOF(); k++ {
			if j.DOF() == 1 {
				names[j.Index()] = child
			} else {
				names[j.Index()+k] = fmt.Sprintf("%s.%d", child, k)
			}
		}
	}
	return names
}

func newBody(bc config.Body, gravity mgl64.Vec3) (*body.RigidBody, error) {
	switch bc.Shape {
	case "rod":
		return body.NewRod(body.Rod{
			Length:      bc.Length,
			OuterRadius: bc.OuterRadius,
			InnerRadius: bc.InnerRadius,
			Density:     bc.Density,
		}, gravity)
	case "ellipsoid":
		r := vec(bc.Radii)
		return body.NewEllipsoid(body.Ellipsoid{RX: r[0], RY: r[1], RZ: r[2], Density: bc.Density}, gravity)
	case "sphere":
		return body.NewSphere(bc.Radius, bc.Density, gravity)
	case "cuboid":
		s := vec(bc.Size)
		return body.NewCuboid(s[0], s[1], s[2], bc.Density, gravity)
	case "point":
		return body.NewPointMass(bc.Mass, gravity)
	}
	return nil, fmt.Errorf("%w: unknown shape %q", dynamo.ErrConfiguration, bc.Shape)
}

func newJoint(jc config.Joint) (multibody.Joint, error) {
	g := joint.Geometry{
		ParentOffset:      vec(jc.ParentOffset),
		ParentRotation:    rotation(jc.ParentRotation),
		SuccessorOffset:   vec(jc.SuccessorOffset),
		SuccessorRotation: rotation(jc.SuccessorRotation),
	}
	switch jc.Type {
	case "revolute":
		return joint.NewRevolute(vec(jc.Axis), g)
	case "prismatic":
		return joint.NewPrismatic(vec(jc.Axis), g)
	case "fixed":
		return joint.NewFixed(g), nil
	}
	return nil, fmt.Errorf("%w: unknown joint type %q", dynamo.ErrConfiguration, jc.Type)
}

func (m *Model) newSpring(sc config.Spring) (multibody.SpringDamper, error) {
	if sc.Type == "joint" {
		j, err := m.Coordinate(sc.Joint)
		if err != nil {
			return nil, err
		}
		return force.NewJointSpringDamper(j, sc.Stiffness, sc.Damping, sc.Rest)
	}
	return force.NewPointSpringDamper(m.attachment(sc.A), m.attachment(sc.B), sc.Stiffness, sc.Damping, sc.Rest)
}

func (m *Model) newConstraint(cc config.Constraint) (multibody.BilateralConstraint, error) {
	if cc.Type == "lock" {
		j, err := m.Coordinate(cc.Joint)
		if err != nil {
			return nil, err
		}
		return &constraint.Lock{Joint: j}, nil
	}
	a, b := m.attachment(cc.A), m.attachment(cc.B)
	p, err := constraint.NewPoint(a.Body, a.Offset, b.Body, b.Offset)
	if err != nil {
		return nil, err
	}
	for _, axis := range cc.Axes {
		p.Axes = append(p.Axes, vec(axis))
	}
	return p, nil
}

func (m *Model) attachment(p config.Point) force.Attachment {
	return force.Attachment{Body: m.Body(m.IDs[p.Body]), Offset: vec(p.Offset)}
}

func vec(v config.Vec) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

func rotation(r *config.Rotation) mgl64.Mat3 {
	if r == nil {
		return mgl64.Ident3()
	}
	return spatial.Rotation(vec(r.Axis), r.Angle)
}
