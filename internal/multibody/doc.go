// Package multibody assembles and solves the equations of motion of a
// kinematic tree of rigid bodies rooted at a fixed ground.
//
// A [MultiRigidBody] is an arena of bodies connected by joints. Bodies are
// addressed by stable [BodyID] indices; each joint edge is owned by its
// parent and the upward link is a plain index. After [MultiRigidBody.Setup]
// the arena is frozen and a topological order is cached for the two passes
// of every evaluation:
//
//   - forward kinematics, parents before children, with all generalized
//     accelerations held at zero so body accelerations are bias terms
//   - composite accumulation of M, f and g, children before parents
//
// Bilateral constraints J·qDDot + sigma = 0 turn the solve into the
// saddle-point system
//
//	[ M  -Jᵀ ] [ qDDot ]   [ f + g + tau + tauC ]
//	[ J   0  ] [   λ   ] = [      -sigma        ]
//
// which is factorized with a dense LU. A singular or ill-conditioned system
// is reported as [dynamo.ErrSingularSystem].
package multibody
