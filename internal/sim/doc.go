// Package sim provides the core primitives shared by the pendulum
// controller and its scenario tooling:
//
//   - [State]: vector of generalized coordinates and velocities
//   - [Dynamics]: interface for controlled ODE systems (dx/dt = f(x, u, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Metric], [Observer]: per-step diagnostics
//
// Nothing in this package blocks or allocates per step beyond the returned
// state vector; all types are intended for single-threaded, fixed-rate use.
package sim
