// Package analysis characterises simulated motion.
//
//   - [PowerSpectrum]: one-sided amplitude spectrum of a sampled coordinate
//   - [DominantFrequencies]: strongest oscillation of every coordinate of a run
//   - [LyapunovExponent]: largest Lyapunov exponent by trajectory separation
//
// A positive largest Lyapunov exponent indicates chaotic motion:
//
//	lambda, err := analysis.LyapunovExponent(ctx, mb, integ, x0, dt, duration, 1e-8)
//	if err == nil && lambda > 0 {
//	    // chaotic
//	}
package analysis
