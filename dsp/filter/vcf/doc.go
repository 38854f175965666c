// Package vcf provides a time-varying resonant low-pass biquad whose
// coefficients are recomputed on every sample.
//
// The cutoff is expressed as a percentage on an exponential scale: 100 maps
// to 20 kHz and every 10 points below halve the frequency. The filter keeps
// an unnormalized Direct Form I (a0 is divided out of the accumulated sum,
// not out of the coefficients) so its output matches the classic
// percent-driven VCF sample for sample.
//
// Two behaviors of that classic filter are kept as defaults:
//   - Resonance is accepted but ignored; Q stays at 1.0. Enable
//     [WithResonanceHonored] to map the resonance percentage to Q.
//   - The delay line starts at [SeedState] rather than zero, which gives a
//     short, reproducible transient on the first samples.
//
// The computed cutoff is always clamped below 0.99 * Nyquist; without the
// clamp a percentage above ~101 at 44.1 kHz drives w0 past pi and the
// recursion diverges.
package vcf
