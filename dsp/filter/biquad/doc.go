// Package biquad provides second-order section coefficients and their
// frequency-domain evaluation.
//
// [Coefficients] hold a biquad transfer function normalized so that a0 = 1.
// Filters that keep an unnormalized direct form at runtime (see
// dsp/filter/vcf) convert to this representation with [FromDirectForm] for
// response plotting and stability checks.
package biquad
