// Package spectrum measures rendered audio: an FFT analyzer that finds the
// dominant partial of a block and a Goertzel probe that reads the level of
// a single tone.
//
// Both are used offline, on mono float64 captures, to check that notes land
// at the expected frequencies and that the filter attenuates what it should.
package spectrum
