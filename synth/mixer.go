package synth

import "math"

// mixSigned sums one ±1 contribution per voice. A voice contributes +1 only
// when sin(2*pi*f*t)*amp is strictly positive, so the envelope gates the
// sign and amp == 0 yields -1 per voice.
func mixSigned(voices []Voice, amp, t float64) float64 {
	signal := 0.0
	for i := range voices {
		raw := math.Sin(2 * math.Pi * voices[i].FrequencyHz * t)
		if raw*amp > 0 {
			signal++
		} else {
			signal--
		}
	}
	return signal
}

// mixScaled sums amp*sign(sin(2*pi*f*t)) per voice, with sign(0) = -1.
func mixScaled(voices []Voice, amp, t float64) float64 {
	signal := 0.0
	for i := range voices {
		raw := math.Sin(2 * math.Pi * voices[i].FrequencyHz * t)
		if raw > 0 {
			signal += amp
		} else {
			signal -= amp
		}
	}
	return signal
}
