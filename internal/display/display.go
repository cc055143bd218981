// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output and markdown reports.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

// --- Trial classifications ---

var classes = map[string]string{
	"prime":     "Prime (correctly passed)",
	"composite": "Composite (witness found)",
	"liar":      "Fermat Liar (false positive)",
}

// Class returns the human-readable name for a trial classification
// code. Unknown codes are returned as-is.
func Class(code string) string {
	if name, ok := classes[code]; ok {
		return name
	}
	return code
}

// Classify returns the classification code for one trial outcome.
func Classify(probablyPrime, reallyPrime bool) string {
	switch {
	case reallyPrime:
		return "prime"
	case probablyPrime:
		return "liar"
	default:
		return "composite"
	}
}

// --- Gates ---

var gates = map[string]string{
	"G1": "Overall FP Rate",
	"G2": "Worst Bucket FP Rate",
	"G3": "Composite Sample Size",
}

// Gate returns the human-readable name for a gate ID.
func Gate(id string) string {
	if name, ok := gates[id]; ok {
		return name
	}
	return id
}

// GateWithID returns "Overall FP Rate (G1)" format for dual-audience contexts.
func GateWithID(id string) string {
	if name, ok := gates[id]; ok {
		return name + " (" + id + ")"
	}
	return id
}
