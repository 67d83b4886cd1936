// Package domain holds the mission vocabulary: the phase enumeration,
// the transition graph, the phase record owned by the engine, handler
// outcomes and the mission error taxonomy. It has no dependencies on
// hardware or persistence; everything here is plain data.
package domain
