// Package harness provides conformance testing for the synthesis
// pipeline.
//
// The harness loads a function spec and a set of structural plan
// documents, runs the full gate -> generate -> verify -> select loop,
// checks the scenario's declared expectations, and snapshots the outcome
// for golden comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	spec: specs/function.cue
//	plans:
//	  - plans/candidate_0.yaml
//	  - plans/candidate_1.yaml
//	expect:
//	  gate: pass
//	  best_index: 1
//	  best_score: "1.000"
//
// A blocked scenario lists the expected issue kinds instead of plans:
//
//	expect:
//	  gate: block
//	  issues: [MissingReturn]
//
// Spec and plan paths are resolved relative to the scenario file. The
// run token is fixed to "run-{name}", so snapshots embedding it stay
// deterministic.
package harness
