// Package harness provides conformance testing for bound templates.
//
// A scenario binds a template to data, then applies a sequence of writes,
// checking the rendered markup after the first pass and after every write.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	template: '<ul p-each="items"><li>{{name}}</li></ul>'
//	data:                     # or data_file: items.json
//	  items: [{name: a}, {name: b}]
//	components:               # optional <c name="..."> sources
//	  card: '<b>{{title}}</b>'
//	expect:                   # checked after the first render
//	  renders: 3
//	steps:
//	  - set: {"items.1.name": B}
//	    expect:
//	      html: '<ul p-each="items"><li>a</li><li>B</li></ul>'
//	      renders: 1
//
// # Expectations
//
//   - html: exact rendered markup
//   - contains / excludes: substrings of the markup
//   - renders: number of node renders in the pass
//   - relations: registered dependency paths, in creation order
//   - get: path → value pairs read back through the engine
//
// # Deterministic Testing
//
// Every scenario runs with a fixed pass token (scenario pass_token, or
// testutil.DefaultPassToken) and a testutil.DeterministicClock that is
// reset before each step, so the render count of a frame is exactly the
// number of nodes that step touched. Frames are serialized with
// value.MarshalCanonical for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/list.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
