// Package shared holds code used across packages that belongs to no single
// layer.
//
// Today it only hosts the testutil subpackage:
//
//   - NewTestLogger returns a slog logger backed by a buffering handler so
//     tests can assert on log messages and attributes.
//   - Record and its options build domain.StockRecord fixtures.
//   - SampleCSV is a small metrics file with a missing percent change, an
//     absent series type and a duplicate symbol across days.
//   - WriteFile writes a fixture into a per-test temporary directory.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteFile(t, "metrics.csv", testutil.SampleCSV)
//	    ...
//	    assert.True(t, handler.ContainsMessage("dataset loaded"))
//	}
//
// Production code must not import testutil.
package shared
