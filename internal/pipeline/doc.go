// Package pipeline provides a framework for executing check steps in sequence.
//
// A check moves one tracked item through several stages: admission against
// the rule table, identity resolution, fetching the product page, price
// extraction, and persistence. Each stage is implemented as a Step that
// receives the accumulated CheckResult and fills in its part.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for slow shop pages
// 4. Failed steps record their error on the result, so one bad item never
//    takes down a batch run
//
// The pipeline supports both individual checks and batch processing with
// concurrency control using errgroup.
package pipeline
