// Package pipeline provides a framework for executing scrape steps in
// sequence and fanning the sequence out across multiple URLs.
//
// A scrape moves through stages: fetch the page, extract records,
// summarize, and export. Each stage is implemented as a Step that receives
// the accumulated report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context
//
// The pipeline supports both single-URL runs and batch processing with a
// fixed-size worker pool built on errgroup. Per-URL failures are isolated:
// one URL failing never aborts its siblings.
package pipeline
