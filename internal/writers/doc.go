// Package writers turns query candidates into serialized outputs.
//
// Writers run as goroutines fed through a channel and report a single
// error when the channel is closed. JSON and JSONL go through pkg/api (v1)
// for a stable wire format. A downstream reader closing early (e.g. `head`)
// is not an error.
package writers
