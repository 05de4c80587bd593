package output

// TSVHeader is the canonical header row for text/TSV candidate output.
// Keep this as the single source of truth; all writers should use it.
const TSVHeader = "query\tcontig\tstart\tend\tstrand\tsupport\trepetitive_tiles"
