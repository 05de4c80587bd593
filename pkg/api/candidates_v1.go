// pkg/api/candidates_v1.go
package api

// CandidateV1 is the stable JSON/JSONL schema for candidate loci.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type CandidateV1 struct {
	Query      string `json:"query"`
	Contig     string `json:"contig"`
	Start      uint64 `json:"start"`  // 1-based, inclusive
	End        uint64 `json:"end"`    // 1-based, inclusive
	Strand     string `json:"strand"` // "+" | "-"
	Support    int    `json:"support"`
	Repetitive int    `json:"repetitive_tiles,omitempty"`
}

// LocusV1 is the schema of a decoded genome-wide coordinate.
type LocusV1 struct {
	Position uint64 `json:"position"`
	Contig   string `json:"contig"`
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	Strand   string `json:"strand"`
}

// LoadStatsV1 summarises an index load.
type LoadStatsV1 struct {
	Index        string `json:"index"`
	TileLength   int    `json:"tile_length"`
	Contigs      int    `json:"contigs"`
	Lines        uint64 `json:"lines"`
	Entries      uint64 `json:"entries"`
	CountOnly    uint64 `json:"count_only"`
	InvalidTiles uint64 `json:"invalid_tiles"`
	Malformed    uint64 `json:"malformed"`
	Duplicates   uint64 `json:"duplicates"`
}
