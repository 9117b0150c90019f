package models

import "time"

// ReportFile describes one generated artifact relative to the output root.
type ReportFile struct {
	Name    string `json:"name"`
	RelPath string `json:"rel_path"`
	Size    int64  `json:"size"`
}

// ReportManifest lists everything the materializer wrote for one solution.
type ReportManifest struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Files       []ReportFile `json:"files"`
}
