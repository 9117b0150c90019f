package dto

// DatasetSummaryResponse reports table sizes and the timeslot grid shape of
// the dataset currently in memory.
type DatasetSummaryResponse struct {
	DataDir         string `json:"data_dir"`
	Seeded          bool   `json:"seeded"`
	Teachers        int    `json:"teachers"`
	Classes         int    `json:"classes"`
	Rooms           int    `json:"rooms"`
	Subjects        int    `json:"subjects"`
	CurriculumLines int    `json:"curriculum_lines"`
	SessionsPerWeek int    `json:"sessions_per_week"`
	Days            int    `json:"days"`
	Periods         int    `json:"periods"`
	Timeslots       int    `json:"timeslots"`
	Unavailability  int    `json:"unavailability_rules"`
}

// SeedResponse reports what an explicit seed wrote. Existing files are
// never overwritten, so zero means the dataset was already complete.
type SeedResponse struct {
	FilesWritten int `json:"files_written"`
}
