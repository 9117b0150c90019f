package dto

import "time"

// ReportFileResponse is one generated artifact with its signed download link.
type ReportFileResponse struct {
	Name        string    `json:"name"`
	SizeBytes   int64     `json:"size_bytes"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ReportManifestResponse lists the artifact set generated from the latest
// timetable. Tokens are minted per response, so every call carries fresh
// expiry times.
type ReportManifestResponse struct {
	ReportID    string               `json:"report_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Files       []ReportFileResponse `json:"files"`
}
