package model

type SongSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Bars   int    `json:"bars"`
	Tracks int    `json:"tracks"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type RefreshResponse struct {
	Phrases int `json:"phrases"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

func Summarize(s *Song) SongSummary {
	return SongSummary{ID: s.ID.String(), Title: s.Meta.Title, Bars: s.BarCount(), Tracks: s.TrackCount()}
}
