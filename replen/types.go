package replen

import (
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
)

type RunNowRequest struct {
	CompanyId string `json:"companyId"`
}

type UpdateSettingsRequest struct {
	CompanyId           string   `json:"companyId"`
	Enabled             *bool    `json:"enabled"`
	SyncIntervalMinutes int      `json:"syncIntervalMinutes"`
	ActiveBranches      []string `json:"activeBranches"`
	UseMockGateway      *bool    `json:"useMockGateway"`
	ApiUrl              string   `json:"apiUrl"`
	ApiKey              string   `json:"apiKey"`
}

type CompanyStatusResponse struct {
	CompanyId           string   `json:"companyId"`
	Enabled             bool     `json:"enabled"`
	SyncIntervalMinutes int      `json:"syncIntervalMinutes"`
	ActiveBranches      []string `json:"activeBranches"`
	UseMockGateway      bool     `json:"useMockGateway"`
	LastSuccessFetchAt  *string  `json:"lastSuccessFetchAt"`
	NextDueAt           *string  `json:"nextDueAt"`
}

type WaveSummaryResponse struct {
	ID             uint    `json:"id"`
	WaveNumber     string  `json:"waveNumber"`
	Branch         string  `json:"branch"`
	Status         string  `json:"status"`
	TriggeredBy    string  `json:"triggeredBy"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	AckReference   string  `json:"ackReference"`
	ErrorText      string  `json:"errorText"`
	GeneratedAt    string  `json:"generatedAt"`
	DispatchedAt   *string `json:"dispatchedAt"`
	CompletedAt    *string `json:"completedAt"`
}

type WaveDetailResponse struct {
	WaveSummaryResponse
	Tasks []WaveTaskResponse `json:"tasks"`
}

type WaveTaskResponse struct {
	Sequence       int    `json:"sequence"`
	LocationCode   string `json:"locationCode"`
	ProductCode    string `json:"productCode"`
	Description    string `json:"description"`
	CurrentQty     string `json:"currentQty"`
	MinQty         string `json:"minQty"`
	QtyToReplenish string `json:"qtyToReplenish"`
	AbcClass       string `json:"abcClass"`
	Priority       int    `json:"priority"`
	Status         string `json:"status"`
}

type FragmentationSampleResponse struct {
	Score           float64 `json:"score"`
	BelowMinCount   int     `json:"belowMinCount"`
	ActiveLocations int     `json:"activeLocations"`
	TakenAt         string  `json:"takenAt"`
}

type SyncLogEntryResponse struct {
	ID          uint   `json:"id"`
	Branch      string `json:"branch"`
	Action      string `json:"action"`
	Status      string `json:"status"`
	RecordCount int    `json:"recordCount"`
	ErrorText   string `json:"errorText"`
	DurationMs  int64  `json:"durationMs"`
	TriggeredBy string `json:"triggeredBy"`
	FinishedAt  string `json:"finishedAt"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func waveSummary(wave *models.ReplenishmentWave) WaveSummaryResponse {
	return WaveSummaryResponse{
		ID:             wave.ID,
		WaveNumber:     wave.WaveNumber,
		Branch:         wave.Branch,
		Status:         wave.Status,
		TriggeredBy:    wave.TriggeredBy,
		TotalTasks:     wave.TotalTasks,
		CompletedTasks: wave.CompletedTasks,
		AckReference:   wave.AckReference,
		ErrorText:      wave.ErrorText,
		GeneratedAt:    wave.GeneratedAt.UTC().Format(time.RFC3339),
		DispatchedAt:   formatTime(wave.DispatchedAt),
		CompletedAt:    formatTime(wave.CompletedAt),
	}
}
