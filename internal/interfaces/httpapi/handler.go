package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/placarlab/matchodds/internal/domain/football"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	leagueDataService *usecase.LeagueDataService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(leagueDataService *usecase.LeagueDataService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		leagueDataService: leagueDataService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type leagueDataRequest struct {
	League    string `json:"league" validate:"required"`
	DaysAhead int    `json:"daysAhead" validate:"gte=0,lte=60"`
	DateFrom  string `json:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo    string `json:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	Provider  string `json:"provider"`
}

type standingsRowDTO struct {
	Position     int    `json:"position"`
	TeamID       int64  `json:"teamId"`
	Team         string `json:"team"`
	TLA          string `json:"tla,omitempty"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Draw         int    `json:"draw"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goalsFor"`
	GoalsAgainst int    `json:"goalsAgainst"`
	GoalDiff     int    `json:"goalDifference"`
	Points       int    `json:"points"`
	Form         string `json:"form,omitempty"`
}

type teamStrengthDTO struct {
	TeamID   int64   `json:"teamId"`
	Team     string  `json:"team"`
	Position int     `json:"position"`
	Points   int     `json:"points"`
	Played   int     `json:"played"`
	GoalDiff int     `json:"goalDifference"`
	Rating   float64 `json:"rating"`
}

type matchProbabilityDTO struct {
	UTCDate  time.Time `json:"utcDate"`
	Matchday *int      `json:"matchday"`
	Home     string    `json:"home"`
	HomePos  int       `json:"homePosition"`
	Away     string    `json:"away"`
	AwayPos  int       `json:"awayPosition"`
	PHome    float64   `json:"pHome"`
	PDraw    float64   `json:"pDraw"`
	PAway    float64   `json:"pAway"`
	Alert    bool      `json:"alert"`
}

type leagueDataResponse struct {
	League        string                `json:"league"`
	Sources       leagueDataSourcesDTO  `json:"sources"`
	Standings     []standingsRowDTO     `json:"standings"`
	Strengths     []teamStrengthDTO     `json:"strengths"`
	Probabilities []matchProbabilityDTO `json:"probabilities"`
	FetchedAt     time.Time             `json:"fetchedAt"`
}

type leagueDataSourcesDTO struct {
	Standings string `json:"standings"`
	Fixtures  string `json:"fixtures"`
}

func (h *Handler) GetLeagueData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueData")
	defer span.End()

	var req leagueDataRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	dateFrom, err := parseOptionalDate(req.DateFrom)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid dateFrom: %v", usecase.ErrInvalidInput, err))
		return
	}
	dateTo, err := parseOptionalDate(req.DateTo)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid dateTo: %v", usecase.ErrInvalidInput, err))
		return
	}

	data, err := h.leagueDataService.GetLeagueData(ctx, usecase.LeagueDataRequest{
		League:    req.League,
		DaysAhead: req.DaysAhead,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Provider:  strings.TrimSpace(req.Provider),
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toLeagueDataResponse(data))
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCache")
	defer span.End()

	removed := h.leagueDataService.ClearCache(ctx)
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"entriesRemoved": removed})
}

type competitionDTO struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Emblem   string `json:"emblem,omitempty"`
	Plan     string `json:"plan,omitempty"`
	AreaName string `json:"areaName,omitempty"`
	AreaCode string `json:"areaCode,omitempty"`
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	competitions, err := h.leagueDataService.ListCompetitions(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]competitionDTO, 0, len(competitions))
	for _, item := range competitions {
		out = append(out, competitionDTO{
			Code:     item.Code,
			Name:     item.Name,
			Type:     item.Type,
			Emblem:   item.Emblem,
			Plan:     item.Plan,
			AreaName: item.AreaName,
			AreaCode: item.AreaCode,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"competitions": out})
}

type leagueDTO struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Adapters []string `json:"adapters"`
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues := h.leagueDataService.ListLeagues(ctx)
	out := make([]leagueDTO, 0, len(leagues))
	for _, item := range leagues {
		out = append(out, leagueDTO{Code: item.Code, Name: item.Name, Adapters: item.Adapters})
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"leagues": out})
}

func (h *Handler) decodeAndValidate(r *http.Request, target any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseOptionalDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

func toLeagueDataResponse(data usecase.LeagueData) leagueDataResponse {
	standings := make([]standingsRowDTO, 0, len(data.Standings))
	for _, row := range data.Standings {
		standings = append(standings, standingsRowDTO{
			Position:     row.Position,
			TeamID:       row.TeamID,
			Team:         row.Team,
			TLA:          row.TLA,
			Played:       row.Played,
			Won:          row.Won,
			Draw:         row.Draw,
			Lost:         row.Lost,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			GoalDiff:     row.GoalDiff,
			Points:       row.Points,
			Form:         row.Form,
		})
	}

	strengths := make([]teamStrengthDTO, 0, len(data.Strengths))
	for _, item := range data.Strengths {
		strengths = append(strengths, teamStrengthDTO{
			TeamID:   item.TeamID,
			Team:     item.Team,
			Position: item.Position,
			Points:   item.Points,
			Played:   item.Played,
			GoalDiff: item.GoalDiff,
			Rating:   item.Rating,
		})
	}

	probabilities := make([]matchProbabilityDTO, 0, len(data.Probabilities))
	for _, item := range data.Probabilities {
		probabilities = append(probabilities, toMatchProbabilityDTO(item))
	}

	return leagueDataResponse{
		League: data.League,
		Sources: leagueDataSourcesDTO{
			Standings: data.Sources.Standings,
			Fixtures:  data.Sources.Fixtures,
		},
		Standings:     standings,
		Strengths:     strengths,
		Probabilities: probabilities,
		FetchedAt:     data.FetchedAt,
	}
}

func toMatchProbabilityDTO(item football.MatchProbability) matchProbabilityDTO {
	return matchProbabilityDTO{
		UTCDate:  item.UTCDate,
		Matchday: item.Matchday,
		Home:     item.Home,
		HomePos:  item.HomePos,
		Away:     item.Away,
		AwayPos:  item.AwayPos,
		PHome:    item.PHome,
		PDraw:    item.PDraw,
		PAway:    item.PAway,
		Alert:    item.Alert,
	}
}
