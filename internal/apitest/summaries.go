package apitest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/pribylovaa/skilltrack/internal/models"
)

func (s *Server) userSummaries(uid int64) []*models.WeeklySummary {
	out := make([]*models.WeeklySummary, 0)
	for _, sum := range s.summaries {
		if sum.UserID == uid {
			out = append(out, sum)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })

	return out
}

// details собирает разбивку недели по навыкам и дням. Вызывается под s.mu.
func (s *Server) details(sum *models.WeeklySummary) models.WeeklySummaryDetails {
	out := models.WeeklySummaryDetails{WeeklySummary: *sum}

	byName := make(map[string]int)
	byDay := make(map[string]int)
	for _, l := range s.userLogs(sum.UserID) {
		if l.Date < sum.WeekStart || l.Date > sum.WeekEnd {
			continue
		}
		name := ""
		if l.SkillName != nil {
			name = *l.SkillName
		}
		byName[name] += l.TimeSpent
		byDay[l.Date] += l.TimeSpent
	}

	out.SkillsBreakdown = make([]models.SkillBreakdown, 0, len(byName))
	for name, spent := range byName {
		out.SkillsBreakdown = append(out.SkillsBreakdown, models.SkillBreakdown{SkillName: name, TimeSpent: spent})
	}
	sort.Slice(out.SkillsBreakdown, func(i, j int) bool {
		a, b := out.SkillsBreakdown[i], out.SkillsBreakdown[j]
		if a.TimeSpent != b.TimeSpent {
			return a.TimeSpent > b.TimeSpent
		}
		return a.SkillName < b.SkillName
	})
	for i := range out.SkillsBreakdown {
		if sum.TotalHours > 0 {
			out.SkillsBreakdown[i].Percentage = float64(out.SkillsBreakdown[i].TimeSpent) / float64(sum.TotalHours) * 100
		}
	}
	if len(out.SkillsBreakdown) > 0 {
		out.TopSkill = strptr(out.SkillsBreakdown[0].SkillName)
	}

	out.DailyBreakdown = make([]models.DayBreakdown, 0, len(byDay))
	for date, spent := range byDay {
		out.DailyBreakdown = append(out.DailyBreakdown, models.DayBreakdown{Date: date, TimeSpent: spent})
	}
	sort.Slice(out.DailyBreakdown, func(i, j int) bool { return out.DailyBreakdown[i].Date < out.DailyBreakdown[j].Date })
	if len(byDay) > 0 {
		out.AverageDailyTime = sum.TotalHours / len(byDay)
	}

	return out
}

// generate создаёт или пересчитывает сводку недели monday. Вызывается под s.mu.
func (s *Server) generate(uid int64, monday time.Time, force bool) (*models.WeeklySummary, bool) {
	start := monday.Format(models.DateLayout)
	end := monday.AddDate(0, 0, 6).Format(models.DateLayout)

	var existing *models.WeeklySummary
	for _, sum := range s.userSummaries(uid) {
		if sum.WeekStart == start {
			existing = sum
			break
		}
	}
	if existing != nil && !force {
		return existing, false
	}

	logs := s.userLogs(uid)
	total := sumBetween(logs, start, end)
	skills := make(map[int64]bool)
	for _, l := range logs {
		if l.Date >= start && l.Date <= end {
			skills[l.SkillID] = true
		}
	}
	text := fmt.Sprintf("Week of %s: %s across %d skills.", start, models.FormatMinutes(total), len(skills))

	sum := existing
	if sum == nil {
		sum = &models.WeeklySummary{
			ID:        s.nextID(),
			UserID:    uid,
			WeekStart: start,
			WeekEnd:   end,
			CreatedAt: models.Timestamp{Time: s.now()},
		}
		s.summaries[sum.ID] = sum
	}
	sum.TotalHours = total
	sum.SkillsWorkedOn = len(skills)
	sum.SummaryText = &text

	return sum, true
}

func (s *Server) generateSummary(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryGenerate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "week_start", models.Describe(err))
		return
	}
	day, _ := time.Parse(models.DateLayout, req.WeekStart)
	monday, _ := weekBounds(day)

	s.mu.Lock()
	defer s.mu.Unlock()

	sum, _ := s.generate(userID(r), monday, req.ForceRegenerate)

	writeJSON(w, http.StatusCreated, sum)
}

func (s *Server) listSummaries(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	year := queryInt(r, "year", 0)
	month := queryInt(r, "month", 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.WeeklySummary, 0)
	for _, sum := range s.userSummaries(userID(r)) {
		if year > 0 && sum.WeekStart[:4] != strconv.Itoa(year) {
			continue
		}
		if month > 0 && sum.WeekStart[5:7] != fmt.Sprintf("%02d", month) {
			continue
		}
		items = append(items, *sum)
	}

	out, total, pages := paginate(items, page, size)
	writeJSON(w, http.StatusOK, models.SummaryList{Summaries: out, Total: total, Page: page, PageSize: size, TotalPages: pages})
}

func (s *Server) summaryStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := s.userSummaries(userID(r))
	st := models.SummaryStats{TotalSummaries: len(sums), TotalWeeksTracked: len(sums)}
	total := 0
	for _, sum := range sums {
		total += sum.TotalHours
		if sum.TotalHours > st.MostProductiveWeekTime {
			st.MostProductiveWeekTime = sum.TotalHours
			st.MostProductiveWeek = strptr(sum.WeekStart)
		}
	}
	if len(sums) > 0 {
		st.AverageWeeklyTime = total / len(sums)
	}

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) currentWeekSummary(w http.ResponseWriter, r *http.Request) {
	s.weekSummary(w, r, 0)
}

func (s *Server) lastWeekSummary(w http.ResponseWriter, r *http.Request) {
	s.weekSummary(w, r, -7)
}

// weekSummary отдаёт сводку недели со сдвигом shift дней от сегодня,
// создавая её при отсутствии.
func (s *Server) weekSummary(w http.ResponseWriter, r *http.Request, shift int) {
	monday, _ := weekBounds(dayOnly(s.now()).AddDate(0, 0, shift))

	s.mu.Lock()
	defer s.mu.Unlock()

	sum, _ := s.generate(userID(r), monday, false)

	writeJSON(w, http.StatusOK, s.details(sum))
}

func (s *Server) ownSummary(uid, id int64) (*models.WeeklySummary, bool) {
	sum, ok := s.summaries[id]
	if !ok || sum.UserID != uid {
		return nil, false
	}

	return sum, true
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	withDetails := true
	if v, err := strconv.ParseBool(r.URL.Query().Get("with_details")); err == nil {
		withDetails = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sum, ok := s.ownSummary(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Summary not found")
		return
	}
	if !withDetails {
		writeJSON(w, http.StatusOK, sum)
		return
	}

	writeJSON(w, http.StatusOK, s.details(sum))
}

func (s *Server) deleteSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ownSummary(userID(r), id); !ok {
		detail(w, r, http.StatusNotFound, "Summary not found")
		return
	}
	delete(s.summaries, id)

	w.WriteHeader(http.StatusNoContent)
}
