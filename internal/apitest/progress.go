package apitest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pribylovaa/skilltrack/internal/models"
)

func (s *Server) createProgress(w http.ResponseWriter, r *http.Request) {
	var req models.ProgressLogCreate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "progress", models.Describe(err))
		return
	}
	if req.Date > s.today() {
		validationError(w, "date", "Cannot log progress for future dates")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	sk, ok := s.ownSkill(uid, req.SkillID)
	if !ok {
		detail(w, r, http.StatusNotFound, "Skill not found")
		return
	}

	l := &models.ProgressLog{
		ID:          s.nextID(),
		UserID:      uid,
		SkillID:     sk.ID,
		SkillName:   strptr(sk.Name),
		Date:        req.Date,
		TimeSpent:   req.TimeSpent,
		Description: req.Description,
		Notes:       req.Notes,
		CreatedAt:   models.Timestamp{Time: s.now()},
	}
	s.logs[l.ID] = l
	sk.TotalHours = s.skillTime(sk.ID)

	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	skillID, _ := strconv.ParseInt(q.Get("skill_id"), 10, 64)
	from, to := q.Get("start_date"), q.Get("end_date")

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.ProgressLog, 0)
	for _, l := range s.userLogs(userID(r)) {
		if skillID > 0 && l.SkillID != skillID {
			continue
		}
		if from != "" && l.Date < from {
			continue
		}
		if to != "" && l.Date > to {
			continue
		}
		items = append(items, *l)
	}

	out, total, pages := paginate(items, page, size)
	writeJSON(w, http.StatusOK, models.ProgressList{Logs: out, Total: total, Page: page, PageSize: size, TotalPages: pages})
}

func (s *Server) progressStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.userLogs(userID(r))
	today := dayOnly(s.now())
	monday, _ := weekBounds(today)

	skills := make(map[int64]bool)
	for _, l := range logs {
		skills[l.SkillID] = true
	}

	writeJSON(w, http.StatusOK, models.ProgressStats{
		TotalLogs:     len(logs),
		TotalTime:     sumBetween(logs, "", "9999-12-31"),
		SkillsTracked: len(skills),
		CurrentStreak: currentStreak(logs, today),
		LongestStreak: longestStreak(logs),
		TodayTime:     sumBetween(logs, s.today(), s.today()),
		ThisWeekTime:  sumBetween(logs, monday.Format(models.DateLayout), s.today()),
		ThisMonthTime: sumBetween(logs, today.Format("2006-01")+"-01", s.today()),
	})
}

// dayStats считает агрегаты за один день. Вызывается под s.mu.
func dayStats(logs []*models.ProgressLog, date string) models.DailyStats {
	st := models.DailyStats{Date: date}
	skills := make(map[int64]bool)
	for _, l := range logs {
		if l.Date != date {
			continue
		}
		st.TotalTime += l.TimeSpent
		st.LogCount++
		skills[l.SkillID] = true
	}
	st.SkillsPracticed = len(skills)

	return st
}

func (s *Server) dailyStats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("target_date")
	if date == "" {
		date = s.today()
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		validationError(w, "target_date", "invalid date format")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, dayStats(s.userLogs(userID(r)), date))
}

func (s *Server) weeklyStats(w http.ResponseWriter, r *http.Request) {
	day := dayOnly(s.now())
	if v := r.URL.Query().Get("week_start"); v != "" {
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			validationError(w, "week_start", "invalid date format")
			return
		}
		day = t
	}
	monday, sunday := weekBounds(day)

	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.userLogs(userID(r))
	st := models.WeeklyStats{
		WeekStart: monday.Format(models.DateLayout),
		WeekEnd:   sunday.Format(models.DateLayout),
	}
	skills := make(map[int64]bool)
	for i := 0; i < 7; i++ {
		d := dayStats(logs, monday.AddDate(0, 0, i).Format(models.DateLayout))
		st.DailyBreakdown = append(st.DailyBreakdown, d)
		st.TotalTime += d.TotalTime
		st.LogCount += d.LogCount
	}
	for _, l := range logs {
		if l.Date >= st.WeekStart && l.Date <= st.WeekEnd {
			skills[l.SkillID] = true
		}
	}
	st.SkillsPracticed = len(skills)

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) monthlyStats(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		validationError(w, "month", "ensure this value is less than or equal to 12")
		return
	}
	prefix := fmt.Sprintf("%04d-%02d", year, month)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := models.MonthlyStats{Month: prefix}
	skills := make(map[int64]bool)
	days := make(map[string]bool)
	for _, l := range s.userLogs(userID(r)) {
		if l.Date[:7] != prefix {
			continue
		}
		st.TotalTime += l.TimeSpent
		st.LogCount++
		skills[l.SkillID] = true
		days[l.Date] = true
	}
	st.SkillsPracticed = len(skills)
	st.ActiveDays = len(days)

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) skillProgressSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	sk, ok := s.ownSkill(uid, id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Skill not found")
		return
	}

	var logs []*models.ProgressLog
	for _, l := range s.userLogs(uid) {
		if l.SkillID == id {
			logs = append(logs, l)
		}
	}

	sum := models.SkillProgressSummary{
		SkillID:       sk.ID,
		SkillName:     sk.Name,
		TotalTime:     sumBetween(logs, "", "9999-12-31"),
		LogCount:      len(logs),
		CurrentStreak: currentStreak(logs, dayOnly(s.now())),
	}
	if len(logs) > 0 {
		sum.LastPracticed = strptr(logs[0].Date)
		sum.AverageDailyTime = sum.TotalTime / len(dateSet(logs))
	}

	writeJSON(w, http.StatusOK, sum)
}

// ownLog возвращает запись, если она принадлежит uid.
func (s *Server) ownLog(uid, id int64) (*models.ProgressLog, bool) {
	l, ok := s.logs[id]
	if !ok || l.UserID != uid {
		return nil, false
	}

	return l, true
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ownLog(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Progress log not found")
		return
	}

	writeJSON(w, http.StatusOK, l)
}

func (s *Server) updateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.ProgressLogUpdate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "progress", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ownLog(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Progress log not found")
		return
	}
	if req.TimeSpent != nil {
		l.TimeSpent = *req.TimeSpent
	}
	if req.Description != nil {
		l.Description = req.Description
	}
	if req.Notes != nil {
		l.Notes = req.Notes
	}
	l.UpdatedAt = &models.Timestamp{Time: s.now()}
	if sk, ok := s.skills[l.SkillID]; ok {
		sk.TotalHours = s.skillTime(sk.ID)
	}

	writeJSON(w, http.StatusOK, l)
}

func (s *Server) deleteProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ownLog(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Progress log not found")
		return
	}
	delete(s.logs, id)
	if sk, ok := s.skills[l.SkillID]; ok {
		sk.TotalHours = s.skillTime(sk.ID)
	}

	w.WriteHeader(http.StatusNoContent)
}
