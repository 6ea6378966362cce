package apitest

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/skilltrack/internal/models"
)

func (s *Server) createSkill(w http.ResponseWriter, r *http.Request) {
	var req models.SkillCreate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "skill", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	for _, sk := range s.userSkills(uid) {
		if strings.EqualFold(sk.Name, req.Name) {
			detail(w, r, http.StatusBadRequest, "Skill with this name already exists")
			return
		}
	}

	sk := &models.Skill{
		ID:           s.nextID(),
		UserID:       uid,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		TargetLevel:  req.TargetLevel,
		CurrentLevel: req.CurrentLevel,
		Status:       models.StatusActive,
		CreatedAt:    models.Timestamp{Time: s.now()},
	}
	s.skills[sk.ID] = sk

	writeJSON(w, http.StatusCreated, sk)
}

func (s *Server) listSkills(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.Skill, 0)
	for _, sk := range s.userSkills(userID(r)) {
		if v := q.Get("status"); v != "" && string(sk.Status) != v {
			continue
		}
		if v := q.Get("current_level"); v != "" && string(sk.CurrentLevel) != v {
			continue
		}
		if v := q.Get("target_level"); v != "" && string(sk.TargetLevel) != v {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(sk.Name), search) {
			continue
		}
		items = append(items, *sk)
	}

	out, total, pages := paginate(items, page, size)
	writeJSON(w, http.StatusOK, models.SkillList{Skills: out, Total: total, Page: page, PageSize: size, TotalPages: pages})
}

func (s *Server) skillStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st models.SkillStats
	for _, sk := range s.userSkills(userID(r)) {
		st.TotalSkills++
		st.TotalLearningTime += sk.TotalHours
		switch sk.Status {
		case models.StatusActive:
			st.ActiveSkills++
		case models.StatusPaused:
			st.PausedSkills++
		case models.StatusCompleted:
			st.CompletedSkills++
		}
	}

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) bulkUpdateSkills(w http.ResponseWriter, r *http.Request) {
	var req models.BulkSkillUpdate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "skill_ids", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	n := 0
	for _, id := range req.SkillIDs {
		if sk, ok := s.ownSkill(uid, id); ok {
			sk.Status = req.Status
			sk.UpdatedAt = &models.Timestamp{Time: s.now()}
			n++
		}
	}

	writeJSON(w, http.StatusOK, models.BulkSkillUpdateResult{UpdatedCount: n, NewStatus: req.Status})
}

func (s *Server) getSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.ownSkill(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Skill not found")
		return
	}

	out := models.SkillWithStats{Skill: *sk}
	var logs []*models.ProgressLog
	for _, l := range s.userLogs(sk.UserID) {
		if l.SkillID == id {
			logs = append(logs, l)
		}
	}
	out.ProgressCount = len(logs)
	if len(logs) > 0 {
		out.LastPracticed = &logs[0].CreatedAt
	}
	out.StreakDays = currentStreak(logs, dayOnly(s.now()))
	for _, res := range s.resources {
		if res.SkillID == id {
			out.ResourceCount++
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.SkillUpdate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "skill", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.ownSkill(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Skill not found")
		return
	}
	if req.Name != nil {
		sk.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		sk.Description = req.Description
	}
	if req.TargetLevel != nil {
		sk.TargetLevel = *req.TargetLevel
	}
	if req.CurrentLevel != nil {
		sk.CurrentLevel = *req.CurrentLevel
	}
	if req.Status != nil {
		sk.Status = *req.Status
	}
	sk.UpdatedAt = &models.Timestamp{Time: s.now()}

	writeJSON(w, http.StatusOK, sk)
}

// deleteSkill удаляет навык вместе с его записями и материалами.
func (s *Server) deleteSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ownSkill(userID(r), id); !ok {
		detail(w, r, http.StatusNotFound, "Skill not found")
		return
	}
	delete(s.skills, id)
	for lid, l := range s.logs {
		if l.SkillID == id {
			delete(s.logs, lid)
		}
	}
	for rid, res := range s.resources {
		if res.SkillID == id {
			delete(s.resources, rid)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
