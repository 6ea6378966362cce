package apitest

import (
	"net/http"
	"strconv"

	"github.com/pribylovaa/skilltrack/internal/models"
)

// ownResource возвращает материал, если его навык принадлежит uid.
func (s *Server) ownResource(uid, id int64) (*models.Resource, bool) {
	res, ok := s.resources[id]
	if !ok {
		return nil, false
	}
	if _, ok := s.ownSkill(uid, res.SkillID); !ok {
		return nil, false
	}

	return res, true
}

func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	var req models.ResourceCreate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "resource", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.ownSkill(userID(r), req.SkillID)
	if !ok {
		detail(w, r, http.StatusNotFound, "Skill not found")
		return
	}

	res := &models.Resource{
		ID:           s.nextID(),
		SkillID:      sk.ID,
		SkillName:    strptr(sk.Name),
		Title:        req.Title,
		URL:          req.URL,
		ResourceType: req.ResourceType,
		Description:  req.Description,
		CreatedAt:    models.Timestamp{Time: s.now()},
	}
	s.resources[res.ID] = res

	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	skillID, _ := strconv.ParseInt(q.Get("skill_id"), 10, 64)
	kind := q.Get("resource_type")
	var completed *bool
	if v, err := strconv.ParseBool(q.Get("is_completed")); err == nil {
		completed = &v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.Resource, 0)
	for _, res := range s.userResources(userID(r)) {
		if skillID > 0 && res.SkillID != skillID {
			continue
		}
		if kind != "" && string(res.ResourceType) != kind {
			continue
		}
		if completed != nil && res.IsCompleted != *completed {
			continue
		}
		items = append(items, *res)
	}

	out, total, pages := paginate(items, page, size)
	writeJSON(w, http.StatusOK, models.ResourceList{Resources: out, Total: total, Page: page, PageSize: size, TotalPages: pages})
}

func (s *Server) resourceStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := models.ResourceStats{ByType: make(map[string]int)}
	for _, res := range s.userResources(userID(r)) {
		st.TotalResources++
		st.ByType[string(res.ResourceType)]++
		if res.IsCompleted {
			st.CompletedResources++
		}
	}
	if st.TotalResources > 0 {
		st.CompletionRate = float64(st.CompletedResources) / float64(st.TotalResources) * 100
	}

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.ownResource(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) updateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.ResourceUpdate
	if !decode(w, r, &req) {
		return
	}
	if err := models.Validate.Struct(req); err != nil {
		validationError(w, "resource", models.Describe(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.ownResource(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	if req.Title != nil {
		res.Title = *req.Title
	}
	if req.URL != nil {
		res.URL = req.URL
	}
	if req.ResourceType != nil {
		res.ResourceType = *req.ResourceType
	}
	if req.Description != nil {
		res.Description = req.Description
	}
	if req.IsCompleted != nil {
		res.IsCompleted = *req.IsCompleted
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ownResource(userID(r), id); !ok {
		detail(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	delete(s.resources, id)

	w.WriteHeader(http.StatusNoContent)
}

// completeResource выставляет is_completed из query completed (по умолчанию true).
func (s *Server) completeResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	completed := true
	if v := r.URL.Query().Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			validationError(w, "completed", "value could not be parsed to a boolean")
			return
		}
		completed = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.ownResource(userID(r), id)
	if !ok {
		detail(w, r, http.StatusNotFound, "Resource not found")
		return
	}
	res.IsCompleted = completed

	writeJSON(w, http.StatusOK, res)
}
