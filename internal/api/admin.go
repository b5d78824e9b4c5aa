package api

import "net/http"

func (s *App) adminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.db.GetAdminStats(r.Context())
	if err != nil {
		s.writeError(w, r, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toAdminStats(st))
}
