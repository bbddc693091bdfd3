package admin

import (
	"encoding/json"
	"net/http"

	"grafik/pkg/duration"
	"grafik/pkg/logger"
)

// levelBody is the payload of the `/level` route.
type levelBody struct {
	Level logger.Severity `json:"level"`
}

// statusBody :
// The payload of the `/status` route.
type statusBody struct {
	App         string            `json:"app"`
	InstanceID  string            `json:"instance_id"`
	Environment string            `json:"environment"`
	Level       *logger.Severity  `json:"level,omitempty"`
	Uptime      duration.Duration `json:"uptime"`
	Dropped     uint64            `json:"dropped"`
}

// marshalAndSend :
// Writes the input value as a JSON document. A failure is only
// logged as the headers are already sent.
func (s *Server) marshalAndSend(w http.ResponseWriter, code int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.log.Error("[admin] Could not send response (err: %v)", err)
	}
}

func (s *Server) getLevel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.options.Level == nil {
			http.NotFound(w, r)
			return
		}

		s.marshalAndSend(w, http.StatusOK, levelBody{s.options.Level.Level()})
	}
}

func (s *Server) setLevel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.options.Level == nil {
			http.NotFound(w, r)
			return
		}

		body := levelBody{Level: -1}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Level.Valid() {
			s.log.Warn("[admin] Rejected level change request (err: %v)", err)
			http.Error(w, "Invalid level", http.StatusBadRequest)
			return
		}

		previous := s.options.Level.Level()
		s.options.Level.SetLevel(body.Level)

		s.log.Info("[admin] Changed level from %s to %s", previous.Name(), body.Level.Name())

		s.marshalAndSend(w, http.StatusOK, body)
	}
}

func (s *Server) status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := statusBody{
			App:         s.options.AppName,
			InstanceID:  s.options.Metadata.InstanceID,
			Environment: s.options.Metadata.Environment,
			Uptime:      duration.Since(s.started),
		}

		if s.options.Level != nil {
			level := s.options.Level.Level()
			out.Level = &level
		}

		for _, j := range s.options.Journals {
			out.Dropped += j.Dropped()
		}

		s.marshalAndSend(w, http.StatusOK, out)
	}
}
