// Configuration endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/derivx/internal/config"
)

// handleGetConfig returns the running configuration. Credentials are
// excluded via json:"-" tags.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg)
}

// handleGetConfigKeys returns the masked status of data source credentials.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	keys := config.CheckSecrets(s.cfg)
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": keys,
	})
}
