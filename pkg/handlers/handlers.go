package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/referral-earnings/pkg/distribution"
	"github.com/chris/referral-earnings/pkg/referral"
	"github.com/chris/referral-earnings/pkg/storage"
)

// ApiHandler holds the application's dependencies: the read surface plus the
// referral directory and distribution engine that own all writes.
type ApiHandler struct {
	Store     storage.ApiStore
	Directory *referral.Directory
	Engine    *distribution.Engine
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(store storage.ApiStore, directory *referral.Directory, engine *distribution.Engine) *ApiHandler {
	return &ApiHandler{
		Store:     store,
		Directory: directory,
		Engine:    engine,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
