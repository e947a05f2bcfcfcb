package server

import (
	"net/http"
)

type ArchiveClue struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	ImagePath string `json:"imagePath,omitempty"`
}

type ArchiveResponse struct {
	UnlockedCount int           `json:"unlockedCount"`
	Clues         []ArchiveClue `json:"clues"`
}

// handleArchive lists the story clues the team has unlocked so far.
// Clues are numbered by unlock order, independent of which zone was
// cleared to earn them.
func handleArchive(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		clues, err := store.Clues(r.Context(), team.UnlockedClueCount)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := ArchiveResponse{
			UnlockedCount: team.UnlockedClueCount,
			Clues:         make([]ArchiveClue, 0, len(clues)),
		}
		for _, c := range clues {
			resp.Clues = append(resp.Clues, ArchiveClue{
				Number:    c.Number,
				Text:      c.Text,
				ImagePath: c.ImagePath,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
