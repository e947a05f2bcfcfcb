package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tinkerhub/geoquest/internal/geoquest"
	"github.com/tinkerhub/geoquest/internal/mailer"
	"github.com/tinkerhub/geoquest/internal/photoverify"
)

// fakeVerifier stands in for the external object-recognition service.
func fakeVerifier(t *testing.T, status string, confidence float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":            status,
			"confidence":        confidence,
			"identified_object": "statue",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func photoRouter(t *testing.T, verifyURL string) (*chi.Mux, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := SeedGame(context.Background(), logger, store); err != nil {
		t.Fatalf("seed game: %v", err)
	}

	r := chi.NewRouter()
	addRoutes(r, Deps{
		Logger:           logger,
		Store:            store,
		Verifier:         photoverify.New(verifyURL),
		Mailer:           mailer.Nop{},
		ExtractionKey:    testExtractionKey,
		GeoTolerance:     300,
		GeoDefaultRadius: 500,
	})
	return r, store
}

func postPhoto(t *testing.T, r http.Handler, teamID string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "photo.jpg")
	if err != nil {
		t.Fatalf("build upload: %v", err)
	}
	part.Write([]byte("jpegbytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/teams/"+teamID+"/zone/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPhotoVerificationClearsZone(t *testing.T) {
	srv := fakeVerifier(t, "same", 0.91)
	r, store := photoRouter(t, srv.URL)
	resp := registerTeam(t, r, "Falcons")

	// Photo submission is only valid after the zone code.
	w := postPhoto(t, r, resp.TeamID)
	if w.Code != http.StatusConflict {
		t.Fatalf("before unlock: expected 409, got %d", w.Code)
	}

	team := getTeam(t, store, resp.TeamID)
	zone := currentZone(t, store, team)
	doJSON(t, r, http.MethodPost, "/api/teams/"+resp.TeamID+"/zone/code", CodeSubmitRequest{Code: zone.UnlockCode})

	w = postPhoto(t, r, resp.TeamID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var pr PhotoResponse
	json.NewDecoder(w.Body).Decode(&pr)
	if !pr.Verified || pr.ClueNumber != 1 {
		t.Errorf("unexpected response: %+v", pr)
	}
	if pr.IdentifiedObject != "statue" {
		t.Errorf("expected identified object, got %q", pr.IdentifiedObject)
	}

	team = getTeam(t, store, resp.TeamID)
	if team.CurrentZoneIndex != 1 || team.Stage != geoquest.StageCodeEntry {
		t.Errorf("expected index 1 stage code_entry, got index=%d stage=%q", team.CurrentZoneIndex, team.Stage)
	}
}

func TestPhotoVerificationRejected(t *testing.T) {
	srv := fakeVerifier(t, "different", 0.33)
	r, store := photoRouter(t, srv.URL)
	resp := registerTeam(t, r, "Falcons")

	team := getTeam(t, store, resp.TeamID)
	zone := currentZone(t, store, team)
	doJSON(t, r, http.MethodPost, "/api/teams/"+resp.TeamID+"/zone/code", CodeSubmitRequest{Code: zone.UnlockCode})

	w := postPhoto(t, r, resp.TeamID)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	team = getTeam(t, store, resp.TeamID)
	if team.CurrentZoneIndex != 0 || team.Stage != geoquest.StageVerification {
		t.Errorf("rejection must not advance: index=%d stage=%q", team.CurrentZoneIndex, team.Stage)
	}
}

func TestPhotoVerifierDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, store := photoRouter(t, srv.URL)
	resp := registerTeam(t, r, "Falcons")

	team := getTeam(t, store, resp.TeamID)
	zone := currentZone(t, store, team)
	doJSON(t, r, http.MethodPost, "/api/teams/"+resp.TeamID+"/zone/code", CodeSubmitRequest{Code: zone.UnlockCode})

	w := postPhoto(t, r, resp.TeamID)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}
