package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Path parameter declarations for the reflector; operations on
// templated paths are rejected unless every parameter is declared.
type teamPathRequest struct {
	TeamID string `path:"teamID"`
}

type zonePathRequest struct {
	ZoneID int `path:"zoneID"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the GeoQuest campus scavenger hunt.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/api/register")
	postRegister.SetSummary("Register a team")
	postRegister.SetDescription("Creates a team with per-member access codes and a randomized zone order. Idempotent on team name or leader email.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(RegisterResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRegister.AddRespStructure(RegisterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postRegister)

	// POST /api/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/login")
	postLogin.SetSummary("Log in with an access code")
	postLogin.SetDescription("Resolves the team owning the code and marks that member active.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(LoginResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// GET /api/teams/{teamID}/zone
	getZone, _ := r.NewOperationContext(http.MethodGet, "/api/teams/{teamID}/zone")
	getZone.SetSummary("Current zone")
	getZone.SetDescription("Returns the team's current zone (sanitized) or completion status. Never includes zone secrets.")
	getZone.AddReqStructure(teamPathRequest{})
	getZone.AddRespStructure(CurrentZoneResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getZone.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getZone)

	// POST /api/teams/{teamID}/zone/code
	postCode, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{teamID}/zone/code")
	postCode.SetSummary("Submit zone unlock code")
	postCode.SetDescription("Checks the unlock code and, when coordinates are supplied, the geofence. Success unlocks the lore/photo stage.")
	postCode.AddReqStructure(teamPathRequest{})
	postCode.AddReqStructure(CodeSubmitRequest{})
	postCode.AddRespStructure(CodeSubmitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCode.AddRespStructure(CodeSubmitResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postCode.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postCode)

	// POST /api/teams/{teamID}/zone/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{teamID}/zone/answer")
	postAnswer.SetSummary("Submit lore answer")
	postAnswer.SetDescription("Case-insensitive, trimmed match. A correct answer clears the zone and unlocks the next clue.")
	postAnswer.AddReqStructure(teamPathRequest{})
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/teams/{teamID}/zone/photo
	postPhoto, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{teamID}/zone/photo")
	postPhoto.SetSummary("Submit verification photo")
	postPhoto.SetDescription("Proxies the image to the external object-recognition service; a matching object clears the zone.")
	postPhoto.AddReqStructure(teamPathRequest{})
	postPhoto.AddRespStructure(PhotoResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPhoto.AddRespStructure(PhotoResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postPhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postPhoto)

	// POST /api/teams/{teamID}/zone/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{teamID}/zone/skip")
	postSkip.SetSummary("Skip the current zone")
	postSkip.AddReqStructure(teamPathRequest{})
	postSkip.AddRespStructure(SkipResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSkip)

	// POST /api/teams/{teamID}/quit
	postQuit, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{teamID}/quit")
	postQuit.SetSummary("Quit the session")
	postQuit.SetDescription("Deactivates the calling member; the game clock stops when the last member quits.")
	postQuit.AddReqStructure(teamPathRequest{})
	postQuit.AddReqStructure(QuitRequest{})
	postQuit.AddRespStructure(QuitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postQuit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postQuit)

	// POST /api/teams/{teamID}/extract
	postExtract, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{teamID}/extract")
	postExtract.SetSummary("Finalize with the extraction key")
	postExtract.SetDescription("Idempotent: repeated correct submissions return the same end time and rank.")
	postExtract.AddReqStructure(teamPathRequest{})
	postExtract.AddReqStructure(ExtractRequest{})
	postExtract.AddRespStructure(ExtractResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postExtract.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postExtract)

	// GET /api/teams/{teamID}/archive
	getArchive, _ := r.NewOperationContext(http.MethodGet, "/api/teams/{teamID}/archive")
	getArchive.SetSummary("Unlocked clue archive")
	getArchive.AddReqStructure(teamPathRequest{})
	getArchive.AddRespStructure(ArchiveResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getArchive)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Completed teams ordered by finish time.")
	getBoard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getBoard)

	// GET /api/teams/{teamID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/teams/{teamID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of team progress events.")
	getEvents.AddReqStructure(teamPathRequest{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/zones/{zoneID}/qr
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/zones/{zoneID}/qr")
	getQR.SetSummary("Zone unlock-code QR (organizer)")
	getQR.AddReqStructure(zonePathRequest{})
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("image/png"))
	getQR.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getQR)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
