package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"capsulehub/application/commands"
	"capsulehub/application/commands/bus"
	"capsulehub/application/queries"
	querybus "capsulehub/application/queries/bus"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
	"capsulehub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProvenanceHandler handles capsule provenance HTTP requests
type ProvenanceHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewProvenanceHandler creates a new provenance handler
func NewProvenanceHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ProvenanceHandler {
	return &ProvenanceHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// RegisterRequest represents the request body for registering a capsule
type RegisterRequest struct {
	CapsuleID   string             `json:"capsule_id" validate:"required,uuid4"`
	SourceKind  string             `json:"source_kind,omitempty" validate:"omitempty,oneof=discussion manual imported"`
	SourceRef   string             `json:"source_ref,omitempty" validate:"max=500"`
	ContentHash string             `json:"content_hash" validate:"required,max=128"`
	DATM        *DATMInputsRequest `json:"datm,omitempty"`
}

// DATMInputsRequest carries the optional quality sub-scores of a snapshot
type DATMInputsRequest struct {
	Truth        float64 `json:"truth" validate:"min=0,max=100"`
	Goodness     float64 `json:"goodness" validate:"min=0,max=100"`
	Beauty       float64 `json:"beauty" validate:"min=0,max=100"`
	Intelligence float64 `json:"intelligence" validate:"min=0,max=100"`
	Confidence   float64 `json:"confidence" validate:"min=0,max=1"`
}

// BatchRegisterRequest carries up to 100 registrations in one request
type BatchRegisterRequest struct {
	Items []RegisterRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// BatchRegisterResult reports the outcome of one batch item
type BatchRegisterResult struct {
	CapsuleID  string `json:"capsule_id"`
	Registered bool   `json:"registered"`
	Error      string `json:"error,omitempty"`
}

// AddVersionRequest represents the request body for appending a version
type AddVersionRequest struct {
	ContentHash   string             `json:"content_hash" validate:"required,max=128"`
	ChangeSummary string             `json:"change_summary,omitempty" validate:"max=2000"`
	DATM          *DATMInputsRequest `json:"datm,omitempty"`
}

// EvolveRequest represents the request body for adding an evolution relation
type EvolveRequest struct {
	TargetCapsuleID string `json:"target_capsule_id" validate:"required,uuid4"`
	RelationType    string `json:"relation_type" validate:"required,oneof=derived_from forked_from merged_from refuted_by superseded_by"`
	Note            string `json:"note,omitempty" validate:"max=1000"`
}

// CiteRequest represents the request body for recording a citation
type CiteRequest struct {
	CitedCapsuleID  string `json:"cited_capsule_id" validate:"required,uuid4"`
	CitingCapsuleID string `json:"citing_capsule_id,omitempty" validate:"omitempty,uuid4"`
	ExternalRef     string `json:"external_ref,omitempty" validate:"max=500"`
	Context         string `json:"context,omitempty" validate:"max=2000"`
}

// ValidateRequest represents the request body for recording a validation
type ValidateRequest struct {
	ValidatorIdentity string `json:"validator_identity" validate:"required,max=200"`
	Outcome           string `json:"outcome" validate:"required,oneof=confirmed partially_confirmed refuted inconclusive"`
	EvidenceNote      string `json:"evidence_note,omitempty" validate:"max=4000"`
}

// Register handles POST /provenance/register
func (h *ProvenanceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	cmd := commands.RegisterProvenanceCommand{
		CapsuleID:   req.CapsuleID,
		SourceKind:  req.SourceKind,
		SourceRef:   req.SourceRef,
		ContentHash: req.ContentHash,
		DATM:        req.DATM.toDomain(),
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// BatchRegister handles POST /provenance/batch/register. Items register
// independently; one failing item never aborts the rest.
func (h *ProvenanceHandler) BatchRegister(w http.ResponseWriter, r *http.Request) {
	var req BatchRegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	results := make([]BatchRegisterResult, 0, len(req.Items))
	for _, item := range req.Items {
		cmd := commands.RegisterProvenanceCommand{
			CapsuleID:   item.CapsuleID,
			SourceKind:  item.SourceKind,
			SourceRef:   item.SourceRef,
			ContentHash: item.ContentHash,
			DATM:        item.DATM.toDomain(),
		}

		if _, err := h.commandBus.Send(r.Context(), cmd); err != nil {
			results = append(results, BatchRegisterResult{CapsuleID: item.CapsuleID, Error: err.Error()})
			continue
		}
		results = append(results, BatchRegisterResult{CapsuleID: item.CapsuleID, Registered: true})
	}
	h.respond(w, http.StatusOK, results)
}

// GetBundle handles GET /provenance/{capsuleID}
func (h *ProvenanceHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	query := queries.GetProvenanceBundleQuery{
		CapsuleID: chi.URLParam(r, "capsuleID"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// AddVersion handles POST /provenance/{capsuleID}/version
func (h *ProvenanceHandler) AddVersion(w http.ResponseWriter, r *http.Request) {
	var req AddVersionRequest
	if !h.decode(w, r, &req) {
		return
	}

	cmd := commands.AddVersionCommand{
		CapsuleID:     chi.URLParam(r, "capsuleID"),
		ContentHash:   req.ContentHash,
		ChangeSummary: req.ChangeSummary,
		DATM:          req.DATM.toDomain(),
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// GetVersions handles GET /provenance/{capsuleID}/versions
func (h *ProvenanceHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	query := queries.GetVersionHistoryQuery{
		CapsuleID: chi.URLParam(r, "capsuleID"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// Evolve handles POST /provenance/{capsuleID}/evolve. The capsule in the
// path is the ancestor; the body names the descendant and the edge type.
func (h *ProvenanceHandler) Evolve(w http.ResponseWriter, r *http.Request) {
	var req EvolveRequest
	if !h.decode(w, r, &req) {
		return
	}

	cmd := commands.AddRelationCommand{
		SourceCapsuleID: chi.URLParam(r, "capsuleID"),
		TargetCapsuleID: req.TargetCapsuleID,
		RelationType:    req.RelationType,
		Note:            req.Note,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// GetEvolution handles GET /provenance/{capsuleID}/evolution
func (h *ProvenanceHandler) GetEvolution(w http.ResponseWriter, r *http.Request) {
	query := queries.GetEvolutionQuery{
		CapsuleID: chi.URLParam(r, "capsuleID"),
		Direction: r.URL.Query().Get("direction"),
	}

	var badBound bool
	query.MaxDepth, badBound = parseBound(r, "depth")
	if badBound {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("depth must be a non-negative integer"))
		return
	}
	query.MaxNodes, badBound = parseBound(r, "max_nodes")
	if badBound {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("max_nodes must be a non-negative integer"))
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// Cite handles POST /provenance/cite
func (h *ProvenanceHandler) Cite(w http.ResponseWriter, r *http.Request) {
	var req CiteRequest
	if !h.decode(w, r, &req) {
		return
	}

	cmd := commands.CiteCommand{
		CitedCapsuleID:  req.CitedCapsuleID,
		CitingCapsuleID: req.CitingCapsuleID,
		ExternalRef:     req.ExternalRef,
		Context:         req.Context,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// GetCitations handles GET /provenance/{capsuleID}/citations
func (h *ProvenanceHandler) GetCitations(w http.ResponseWriter, r *http.Request) {
	query := queries.GetCitationCountQuery{
		CapsuleID: chi.URLParam(r, "capsuleID"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// Validate handles POST /provenance/{capsuleID}/validate
func (h *ProvenanceHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !h.decode(w, r, &req) {
		return
	}

	cmd := commands.RecordValidationCommand{
		CapsuleID:         chi.URLParam(r, "capsuleID"),
		ValidatorIdentity: req.ValidatorIdentity,
		Outcome:           req.Outcome,
		EvidenceNote:      req.EvidenceNote,
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, result)
}

// GetValidations handles GET /provenance/{capsuleID}/validations
func (h *ProvenanceHandler) GetValidations(w http.ResponseWriter, r *http.Request) {
	query := queries.ListValidationsQuery{
		CapsuleID: chi.URLParam(r, "capsuleID"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// decode parses and validates a JSON request body, responding on failure
func (h *ProvenanceHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return false
	}
	return true
}

func (h *ProvenanceHandler) respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// parseBound reads a non-negative integer query parameter; the second
// return reports a malformed value.
func parseBound(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, true
	}
	return n, false
}

func (req *DATMInputsRequest) toDomain() *valueobjects.DATMInputs {
	if req == nil {
		return nil
	}
	return &valueobjects.DATMInputs{
		Truth:        req.Truth,
		Goodness:     req.Goodness,
		Beauty:       req.Beauty,
		Intelligence: req.Intelligence,
		Confidence:   req.Confidence,
	}
}
