package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleetworks/workorder-api/internal/models"
	"github.com/fleetworks/workorder-api/internal/payload"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
)

const (
	requestListCacheKey = "requests:list"
	requestCachePattern = "requests:*"
)

type requestRepository interface {
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	List(ctx context.Context) ([]models.MaintenanceRequest, error)
	FindByID(ctx context.Context, id int) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, req *models.MaintenanceRequest) error
	Delete(ctx context.Context, id int) error
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GroupSelection mirrors one category block of the public submission form.
type GroupSelection struct {
	Items []string `json:"items"`
	Notes string   `json:"notes"`
}

// ServiceSelection is the structured half of a submission. The server encodes
// it into the description field; clients may instead send a pre-encoded
// description and omit this.
type ServiceSelection struct {
	Filters          GroupSelection       `json:"filters"`
	Fluids           GroupSelection       `json:"fluids"`
	Gaskets          GroupSelection       `json:"gaskets"`
	Components       GroupSelection       `json:"components"`
	EngineOilWeights []string             `json:"engineOilWeights"`
	EngineOilTypes   []string             `json:"engineOilTypes"`
	IssueText        string               `json:"issueText"`
	Attachments      []payload.Attachment `json:"attachments"`
}

// CreateRequestRequest holds the public submission payload.
type CreateRequestRequest struct {
	CustomerName string            `json:"customerName" validate:"required"`
	ContactInfo  string            `json:"contactInfo" validate:"required"`
	VehicleInfo  string            `json:"vehicleInfo" validate:"required"`
	VehicleColor string            `json:"vehicleColor"`
	Mileage      *int              `json:"mileage" validate:"omitempty,min=0"`
	Description  string            `json:"description"`
	IsUrgent     bool              `json:"isUrgent"`
	Services     *ServiceSelection `json:"services,omitempty"`
}

// ChecklistItemUpdate toggles or annotates one checklist entry by index.
type ChecklistItemUpdate struct {
	Completed *bool   `json:"completed,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// PayloadPatch merges staff edits into the embedded service document. Any
// subset of the three edits may be present.
type PayloadPatch struct {
	GroupNote      *GroupNotePatch      `json:"groupNote,omitempty"`
	GroupCompleted *GroupCompletedPatch `json:"groupCompleted,omitempty"`
	InternalNotes  *string              `json:"internalNotes,omitempty"`
}

// GroupNotePatch replaces one group's notes.
type GroupNotePatch struct {
	Group string `json:"group" validate:"required"`
	Note  string `json:"note"`
}

// GroupCompletedPatch toggles one group's completed flag.
type GroupCompletedPatch struct {
	Group     string `json:"group" validate:"required"`
	Completed bool   `json:"completed"`
}

// RequestService handles work-order use-cases.
type RequestService struct {
	repo           requestRepository
	cache          listCache
	cacheTTL       time.Duration
	metrics        *MetricsService
	validator      *validator.Validate
	logger         *zap.Logger
	maxAttachments int
}

// NewRequestService constructs the request service. cache and metrics may be
// nil; caching then degrades to direct reads.
func NewRequestService(repo requestRepository, cache listCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, maxAttachments int) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxAttachments <= 0 {
		maxAttachments = 6
	}
	return &RequestService{
		repo:           repo,
		cache:          cache,
		cacheTTL:       cacheTTL,
		metrics:        metrics,
		validator:      validate,
		logger:         logger,
		maxAttachments: maxAttachments,
	}
}

// Create validates and stores a new work order with the initial status.
func (s *RequestService) Create(ctx context.Context, req CreateRequestRequest) (*models.MaintenanceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	description := strings.TrimSpace(req.Description)
	if req.Services != nil {
		if err := validateSelection(req.Services, s.maxAttachments); err != nil {
			return nil, err
		}
		encoded, err := payload.Encode(buildDocument(req.Services))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode service payload")
		}
		description = encoded
	}
	if description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description is required")
	}

	record := &models.MaintenanceRequest{
		CustomerName: req.CustomerName,
		ContactInfo:  req.ContactInfo,
		VehicleInfo:  req.VehicleInfo,
		Description:  description,
		Status:       models.InitialStatus,
		IsUrgent:     req.IsUrgent,
		Mileage:      req.Mileage,
	}
	if color := strings.TrimSpace(req.VehicleColor); color != "" {
		record.VehicleColor = &color
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, storageError(err, "failed to create request")
	}
	s.invalidateCache(ctx)
	s.logger.Info("work order created", zap.Int("id", record.ID), zap.Bool("urgent", record.IsUrgent))
	return record, nil
}

// List returns every work order in creation order, via the read cache when
// one is wired.
func (s *RequestService) List(ctx context.Context) ([]models.MaintenanceRequest, error) {
	if s.cache != nil {
		var cached []models.MaintenanceRequest
		start := time.Now()
		err := s.cache.Get(ctx, requestListCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true, time.Since(start))
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false, time.Since(start))
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("request list cache read failed", zap.Error(err))
		}
	}

	requests, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError(err, "failed to list requests")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, requestListCacheKey, requests, s.cacheTTL); err != nil {
			s.logger.Warn("request list cache write failed", zap.Error(err))
		}
	}
	return requests, nil
}

// Get returns one work order.
func (s *RequestService) Get(ctx context.Context, id int) (*models.MaintenanceRequest, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, storageError(err, "failed to load request")
	}
	return record, nil
}

// Update applies a partial update. Absent fields are left untouched; absent
// never means "set to empty".
func (s *RequestService) Update(ctx context.Context, id int, update models.RequestUpdate) (*models.MaintenanceRequest, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		if !models.ValidStatus(*update.Status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", *update.Status))
		}
		record.Status = *update.Status
	}
	if update.WorkDone != nil {
		record.WorkDone = update.WorkDone
	}
	if update.PartsUsed != nil {
		record.PartsUsed = update.PartsUsed
	}
	if update.Description != nil {
		record.Description = *update.Description
	}
	if update.Checklist != nil {
		record.Checklist = append(models.Checklist(nil), *update.Checklist...)
	}

	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, storageError(err, "failed to update request")
	}
	s.invalidateCache(ctx)
	return record, nil
}

// Delete removes a work order permanently. An associated invoice is retained.
func (s *RequestService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return storageError(err, "failed to delete request")
	}
	s.invalidateCache(ctx)
	s.logger.Info("work order deleted", zap.Int("id", id))
	return nil
}

// InitChecklist synthesizes the checklist from the embedded service document.
// It only runs when the stored checklist is empty, so calling it again never
// duplicates entries or overwrites staff progress.
func (s *RequestService) InitChecklist(ctx context.Context, id int) (*models.MaintenanceRequest, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(record.Checklist) > 0 {
		return record, nil
	}
	doc, ok := payload.Decode(record.Description)
	if !ok {
		return record, nil
	}
	items := payload.SelectedItems(doc)
	if len(items) == 0 {
		return record, nil
	}
	checklist := make(models.Checklist, 0, len(items))
	for _, entry := range items {
		checklist = append(checklist, models.ChecklistItem{Group: entry[0], Item: entry[1]})
	}
	record.Checklist = checklist
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, storageError(err, "failed to store checklist")
	}
	s.invalidateCache(ctx)
	return record, nil
}

// UpdateChecklistItem toggles or annotates a single checklist entry by its
// index, preserving order and all sibling entries.
func (s *RequestService) UpdateChecklistItem(ctx context.Context, id, index int, update ChecklistItemUpdate) (*models.MaintenanceRequest, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(record.Checklist) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("checklist index %d out of range", index))
	}

	checklist := append(models.Checklist(nil), record.Checklist...)
	if update.Completed != nil {
		checklist[index].Completed = *update.Completed
	}
	if update.Comment != nil {
		checklist[index].Comment = *update.Comment
	}
	record.Checklist = checklist

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, storageError(err, "failed to update checklist")
	}
	s.invalidateCache(ctx)
	return record, nil
}

// MergePayload applies staff edits to the embedded service document and
// re-encodes the description. Internal-note edits on a legacy plain-text
// record synthesize a document so the old complaint is never lost.
func (s *RequestService) MergePayload(ctx context.Context, id int, patch PayloadPatch) (*models.MaintenanceRequest, error) {
	if patch.GroupNote == nil && patch.GroupCompleted == nil && patch.InternalNotes == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payload patch is empty")
	}
	if patch.GroupNote != nil && strings.TrimSpace(patch.GroupNote.Group) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "groupNote.group is required")
	}
	if patch.GroupCompleted != nil && strings.TrimSpace(patch.GroupCompleted.Group) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "groupCompleted.group is required")
	}

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, ok := payload.Decode(record.Description)
	if !ok {
		doc = nil
	}
	if patch.GroupNote != nil {
		if doc == nil {
			doc = payload.MergeInternalNotes(nil, record.Description, "")
		}
		doc = payload.MergeGroupNote(doc, patch.GroupNote.Group, patch.GroupNote.Note)
	}
	if patch.GroupCompleted != nil {
		if doc == nil {
			doc = payload.MergeInternalNotes(nil, record.Description, "")
		}
		doc = payload.MergeGroupCompletion(doc, patch.GroupCompleted.Group, patch.GroupCompleted.Completed)
	}
	if patch.InternalNotes != nil {
		doc = payload.MergeInternalNotes(doc, record.Description, *patch.InternalNotes)
	}

	encoded, err := payload.Encode(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode service payload")
	}
	record.Description = encoded

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, storageError(err, "failed to update payload")
	}
	s.invalidateCache(ctx)
	return record, nil
}

func (s *RequestService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, requestCachePattern); err != nil {
		s.logger.Warn("request cache invalidation failed", zap.Error(err))
	}
}

func buildDocument(sel *ServiceSelection) *payload.Document {
	groups := map[string]payload.Group{
		payload.GroupFilters:    {Items: sel.Filters.Items, Notes: sel.Filters.Notes},
		payload.GroupFluids:     {Items: sel.Fluids.Items, Notes: sel.Fluids.Notes},
		payload.GroupGaskets:    {Items: sel.Gaskets.Items, Notes: sel.Gaskets.Notes},
		payload.GroupComponents: {Items: sel.Components.Items, Notes: sel.Components.Notes},
	}
	if containsItem(sel.Fluids.Items, "Engine oil") {
		fluids := groups[payload.GroupFluids]
		fluids.EngineOil = &payload.EngineOil{Weights: sel.EngineOilWeights, Types: sel.EngineOilTypes}
		groups[payload.GroupFluids] = fluids
	}
	return &payload.Document{
		Groups:          groups,
		IssueText:       sel.IssueText,
		AdditionalNotes: sel.IssueText,
		Attachments:     sel.Attachments,
	}
}

func validateSelection(sel *ServiceSelection, maxAttachments int) error {
	if len(sel.Attachments) > maxAttachments {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d attachments allowed", maxAttachments))
	}
	for _, weight := range sel.EngineOilWeights {
		if !containsItem(payload.EngineOilWeights, weight) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown engine oil weight %q", weight))
		}
	}
	for _, oilType := range sel.EngineOilTypes {
		if !containsItem(payload.EngineOilTypes, oilType) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown engine oil type %q", oilType))
		}
	}
	return nil
}

func containsItem(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
