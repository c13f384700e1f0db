package services

import (
	"context"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models/dto"
	"github.com/aaeducates/backend/internal/app/repositories"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/helpers"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/aaeducates/backend/internal/pkg/metrics"
	"github.com/aaeducates/backend/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// Common resource messages
const (
	msgPermissionDenied = "You do not have permission to perform this action."
	msgNotFound         = "Not found."
)

// Definition describes how one resource kind plugs into the generic CRUD flow.
// Only Kind and ID are required.
type Definition[T any] struct {
	Kind authz.ResourceKind
	ID   func(*T) *int64

	// Owner extracts the owner-bearing columns of a stored row
	Owner func(ctx context.Context, item *T) (authz.OwnerRef, error)
	// Prepare applies creator defaults and parses write-only inputs on create
	Prepare func(ctx context.Context, actor *authz.Actor, item *T) error
	// Merge copies fields an update may not change from stored into incoming
	Merge func(stored, incoming *T)
	// Check verifies references to other rows before a write
	Check func(ctx context.Context, item *T) error
	// Decorate fills read-only fields before a row leaves the service
	Decorate func(ctx context.Context, item *T) error
	// Created runs after a row has been stored
	Created func(ctx context.Context, item *T)
}

// ResourceService runs authorize, scope and persist for one resource kind
type ResourceService[T any] struct {
	def     Definition[T]
	store   repositories.Store[T]
	engine  *authz.Engine
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewResourceService creates a resource service
func NewResourceService[T any](def Definition[T], store repositories.Store[T], engine *authz.Engine, m *metrics.Metrics) *ResourceService[T] {
	return &ResourceService[T]{
		def:     def,
		store:   store,
		engine:  engine,
		metrics: m,
		log:     logger.Component("resource").With().Str("kind", string(def.Kind)).Logger(),
	}
}

// Kind returns the resource kind served
func (s *ResourceService[T]) Kind() authz.ResourceKind {
	return s.def.Kind
}

// List returns one page of the rows visible to actor. An actor without list
// permission gets an empty page.
func (s *ResourceService[T]) List(ctx context.Context, actor *authz.Actor, page, size int) ([]*T, dto.PaginationInfo, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	if !s.engine.HasPermission(ctx, actor, s.def.Kind, authz.OpList) {
		s.denied(authz.OpList)
		return []*T{}, helpers.NewPaginationInfo(0, page, limit), nil
	}

	filter, err := s.engine.Scope(ctx, actor, s.def.Kind)
	if err != nil {
		s.log.Error().Err(err).Int64("userID", actor.UserID).Msg("Error building list scope")
		return nil, dto.PaginationInfo{}, err
	}

	items, total, err := s.store.List(ctx, filter, repositories.Page{Offset: offset, Limit: limit})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	for _, item := range items {
		if err := s.decorate(ctx, item); err != nil {
			return nil, dto.PaginationInfo{}, err
		}
	}
	return items, helpers.NewPaginationInfo(total, page, limit), nil
}

// Get returns one visible row
func (s *ResourceService[T]) Get(ctx context.Context, actor *authz.Actor, id int64) (*T, error) {
	item, err := s.visible(ctx, actor, id, authz.OpRetrieve)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Create validates and stores item on behalf of actor
func (s *ResourceService[T]) Create(ctx context.Context, actor *authz.Actor, item *T) (*T, error) {
	if !s.engine.HasPermission(ctx, actor, s.def.Kind, authz.OpCreate) {
		s.denied(authz.OpCreate)
		return nil, apperrors.NewForbiddenError(msgPermissionDenied)
	}

	*s.def.ID(item) = 0
	if s.def.Prepare != nil {
		if err := s.def.Prepare(ctx, actor, item); err != nil {
			return nil, err
		}
	}
	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, item); err != nil {
		return nil, err
	}
	s.log.Info().Int64("id", *s.def.ID(item)).Int64("userID", actor.UserID).Msg("Resource created")

	if err := s.decorate(ctx, item); err != nil {
		return nil, err
	}
	if s.def.Created != nil {
		s.def.Created(ctx, item)
	}
	return item, nil
}

// Update loads a visible row, lets apply rewrite it and stores the result.
// Fields covered by Merge keep their stored values.
func (s *ResourceService[T]) Update(ctx context.Context, actor *authz.Actor, id int64, apply func(*T) error) (*T, error) {
	stored, err := s.visible(ctx, actor, id, authz.OpUpdate)
	if err != nil {
		return nil, err
	}

	original := repositories.Clone(stored)
	if err := apply(stored); err != nil {
		return nil, err
	}
	*s.def.ID(stored) = id
	if s.def.Merge != nil {
		s.def.Merge(original, stored)
	}
	if err := s.validate(ctx, stored); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, stored); err != nil {
		return nil, err
	}
	s.log.Info().Int64("id", id).Int64("userID", actor.UserID).Msg("Resource updated")

	if err := s.decorate(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete removes a visible row the actor owns
func (s *ResourceService[T]) Delete(ctx context.Context, actor *authz.Actor, id int64) error {
	if _, err := s.visible(ctx, actor, id, authz.OpDelete); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("id", id).Int64("userID", actor.UserID).Msg("Resource deleted")
	return nil
}

// visible fetches id through the actor's scope and applies the object check for op
func (s *ResourceService[T]) visible(ctx context.Context, actor *authz.Actor, id int64, op authz.Operation) (*T, error) {
	if !s.engine.HasPermission(ctx, actor, s.def.Kind, op) {
		s.denied(op)
		if op.IsSafe() {
			return nil, apperrors.NewResourceNotFoundError(msgNotFound)
		}
		return nil, apperrors.NewForbiddenError(msgPermissionDenied)
	}

	filter, err := s.engine.Scope(ctx, actor, s.def.Kind)
	if err != nil {
		s.log.Error().Err(err).Int64("userID", actor.UserID).Msg("Error building object scope")
		return nil, err
	}
	item, err := s.store.Get(ctx, filter, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError(msgNotFound)
		}
		return nil, err
	}

	owner := authz.OwnerRef{}
	if s.def.Owner != nil {
		if owner, err = s.def.Owner(ctx, item); err != nil {
			return nil, err
		}
	}
	if !s.engine.HasObjectPermission(ctx, actor, s.def.Kind, op, owner) {
		s.denied(op)
		return nil, apperrors.NewForbiddenError(msgPermissionDenied)
	}
	return item, nil
}

func (s *ResourceService[T]) validate(ctx context.Context, item *T) error {
	if err := validation.Struct(item); err != nil {
		return err
	}
	if s.def.Check != nil {
		return s.def.Check(ctx, item)
	}
	return nil
}

func (s *ResourceService[T]) decorate(ctx context.Context, item *T) error {
	if s.def.Decorate == nil {
		return nil
	}
	return s.def.Decorate(ctx, item)
}

func (s *ResourceService[T]) denied(op authz.Operation) {
	s.metrics.IncrementAccessDenied(string(s.def.Kind), string(op))
}
