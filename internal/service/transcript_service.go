package service

import (
	"context"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/specification"
	"travel-chatbot-be/internal/repository/unitofwork"
)

const (
	defaultTranscriptLimit = 20
	maxTranscriptLimit     = 100
)

type ITranscriptService interface {
	List(ctx context.Context, q *dto.TranscriptQuery) (*dto.TranscriptPage, error)
}

type transcriptService struct {
	uowFactory unitofwork.RepositoryFactory
}

// NewTranscriptService reads the rows written by the db transcript sink.
func NewTranscriptService(uowFactory unitofwork.RepositoryFactory) ITranscriptService {
	return &transcriptService{uowFactory: uowFactory}
}

// List returns one page of transcripts, newest first, with the total matching count.
func (s *transcriptService) List(ctx context.Context, q *dto.TranscriptQuery) (*dto.TranscriptPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultTranscriptLimit
	}
	if limit > maxTranscriptLimit {
		limit = maxTranscriptLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	filters := transcriptFilters(q)
	repo := s.uowFactory.NewUnitOfWork(ctx).ChatTranscriptRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	page := &dto.TranscriptPage{Total: total, Limit: limit, Offset: offset, Items: []dto.TranscriptDTO{}}
	if total == 0 || int64(offset) >= total {
		return page, nil
	}

	specs := append(filters,
		specification.OrderBy{Column: "created_at", Desc: true},
		specification.Page{Limit: limit, Offset: offset},
	)
	rows, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	for _, t := range rows {
		page.Items = append(page.Items, toTranscriptDTO(t))
	}
	return page, nil
}

func transcriptFilters(q *dto.TranscriptQuery) []specification.Specification {
	var specs []specification.Specification
	if q.SessionId != "" {
		specs = append(specs, specification.BySessionID{SessionID: q.SessionId})
	}
	if q.Violations {
		specs = append(specs, specification.SafetyViolations{})
	}
	if q.Intent != "" {
		specs = append(specs, specification.Filter("intent", q.Intent))
	}
	if q.Grade != "" {
		specs = append(specs, specification.Filter("grade", q.Grade))
	}
	return specs
}

func toTranscriptDTO(t *entity.ChatTranscript) dto.TranscriptDTO {
	ids := t.DocumentIds
	if ids == nil {
		ids = []string{}
	}
	return dto.TranscriptDTO{
		Id:              t.Id.String(),
		SessionId:       t.SessionId,
		UserId:          t.UserId,
		UserQuery:       t.UserQuery,
		RefinedQuery:    t.RefinedQuery,
		Intent:          t.Intent,
		Generation:      t.Generation,
		RetryCount:      t.RetryCount,
		SafetyViolation: t.SafetyViolation,
		Grade:           t.Grade,
		DocumentIds:     ids,
		CreatedAt:       t.CreatedAt,
	}
}
