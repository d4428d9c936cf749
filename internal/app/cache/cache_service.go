package cache

import (
	"context"

	"github.com/osvaldoandrade/ledgerproof/internal/domain"
)

type Service struct {
	store Store
	codec Codec
	idGen IDGenerator
	clock Clock
}

func NewService(store Store, codec Codec, idGen IDGenerator, clock Clock) *Service {
	return &Service{
		store: store,
		codec: codec,
		idGen: idGen,
		clock: clock,
	}
}

// Put persists a verified record under its state path. The record id and
// verification time are assigned here; a later write to the same path
// replaces the earlier record.
func (s *Service) Put(ctx context.Context, record Record) (Record, error) {
	if len(record.Path) == 0 {
		return Record{}, ErrPathRequired
	}
	if len(record.Envelope) == 0 {
		return Record{}, ErrEnvelopeRequired
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return Record{}, err
	}
	record.ID = id
	record.VerifiedAt = s.clock.Now().UnixNano()

	encoded, err := s.codec.Encode(record)
	if err != nil {
		return Record{}, err
	}

	entry := Entry{
		Path:      record.Path,
		RecordID:  record.ID,
		Record:    encoded,
		UpdatedAt: record.VerifiedAt,
	}
	if err := s.store.Put(ctx, entry); err != nil {
		return Record{}, err
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, path domain.StatePath) (Record, error) {
	if len(path) == 0 {
		return Record{}, ErrPathRequired
	}

	entry, err := s.store.Get(ctx, path)
	if err != nil {
		return Record{}, err
	}
	return s.codec.Decode(entry.Record)
}

func (s *Service) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}

func (s *Service) Info(ctx context.Context) (Info, error) {
	return s.store.Info(ctx)
}
