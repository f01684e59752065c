package review

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	"casework/pkg/platform/sentinel"
)

// Error Contract:
// - ErrNotFound when the review, questionnaire or exception does not exist
// - ErrAlreadyUsed when an open auto-created review already exists for the client and type
// - validate errors from Execute are returned unchanged
//
// aggregate is one arena slot: the review and everything it owns. Deleting the
// slot deletes the children with it.
type aggregate struct {
	review         *models.Review
	questionnaire  *models.KYCQuestionnaire
	documents      []*models.Document
	exceptions     map[id.ExceptionID]*models.Exception
	exceptionOrder []id.ExceptionID
}

// InMemory keeps reviews and their owned children in memory for tests and dev.
// Values are cloned on the way in and out so callers never share state with the store.
type InMemory struct {
	mu             sync.RWMutex
	reviews        map[id.ReviewID]*aggregate
	exceptionOwner map[id.ExceptionID]id.ReviewID
}

func NewInMemory() *InMemory {
	return &InMemory{
		reviews:        make(map[id.ReviewID]*aggregate),
		exceptionOwner: make(map[id.ExceptionID]id.ReviewID),
	}
}

func (s *InMemory) Create(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reviews[review.ID]; exists {
		return fmt.Errorf("review %s: %w", review.ID, sentinel.ErrConflict)
	}
	s.insertLocked(review)
	return nil
}

// CreateAutoIfAbsent inserts an auto-created review unless an open auto-created
// review exists for the same client and type. Check and insert share one lock.
func (s *InMemory) CreateAutoIfAbsent(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, agg := range s.reviews {
		r := agg.review
		if r.AutoCreated && r.Status.IsOpen() && r.ClientRef == review.ClientRef && r.ReviewType == review.ReviewType {
			return fmt.Errorf("open %s review for %s: %w", review.ReviewType, review.ClientRef, sentinel.ErrAlreadyUsed)
		}
	}
	if _, exists := s.reviews[review.ID]; exists {
		return fmt.Errorf("review %s: %w", review.ID, sentinel.ErrConflict)
	}
	s.insertLocked(review)
	return nil
}

func (s *InMemory) insertLocked(review *models.Review) {
	s.reviews[review.ID] = &aggregate{
		review:     cloneReview(review),
		exceptions: make(map[id.ExceptionID]*models.Exception),
	}
}

func (s *InMemory) FindByID(_ context.Context, reviewID id.ReviewID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.reviews[reviewID]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	return cloneReview(agg.review), nil
}

// FindForUpdate is FindByID; callers serialise through the in-memory StoreTx.
func (s *InMemory) FindForUpdate(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	return s.FindByID(ctx, reviewID)
}

// List returns matching reviews, newest first.
func (s *InMemory) List(_ context.Context, filter models.ReviewFilter) ([]*models.Review, error) {
	filter = filter.Normalized()
	s.mu.RLock()
	matched := make([]*models.Review, 0, len(s.reviews))
	for _, agg := range s.reviews {
		if filter.Matches(agg.review) {
			matched = append(matched, cloneReview(agg.review))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	if filter.Offset >= len(matched) {
		return []*models.Review{}, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], nil
}

// Execute atomically validates and mutates a review under the store lock.
// The mutation is applied to a copy and only stored when validate passes.
func (s *InMemory) Execute(_ context.Context, reviewID id.ReviewID, validate func(*models.Review) error, mutate func(*models.Review)) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.reviews[reviewID]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	working := cloneReview(agg.review)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	agg.review = working
	return cloneReview(working), nil
}

// Delete removes the review together with its questionnaire, documents and exceptions.
func (s *InMemory) Delete(_ context.Context, reviewID id.ReviewID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[reviewID]; !ok {
		return fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	s.deleteLocked(reviewID)
	return nil
}

func (s *InMemory) deleteLocked(reviewID id.ReviewID) {
	for _, exID := range s.reviews[reviewID].exceptionOrder {
		delete(s.exceptionOwner, exID)
	}
	delete(s.reviews, reviewID)
}

// DeleteStaleAutoDrafts removes auto-created drafts that were never submitted and
// were created before cutoff. It returns the ids it deleted.
func (s *InMemory) DeleteStaleAutoDrafts(_ context.Context, cutoff time.Time) ([]id.ReviewID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted []id.ReviewID
	for reviewID, agg := range s.reviews {
		if agg.review.IsNeverSubmittedAutoDraft() && agg.review.CreatedAt.Before(cutoff) {
			deleted = append(deleted, reviewID)
		}
	}
	for _, reviewID := range deleted {
		s.deleteLocked(reviewID)
	}
	return deleted, nil
}

func (s *InMemory) FindQuestionnaire(_ context.Context, reviewID id.ReviewID) (*models.KYCQuestionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.reviews[reviewID]
	if !ok || agg.questionnaire == nil {
		return nil, fmt.Errorf("questionnaire for review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	return cloneQuestionnaire(agg.questionnaire), nil
}

// SaveQuestionnaire creates or replaces the questionnaire of a review.
func (s *InMemory) SaveQuestionnaire(_ context.Context, q *models.KYCQuestionnaire) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.reviews[q.ReviewID]
	if !ok {
		return fmt.Errorf("review %s: %w", q.ReviewID, sentinel.ErrNotFound)
	}
	agg.questionnaire = cloneQuestionnaire(q)
	return nil
}

func (s *InMemory) AddDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.reviews[doc.ReviewID]
	if !ok {
		return fmt.Errorf("review %s: %w", doc.ReviewID, sentinel.ErrNotFound)
	}
	copied := *doc
	agg.documents = append(agg.documents, &copied)
	return nil
}

// ListDocuments returns the documents of a review in upload order.
func (s *InMemory) ListDocuments(_ context.Context, reviewID id.ReviewID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.reviews[reviewID]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	docs := make([]*models.Document, 0, len(agg.documents))
	for _, d := range agg.documents {
		copied := *d
		docs = append(docs, &copied)
	}
	return docs, nil
}

func (s *InMemory) CreateException(_ context.Context, ex *models.Exception) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.reviews[ex.ReviewID]
	if !ok {
		return fmt.Errorf("review %s: %w", ex.ReviewID, sentinel.ErrNotFound)
	}
	if _, exists := s.exceptionOwner[ex.ID]; exists {
		return fmt.Errorf("exception %s: %w", ex.ID, sentinel.ErrConflict)
	}
	agg.exceptions[ex.ID] = cloneException(ex)
	agg.exceptionOrder = append(agg.exceptionOrder, ex.ID)
	s.exceptionOwner[ex.ID] = ex.ReviewID
	return nil
}

func (s *InMemory) FindException(_ context.Context, exceptionID id.ExceptionID) (*models.Exception, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ex, ok := s.exceptionLocked(exceptionID)
	if !ok {
		return nil, fmt.Errorf("exception %s: %w", exceptionID, sentinel.ErrNotFound)
	}
	return cloneException(ex), nil
}

func (s *InMemory) exceptionLocked(exceptionID id.ExceptionID) (*models.Exception, bool) {
	reviewID, ok := s.exceptionOwner[exceptionID]
	if !ok {
		return nil, false
	}
	ex, ok := s.reviews[reviewID].exceptions[exceptionID]
	return ex, ok
}

// ListExceptions returns the exceptions of a review in creation order.
func (s *InMemory) ListExceptions(_ context.Context, reviewID id.ReviewID, filter models.ExceptionFilter) ([]*models.Exception, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.reviews[reviewID]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	out := make([]*models.Exception, 0, len(agg.exceptionOrder))
	for _, exID := range agg.exceptionOrder {
		if ex := agg.exceptions[exID]; filter.Matches(ex) {
			out = append(out, cloneException(ex))
		}
	}
	return out, nil
}

// ExecuteException atomically validates and mutates an exception under the store lock.
func (s *InMemory) ExecuteException(_ context.Context, exceptionID id.ExceptionID, validate func(*models.Exception) error, mutate func(*models.Exception)) (*models.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.exceptionLocked(exceptionID)
	if !ok {
		return nil, fmt.Errorf("exception %s: %w", exceptionID, sentinel.ErrNotFound)
	}
	working := cloneException(current)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.reviews[working.ReviewID].exceptions[exceptionID] = working
	return cloneException(working), nil
}

// ListOverdueExceptions returns active exceptions whose due date is before now,
// earliest due first.
func (s *InMemory) ListOverdueExceptions(_ context.Context, now time.Time) ([]*models.Exception, error) {
	s.mu.RLock()
	var out []*models.Exception
	for _, agg := range s.reviews {
		for _, ex := range agg.exceptions {
			if ex.IsOverdue(now) {
				out = append(out, cloneException(ex))
			}
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Exception) int {
		if c := a.DueDate.Compare(*b.DueDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemory) CountActiveExceptions(_ context.Context, reviewID id.ReviewID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.reviews[reviewID]
	if !ok {
		return 0, fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	count := 0
	for _, ex := range agg.exceptions {
		if ex.IsActive() {
			count++
		}
	}
	return count, nil
}

func cloneReview(r *models.Review) *models.Review {
	copied := *r
	return &copied
}

func cloneQuestionnaire(q *models.KYCQuestionnaire) *models.KYCQuestionnaire {
	copied := *q
	copied.SourceOfFundsDocs = slices.Clone(q.SourceOfFundsDocs)
	if copied.SourceOfFundsDocs == nil {
		copied.SourceOfFundsDocs = []string{}
	}
	return &copied
}

func cloneException(e *models.Exception) *models.Exception {
	copied := *e
	return &copied
}
