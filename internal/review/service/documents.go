package service

import (
	"context"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	"casework/pkg/platform/audit"
	"casework/pkg/requestcontext"
)

// RegisterDocument records the metadata of an uploaded file. The bytes are
// stored elsewhere.
func (s *Service) RegisterDocument(ctx context.Context, actor id.Actor, reviewID id.ReviewID, docType models.DocumentType, fileName string) (_ *models.Document, err error) {
	ctx, end := s.begin(ctx, opRegisterDocument, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "register documents", makerRoles...); err != nil {
		return nil, err
	}

	var doc *models.Document
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.reviews.FindForUpdate(txCtx, reviewID)
		if err != nil {
			return wrapReviewErr(err, "failed to load review")
		}
		if err := requireEditable(r); err != nil {
			return err
		}
		d, err := models.NewDocument(id.NewDocumentID(), reviewID, docType, fileName, actor.ID, requestcontext.Now(txCtx))
		if err != nil {
			return wrapReviewErr(err, "failed to register document")
		}
		if err := s.reviews.AddDocument(txCtx, d); err != nil {
			return wrapReviewErr(err, "failed to register document")
		}
		if err := s.auditEmitter.emitReview(txCtx, actor, audit.ActionDocumentRegistered, r, r.Status, string(d.DocumentType)+": "+d.FileName); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, reviewID id.ReviewID) ([]*models.Document, error) {
	docs, err := s.reviews.ListDocuments(ctx, reviewID)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to list documents")
	}
	return docs, nil
}
