package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	"casework/pkg/platform/sentinel"
	txcontext "casework/pkg/platform/tx"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore persists reviews and their owned children in PostgreSQL.
// Children reference reviews with ON DELETE CASCADE.
type PostgresStore struct {
	db *sql.DB
	tx *txcontext.DBTx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, tx: txcontext.NewDBTx(db, 0)}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Execer {
	return txcontext.Executor(ctx, s.db)
}

const reviewColumns = `id, client_ref, review_type, status, auto_created, comments, rejection_reason,
	created_by, submitted_by, submitted_at, reviewer_id, reviewed_by, reviewed_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, review *models.Review) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, reviewArgs(review)...)
	if err != nil {
		return fmt.Errorf("insert review: %w", translatePgError(err))
	}
	return nil
}

// CreateAutoIfAbsent relies on the uq_reviews_open_auto partial unique index, so
// two concurrent sweeps cannot both insert an open review for one client and type.
func (s *PostgresStore) CreateAutoIfAbsent(ctx context.Context, review *models.Review) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (client_ref, review_type)
			WHERE auto_created AND status IN ('draft', 'submitted', 'under_review')
		DO NOTHING
	`, reviewArgs(review)...)
	if err != nil {
		return fmt.Errorf("insert auto review: %w", translatePgError(err))
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert auto review: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("open %s review for %s: %w", review.ReviewType, review.ClientRef, sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, uuid.UUID(reviewID))
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return review, nil
}

// FindForUpdate locks the review row until the transaction carried by ctx ends.
func (s *PostgresStore) FindForUpdate(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1 FOR UPDATE`, uuid.UUID(reviewID))
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lock review: %w", err)
	}
	return review, nil
}

// List returns matching reviews, newest first.
func (s *PostgresStore) List(ctx context.Context, filter models.ReviewFilter) ([]*models.Review, error) {
	filter = filter.Normalized()
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.ReviewType != nil {
		add("review_type = $%d", string(*filter.ReviewType))
	}
	if filter.ClientRef != nil {
		add("client_ref = $%d", string(*filter.ClientRef))
	}
	if filter.AutoCreated != nil {
		add("auto_created = $%d", *filter.AutoCreated)
	}
	if filter.CreatedFrom != nil {
		add("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add("created_at < $%d", *filter.CreatedTo)
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, validates, mutates and writes
// back inside one transaction. It joins the caller's transaction when ctx carries one.
func (s *PostgresStore) Execute(ctx context.Context, reviewID id.ReviewID, validate func(*models.Review) error, mutate func(*models.Review)) (*models.Review, error) {
	var result *models.Review
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		row := s.execer(txCtx).QueryRowContext(txCtx,
			`SELECT `+reviewColumns+` FROM reviews WHERE id = $1 FOR UPDATE`, uuid.UUID(reviewID))
		review, err := scanReview(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
			}
			return fmt.Errorf("lock review: %w", err)
		}
		if err := validate(review); err != nil {
			return err
		}
		mutate(review)

		_, err = s.execer(txCtx).ExecContext(txCtx, `
			UPDATE reviews SET
				status = $2, comments = $3, rejection_reason = $4,
				submitted_by = $5, submitted_at = $6, reviewer_id = $7,
				reviewed_by = $8, reviewed_at = $9, updated_at = $10
			WHERE id = $1
		`,
			uuid.UUID(review.ID),
			string(review.Status),
			review.Comments,
			nullString(review.RejectionReason),
			nullUserID(review.SubmittedBy),
			nullTime(review.SubmittedAt),
			nullUserID(review.ReviewerID),
			nullUserID(review.ReviewedBy),
			nullTime(review.ReviewedAt),
			review.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update review: %w", translatePgError(err))
		}
		result = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, reviewID id.ReviewID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, uuid.UUID(reviewID))
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	return nil
}

// DeleteStaleAutoDrafts removes auto-created drafts that were never submitted and
// were created before cutoff. Owned rows go with them through ON DELETE CASCADE.
func (s *PostgresStore) DeleteStaleAutoDrafts(ctx context.Context, cutoff time.Time) ([]id.ReviewID, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		DELETE FROM reviews
		WHERE auto_created
		  AND status = 'draft'
		  AND submitted_at IS NULL
		  AND created_at < $1
		RETURNING id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("delete stale drafts: %w", err)
	}
	defer rows.Close()

	var deleted []id.ReviewID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan deleted review id: %w", err)
		}
		deleted = append(deleted, id.ReviewID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted reviews: %w", err)
	}
	return deleted, nil
}

const questionnaireColumns = `review_id, purpose_of_account, kyc_documents_complete, missing_kyc_details,
	account_purpose_aligned, adverse_media_completed, senior_mgmt_approval, pep_approval_obtained,
	static_data_correct, kyc_documents_valid, regulated_business_license, remedial_actions,
	source_of_funds_docs, created_at, updated_at`

// Arrays cross the driver as their text literal and are parsed by pq.
const questionnaireSelect = `review_id, purpose_of_account, kyc_documents_complete, missing_kyc_details,
	account_purpose_aligned, adverse_media_completed, senior_mgmt_approval, pep_approval_obtained,
	static_data_correct, kyc_documents_valid, regulated_business_license, remedial_actions,
	source_of_funds_docs::TEXT, created_at, updated_at`

func (s *PostgresStore) FindQuestionnaire(ctx context.Context, reviewID id.ReviewID) (*models.KYCQuestionnaire, error) {
	var (
		q     models.KYCQuestionnaire
		rawID uuid.UUID
		docs  pq.StringArray
	)
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+questionnaireSelect+` FROM kyc_questionnaires WHERE review_id = $1`, uuid.UUID(reviewID),
	).Scan(
		&rawID,
		&q.PurposeOfAccount,
		&q.KYCDocumentsComplete,
		&q.MissingKYCDetails,
		&q.AccountPurposeAligned,
		&q.AdverseMediaCompleted,
		&q.SeniorMgmtApproval,
		&q.PEPApprovalObtained,
		&q.StaticDataCorrect,
		&q.KYCDocumentsValid,
		&q.RegulatedBusinessLicense,
		&q.RemedialActions,
		&docs,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("questionnaire for review %s: %w", reviewID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find questionnaire: %w", err)
	}
	q.ReviewID = id.ReviewID(rawID)
	q.SourceOfFundsDocs = []string(docs)
	if q.SourceOfFundsDocs == nil {
		q.SourceOfFundsDocs = []string{}
	}
	return &q, nil
}

// SaveQuestionnaire upserts the questionnaire of a review.
func (s *PostgresStore) SaveQuestionnaire(ctx context.Context, q *models.KYCQuestionnaire) error {
	docs := q.SourceOfFundsDocs
	if docs == nil {
		docs = []string{}
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO kyc_questionnaires (`+questionnaireColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CAST($13 AS TEXT)::TEXT[], $14, $15)
		ON CONFLICT (review_id) DO UPDATE SET
			purpose_of_account = EXCLUDED.purpose_of_account,
			kyc_documents_complete = EXCLUDED.kyc_documents_complete,
			missing_kyc_details = EXCLUDED.missing_kyc_details,
			account_purpose_aligned = EXCLUDED.account_purpose_aligned,
			adverse_media_completed = EXCLUDED.adverse_media_completed,
			senior_mgmt_approval = EXCLUDED.senior_mgmt_approval,
			pep_approval_obtained = EXCLUDED.pep_approval_obtained,
			static_data_correct = EXCLUDED.static_data_correct,
			kyc_documents_valid = EXCLUDED.kyc_documents_valid,
			regulated_business_license = EXCLUDED.regulated_business_license,
			remedial_actions = EXCLUDED.remedial_actions,
			source_of_funds_docs = EXCLUDED.source_of_funds_docs,
			updated_at = EXCLUDED.updated_at
	`,
		uuid.UUID(q.ReviewID),
		q.PurposeOfAccount,
		string(q.KYCDocumentsComplete),
		q.MissingKYCDetails,
		string(q.AccountPurposeAligned),
		string(q.AdverseMediaCompleted),
		string(q.SeniorMgmtApproval),
		string(q.PEPApprovalObtained),
		string(q.StaticDataCorrect),
		string(q.KYCDocumentsValid),
		string(q.RegulatedBusinessLicense),
		q.RemedialActions,
		pq.Array(docs),
		q.CreatedAt,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save questionnaire: %w", translatePgError(err))
	}
	return nil
}

func (s *PostgresStore) AddDocument(ctx context.Context, doc *models.Document) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO review_documents (id, review_id, document_type, file_name, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.ReviewID),
		string(doc.DocumentType),
		doc.FileName,
		int64(doc.UploadedBy),
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", translatePgError(err))
	}
	return nil
}

// ListDocuments returns the documents of a review in upload order.
func (s *PostgresStore) ListDocuments(ctx context.Context, reviewID id.ReviewID) ([]*models.Document, error) {
	if err := s.requireReview(ctx, reviewID); err != nil {
		return nil, err
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, review_id, document_type, file_name, uploaded_by, uploaded_at
		FROM review_documents
		WHERE review_id = $1
		ORDER BY uploaded_at, id
	`, uuid.UUID(reviewID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []*models.Document{}
	for rows.Next() {
		var (
			doc        models.Document
			rawID      uuid.UUID
			rawReview  uuid.UUID
			uploadedBy int64
		)
		if err := rows.Scan(&rawID, &rawReview, &doc.DocumentType, &doc.FileName, &uploadedBy, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.ID = id.DocumentID(rawID)
		doc.ReviewID = id.ReviewID(rawReview)
		doc.UploadedBy = id.UserID(uploadedBy)
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

const exceptionColumns = `id, review_id, exception_type, title, description, priority, status, due_date,
	created_by, assigned_to, resolved_by, resolution_notes, resolved_at, escalated_at, created_at, updated_at`

func (s *PostgresStore) CreateException(ctx context.Context, ex *models.Exception) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO review_exceptions (`+exceptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		uuid.UUID(ex.ID),
		uuid.UUID(ex.ReviewID),
		string(ex.Type),
		ex.Title,
		ex.Description,
		string(ex.Priority),
		string(ex.Status),
		nullTime(ex.DueDate),
		int64(ex.CreatedBy),
		nullUserID(ex.AssignedTo),
		nullUserID(ex.ResolvedBy),
		nullString(ex.ResolutionNotes),
		nullTime(ex.ResolvedAt),
		nullTime(ex.EscalatedAt),
		ex.CreatedAt,
		ex.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exception: %w", translatePgError(err))
	}
	return nil
}

func (s *PostgresStore) FindException(ctx context.Context, exceptionID id.ExceptionID) (*models.Exception, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+exceptionColumns+` FROM review_exceptions WHERE id = $1`, uuid.UUID(exceptionID))
	ex, err := scanException(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("exception %s: %w", exceptionID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find exception: %w", err)
	}
	return ex, nil
}

// ListExceptions returns the exceptions of a review in creation order.
func (s *PostgresStore) ListExceptions(ctx context.Context, reviewID id.ReviewID, filter models.ExceptionFilter) ([]*models.Exception, error) {
	if err := s.requireReview(ctx, reviewID); err != nil {
		return nil, err
	}
	query := `SELECT ` + exceptionColumns + ` FROM review_exceptions WHERE review_id = $1`
	args := []any{uuid.UUID(reviewID)}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	query += " ORDER BY created_at, id"
	return s.queryExceptions(ctx, query, args...)
}

// ExecuteException locks the exception row, validates, mutates and writes back.
func (s *PostgresStore) ExecuteException(ctx context.Context, exceptionID id.ExceptionID, validate func(*models.Exception) error, mutate func(*models.Exception)) (*models.Exception, error) {
	var result *models.Exception
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		row := s.execer(txCtx).QueryRowContext(txCtx,
			`SELECT `+exceptionColumns+` FROM review_exceptions WHERE id = $1 FOR UPDATE`, uuid.UUID(exceptionID))
		ex, err := scanException(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("exception %s: %w", exceptionID, sentinel.ErrNotFound)
			}
			return fmt.Errorf("lock exception: %w", err)
		}
		if err := validate(ex); err != nil {
			return err
		}
		mutate(ex)

		_, err = s.execer(txCtx).ExecContext(txCtx, `
			UPDATE review_exceptions SET
				status = $2, assigned_to = $3, resolved_by = $4, resolution_notes = $5,
				resolved_at = $6, escalated_at = $7, updated_at = $8
			WHERE id = $1
		`,
			uuid.UUID(ex.ID),
			string(ex.Status),
			nullUserID(ex.AssignedTo),
			nullUserID(ex.ResolvedBy),
			nullString(ex.ResolutionNotes),
			nullTime(ex.ResolvedAt),
			nullTime(ex.EscalatedAt),
			ex.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update exception: %w", err)
		}
		result = ex
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListOverdueExceptions returns active exceptions whose due date is before now,
// earliest due first.
func (s *PostgresStore) ListOverdueExceptions(ctx context.Context, now time.Time) ([]*models.Exception, error) {
	return s.queryExceptions(ctx, `
		SELECT `+exceptionColumns+`
		FROM review_exceptions
		WHERE status IN ('open', 'in_progress', 'escalated')
		  AND due_date IS NOT NULL
		  AND due_date < $1
		ORDER BY due_date, id
	`, now)
}

func (s *PostgresStore) CountActiveExceptions(ctx context.Context, reviewID id.ReviewID) (int, error) {
	if err := s.requireReview(ctx, reviewID); err != nil {
		return 0, err
	}
	var count int
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM review_exceptions
		WHERE review_id = $1 AND status IN ('open', 'in_progress', 'escalated')
	`, uuid.UUID(reviewID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active exceptions: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) queryExceptions(ctx context.Context, query string, args ...any) ([]*models.Exception, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exceptions: %w", err)
	}
	defer rows.Close()

	out := []*models.Exception{}
	for rows.Next() {
		ex, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exception: %w", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exceptions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) requireReview(ctx context.Context, reviewID id.ReviewID) error {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)`, uuid.UUID(reviewID)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check review: %w", err)
	}
	if !exists {
		return fmt.Errorf("review %s: %w", reviewID, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.Review, error) {
	var (
		r               models.Review
		rawID           uuid.UUID
		clientRef       string
		rejectionReason sql.NullString
		createdBy       int64
		submittedBy     sql.NullInt64
		submittedAt     sql.NullTime
		reviewerID      sql.NullInt64
		reviewedBy      sql.NullInt64
		reviewedAt      sql.NullTime
	)
	if err := row.Scan(
		&rawID,
		&clientRef,
		&r.ReviewType,
		&r.Status,
		&r.AutoCreated,
		&r.Comments,
		&rejectionReason,
		&createdBy,
		&submittedBy,
		&submittedAt,
		&reviewerID,
		&reviewedBy,
		&reviewedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.ID = id.ReviewID(rawID)
	r.ClientRef = id.ClientRef(clientRef)
	r.CreatedBy = id.UserID(createdBy)
	r.RejectionReason = stringPtr(rejectionReason)
	r.SubmittedBy = userIDPtr(submittedBy)
	r.SubmittedAt = timePtr(submittedAt)
	r.ReviewerID = userIDPtr(reviewerID)
	r.ReviewedBy = userIDPtr(reviewedBy)
	r.ReviewedAt = timePtr(reviewedAt)
	return &r, nil
}

func scanException(row rowScanner) (*models.Exception, error) {
	var (
		e               models.Exception
		rawID           uuid.UUID
		rawReview       uuid.UUID
		dueDate         sql.NullTime
		createdBy       int64
		assignedTo      sql.NullInt64
		resolvedBy      sql.NullInt64
		resolutionNotes sql.NullString
		resolvedAt      sql.NullTime
		escalatedAt     sql.NullTime
	)
	if err := row.Scan(
		&rawID,
		&rawReview,
		&e.Type,
		&e.Title,
		&e.Description,
		&e.Priority,
		&e.Status,
		&dueDate,
		&createdBy,
		&assignedTo,
		&resolvedBy,
		&resolutionNotes,
		&resolvedAt,
		&escalatedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.ID = id.ExceptionID(rawID)
	e.ReviewID = id.ReviewID(rawReview)
	e.DueDate = timePtr(dueDate)
	e.CreatedBy = id.UserID(createdBy)
	e.AssignedTo = userIDPtr(assignedTo)
	e.ResolvedBy = userIDPtr(resolvedBy)
	e.ResolutionNotes = stringPtr(resolutionNotes)
	e.ResolvedAt = timePtr(resolvedAt)
	e.EscalatedAt = timePtr(escalatedAt)
	return &e, nil
}

func reviewArgs(r *models.Review) []any {
	return []any{
		uuid.UUID(r.ID),
		string(r.ClientRef),
		string(r.ReviewType),
		string(r.Status),
		r.AutoCreated,
		r.Comments,
		nullString(r.RejectionReason),
		int64(r.CreatedBy),
		nullUserID(r.SubmittedBy),
		nullTime(r.SubmittedAt),
		nullUserID(r.ReviewerID),
		nullUserID(r.ReviewedBy),
		nullTime(r.ReviewedAt),
		r.CreatedAt,
		r.UpdatedAt,
	}
}

// translatePgError maps constraint violations to sentinel errors.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, sentinel.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, sentinel.ErrNotFound)
		}
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullUserID(u *id.UserID) sql.NullInt64 {
	if u == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*u), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func userIDPtr(ni sql.NullInt64) *id.UserID {
	if !ni.Valid {
		return nil
	}
	u := id.UserID(ni.Int64)
	return &u
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
