package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// pgDocument is the row shape of the pgvector-backed collection. Not a domain
// model; it never leaves this package.
type pgDocument struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CVID            string          `gorm:"type:uuid;index;column:cv_id"`
	DocType         string          `gorm:"type:varchar(10);index"`
	Filename        string          `gorm:"type:varchar(255)"`
	CandidateName   string          `gorm:"type:varchar(255)"`
	YearsExperience float64         ``
	Page            int             ``
	StartOffset     int             ``
	Content         string          `gorm:"type:text"`
	Embedding       pgvector.Vector `gorm:"type:vector(3072)"`
}

func (pgDocument) TableName() string {
	return "cv_documents"
}

// PgStore keeps the collection in Postgres with pgvector, ranked by the
// cosine distance operator.
type PgStore struct {
	db    *gorm.DB
	embed Embedder
}

func NewPgStore(db *gorm.DB, embed Embedder) *PgStore {
	return &PgStore{db: db, embed: embed}
}

// Migrate creates the collection table. The vector extension must already be
// installed in the target database.
func (s *PgStore) Migrate() error {
	return s.db.AutoMigrate(&pgDocument{})
}

func (s *PgStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows := make([]pgDocument, len(docs))
	for i, d := range docs {
		vec, err := s.embed.GenerateEmbedding(ctx, d.Content)
		if err != nil {
			return &WriteError{Op: "embed", Err: err}
		}
		id, err := uuid.Parse(d.ID)
		if err != nil {
			id = uuid.New()
		}
		rows[i] = pgDocument{
			ID:              id,
			CVID:            d.Meta.CVID,
			DocType:         d.Meta.Type,
			Filename:        d.Meta.Filename,
			CandidateName:   d.Meta.CandidateName,
			YearsExperience: d.Meta.YearsExperience,
			Page:            d.Meta.Page,
			StartOffset:     d.Meta.StartOffset,
			Content:         d.Content,
			Embedding:       pgvector.NewVector(vec),
		}
	}

	// Single INSERT so the batch is visible all-or-nothing.
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return &WriteError{Op: "add", Err: err}
	}
	return nil
}

func (s *PgStore) DeleteByCV(ctx context.Context, cvID string) error {
	err := s.db.WithContext(ctx).Where("cv_id = ?", cvID).Delete(&pgDocument{}).Error
	if err != nil {
		return &WriteError{Op: "delete", Err: err}
	}
	return nil
}

type pgResult struct {
	ID              uuid.UUID
	CVID            string `gorm:"column:cv_id"`
	DocType         string
	Filename        string
	CandidateName   string
	YearsExperience float64
	Page            int
	StartOffset     int
	Content         string
	Distance        float64
}

func (s *PgStore) Query(ctx context.Context, text string, topK int, filter Filter) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}

	vec, err := s.embed.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	qv := pgvector.NewVector(vec)

	where := "1=1"
	args := []any{qv}
	if filter.Type != "" {
		where += " AND doc_type = ?"
		args = append(args, filter.Type)
	}
	if filter.CVID != "" {
		where += " AND cv_id = ?"
		args = append(args, filter.CVID)
	}
	args = append(args, topK)

	// <=> is pgvector cosine distance; ascending order means best match
	// first.
	var rows []pgResult
	err = s.db.WithContext(ctx).Raw(fmt.Sprintf(`
        SELECT id, cv_id, doc_type, filename, candidate_name, years_experience,
               page, start_offset, content, embedding <=> ? AS distance
        FROM cv_documents
        WHERE %s
        ORDER BY distance
        LIMIT ?
    `, where), args...).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	results := make([]Result, len(rows))
	for i, r := range rows {
		results[i] = Result{
			Document: Document{
				ID:      r.ID.String(),
				Content: r.Content,
				Meta: Metadata{
					CVID:            r.CVID,
					Type:            r.DocType,
					Filename:        r.Filename,
					CandidateName:   r.CandidateName,
					YearsExperience: r.YearsExperience,
					Page:            r.Page,
					StartOffset:     r.StartOffset,
				},
			},
			Distance: r.Distance,
		}
	}
	return results, nil
}
