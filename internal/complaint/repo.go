package complaint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository persists complaints in Postgres. All six category tables share
// one column shape; the category descriptor supplies the table name.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const complaintColumns = `id, scholar_number, student_name, user_email, complain_type, description,
		attachments, hostel_number, room, department, stream, year, landmark,
		status, read_status, admin_remarks, admin_attachments, resolved_at, created_at, updated_at`

// RecordUpdate is the partial merge applied by Update. Nil members are left
// untouched. ResolvedAt is set by the engine, never by callers.
type RecordUpdate struct {
	Status           *Status
	ReadStatus       *ReadStatus
	AdminRemarks     *string
	AdminAttachments []string
	ResolvedAt       *time.Time
}

func tableFor(cat Category) (string, error) {
	d, ok := DescriptorFor(cat)
	if !ok {
		return "", ErrUnknownCategory
	}
	return d.Table, nil
}

// Insert writes a new complaint and returns it with server-assigned fields.
func (r *Repository) Insert(ctx context.Context, cat Category, c Complaint) (Complaint, error) {
	table, err := tableFor(cat)
	if err != nil {
		return Complaint{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.ReadStatus == "" {
		c.ReadStatus = ReadNotViewed
	}
	c.Category = cat

	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, scholar_number, student_name, user_email, complain_type, description,
			attachments, hostel_number, room, department, stream, year, landmark,
			status, read_status, admin_remarks, admin_attachments)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at
	`, table),
		c.ID, c.ScholarNumber, c.StudentName, c.UserEmail, c.ComplainType, c.Description,
		marshalList(c.Attachments), c.HostelNumber, c.Room, c.Department, c.Stream, c.Year, c.Landmark,
		string(c.Status), string(c.ReadStatus), c.AdminRemarks, marshalList(c.AdminAttachments))
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return Complaint{}, fmt.Errorf("insert %s: %w", table, err)
	}
	if c.Attachments == nil {
		c.Attachments = []string{}
	}
	if c.AdminAttachments == nil {
		c.AdminAttachments = []string{}
	}
	return c, nil
}

// ByOwner returns all complaints in a category owned by a scholar number,
// newest first.
func (r *Repository) ByOwner(ctx context.Context, cat Category, scholarNumber string) ([]Complaint, error) {
	table, err := tableFor(cat)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE scholar_number = $1 ORDER BY created_at DESC
	`, complaintColumns, table), scholarNumber)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return collect(rows, cat)
}

// ByOwnerFiltered narrows ByOwner by any combination of createdAt range,
// id set, complaint type, status, and read status.
func (r *Repository) ByOwnerFiltered(ctx context.Context, cat Category, scholarNumber string, f Filter) ([]Complaint, error) {
	table, err := tableFor(cat)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE scholar_number = $1`, complaintColumns, table)
	args := []any{scholarNumber}
	if f.Start != nil {
		args = append(args, *f.Start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.End != nil {
		args = append(args, *f.End)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if f.ComplainType != "" {
		args = append(args, f.ComplainType)
		query += fmt.Sprintf(" AND complain_type = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.ReadStatus != nil {
		args = append(args, string(*f.ReadStatus))
		query += fmt.Sprintf(" AND read_status = $%d", len(args))
	}
	if len(f.IDs) > 0 {
		placeholders := make([]string, len(f.IDs))
		for i, id := range f.IDs {
			args = append(args, id)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND id IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return collect(rows, cat)
}

// ByID returns a single complaint or ErrNotFound.
func (r *Repository) ByID(ctx context.Context, cat Category, id string) (Complaint, error) {
	table, err := tableFor(cat)
	if err != nil {
		return Complaint{}, err
	}
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, complaintColumns, table), id)
	c, err := scanComplaint(row, cat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, fmt.Errorf("get %s: %w", table, err)
	}
	return c, nil
}

// Update applies a partial merge and returns the updated record. Last write
// wins; there is no version check.
func (r *Repository) Update(ctx context.Context, cat Category, id string, upd RecordUpdate) (Complaint, error) {
	table, err := tableFor(cat)
	if err != nil {
		return Complaint{}, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.ReadStatus != nil {
		add("read_status", string(*upd.ReadStatus))
	}
	if upd.AdminRemarks != nil {
		add("admin_remarks", *upd.AdminRemarks)
	}
	if upd.AdminAttachments != nil {
		add("admin_attachments", marshalList(upd.AdminAttachments))
	}
	if upd.ResolvedAt != nil {
		add("resolved_at", *upd.ResolvedAt)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		table, strings.Join(sets, ", "), complaintColumns)
	row := r.db.QueryRowContext(ctx, query, args...)
	c, err := scanComplaint(row, cat)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, fmt.Errorf("update %s: %w", table, err)
	}
	return c, nil
}

// Delete permanently removes a complaint. There is no tombstone.
func (r *Repository) Delete(ctx context.Context, cat Category, id string) error {
	table, err := tableFor(cat)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByOwner returns total and resolved complaint counts for one owner in
// one category.
func (r *Repository) CountByOwner(ctx context.Context, cat Category, scholarNumber string) (total, resolved int, err error) {
	table, terr := tableFor(cat)
	if terr != nil {
		return 0, 0, terr
	}
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM %s WHERE scholar_number = $1
	`, table), scholarNumber, string(StatusResolved))
	if err := row.Scan(&total, &resolved); err != nil {
		return 0, 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, resolved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner, cat Category) (Complaint, error) {
	var (
		c                     Complaint
		attachments, adminAtt []byte
		resolvedAt            sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.ScholarNumber, &c.StudentName, &c.UserEmail, &c.ComplainType,
		&c.Description, &attachments, &c.HostelNumber, &c.Room, &c.Department, &c.Stream,
		&c.Year, &c.Landmark, &c.Status, &c.ReadStatus, &c.AdminRemarks, &adminAtt,
		&resolvedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Complaint{}, err
	}
	c.Category = cat
	c.Attachments = unmarshalList(attachments)
	c.AdminAttachments = unmarshalList(adminAtt)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		c.ResolvedAt = &t
	}
	return c, nil
}

func collect(rows *sql.Rows, cat Category) ([]Complaint, error) {
	defer rows.Close()
	out := []Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows, cat)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Attachment lists are stored as jsonb so the record shape stays portable
// across drivers.
func marshalList(list []string) []byte {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return b
}

func unmarshalList(raw []byte) []string {
	out := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}
