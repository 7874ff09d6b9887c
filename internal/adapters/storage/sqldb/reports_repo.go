package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pet-lost-found/internal/domain/reports"
)

type LostRepo struct {
	db *sqlx.DB
}

func NewLostRepo(db *sqlx.DB) *LostRepo {
	return &LostRepo{db: db}
}

type lostRow struct {
	ID               int64           `db:"id"`
	PetType          string          `db:"pet_type"`
	Breed            string          `db:"breed"`
	Color            string          `db:"color"`
	Gender           string          `db:"gender"`
	Age              string          `db:"age"`
	Features         string          `db:"features"`
	LostTime         time.Time       `db:"lost_time"`
	LostLocationText string          `db:"lost_location_text"`
	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	ContactInfo      string          `db:"contact_info"`
	Photos           string          `db:"photos"`
	IsFound          bool            `db:"is_found"`
	FoundTime        sql.NullTime    `db:"found_time"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

const lostColumns = `
	id, pet_type, breed, color, gender, age, features,
	lost_time, lost_location_text, latitude, longitude,
	contact_info, photos, is_found, found_time,
	created_at, updated_at
`

func (r *LostRepo) Create(ctx context.Context, rep reports.LostReport) (reports.LostReport, error) {
	q := `
		INSERT INTO pet_lost_reports (
			pet_type, breed, color, gender, age, features,
			lost_time, lost_location_text, latitude, longitude,
			contact_info, photos, is_found, found_time,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		rep.PetType, rep.Breed, rep.Color, rep.Gender, rep.Age, rep.Features,
		rep.LostTime, rep.LostLocationText, toNullFloat(rep.Latitude), toNullFloat(rep.Longitude),
		rep.ContactInfo, encodePhotos(rep.Photos), rep.IsFound, toNullTime(rep.FoundTime),
		rep.CreatedAt, rep.UpdatedAt,
	}

	id, err := insertReturningID(ctx, r.db, q, args)
	if err != nil {
		return reports.LostReport{}, err
	}
	rep.ID = id
	return rep, nil
}

func (r *LostRepo) GetByID(ctx context.Context, id int64) (reports.LostReport, error) {
	var row lostRow
	q := r.db.Rebind(`SELECT ` + lostColumns + ` FROM pet_lost_reports WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return reports.LostReport{}, reports.ErrNotFound
		}
		return reports.LostReport{}, err
	}
	return fromLostRow(row), nil
}

func (r *LostRepo) Update(ctx context.Context, rep reports.LostReport) error {
	q := r.db.Rebind(`
		UPDATE pet_lost_reports
		SET is_found = ?, found_time = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := r.db.ExecContext(ctx, q, rep.IsFound, toNullTime(rep.FoundTime), rep.UpdatedAt, rep.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reports.ErrNotFound
	}
	return nil
}

func (r *LostRepo) List(ctx context.Context, f reports.Filter) ([]reports.LostReport, error) {
	conds, args := filterConds(f, "lost_location_text")
	switch f.Status {
	case reports.StatusLost:
		conds = append(conds, "is_found = ?")
		args = append(args, false)
	case reports.StatusFound:
		conds = append(conds, "is_found = ?")
		args = append(args, true)
	}

	q := `SELECT ` + lostColumns + ` FROM pet_lost_reports`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	var rows []lostRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}

	out := make([]reports.LostReport, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromLostRow(row))
	}
	return out, nil
}

type FoundRepo struct {
	db *sqlx.DB
}

func NewFoundRepo(db *sqlx.DB) *FoundRepo {
	return &FoundRepo{db: db}
}

type foundRow struct {
	ID                int64           `db:"id"`
	PetType           string          `db:"pet_type"`
	Breed             string          `db:"breed"`
	Color             string          `db:"color"`
	Gender            string          `db:"gender"`
	Features          string          `db:"features"`
	FoundTime         time.Time       `db:"found_time"`
	FoundLocationText string          `db:"found_location_text"`
	Latitude          sql.NullFloat64 `db:"latitude"`
	Longitude         sql.NullFloat64 `db:"longitude"`
	ContactInfo       string          `db:"contact_info"`
	Photos            string          `db:"photos"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

const foundColumns = `
	id, pet_type, breed, color, gender, features,
	found_time, found_location_text, latitude, longitude,
	contact_info, photos, created_at, updated_at
`

func (r *FoundRepo) Create(ctx context.Context, rep reports.FoundReport) (reports.FoundReport, error) {
	q := `
		INSERT INTO pet_found_reports (
			pet_type, breed, color, gender, features,
			found_time, found_location_text, latitude, longitude,
			contact_info, photos, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		rep.PetType, rep.Breed, rep.Color, rep.Gender, rep.Features,
		rep.FoundTime, rep.FoundLocationText, toNullFloat(rep.Latitude), toNullFloat(rep.Longitude),
		rep.ContactInfo, encodePhotos(rep.Photos), rep.CreatedAt, rep.UpdatedAt,
	}

	id, err := insertReturningID(ctx, r.db, q, args)
	if err != nil {
		return reports.FoundReport{}, err
	}
	rep.ID = id
	return rep, nil
}

func (r *FoundRepo) List(ctx context.Context, f reports.Filter) ([]reports.FoundReport, error) {
	conds, args := filterConds(f, "found_location_text")

	q := `SELECT ` + foundColumns + ` FROM pet_found_reports`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	var rows []foundRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}

	out := make([]reports.FoundReport, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromFoundRow(row))
	}
	return out, nil
}

// insertReturningID resuelve la diferencia de dialecto para obtener el id
// autoincremental: RETURNING en Postgres, LastInsertId en SQLite.
func insertReturningID(ctx context.Context, db *sqlx.DB, q string, args []any) (int64, error) {
	if db.DriverName() == "pgx" {
		var id int64
		if err := db.GetContext(ctx, &id, db.Rebind(q+" RETURNING id"), args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := db.ExecContext(ctx, db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// filterConds arma las condiciones comunes a ambos listados. LOWER/LIKE en
// vez de ILIKE para que funcione igual en los dos dialectos.
func filterConds(f reports.Filter, locationCol string) ([]string, []any) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if f.PetType != "" {
		conds = append(conds, "pet_type = ?")
		args = append(args, f.PetType)
	}
	if f.Location != "" {
		conds = append(conds, "LOWER("+locationCol+") LIKE ?")
		args = append(args, likePattern(f.Location))
	}
	if f.Color != "" {
		conds = append(conds, "LOWER(color) LIKE ?")
		args = append(args, likePattern(f.Color))
	}
	return conds, args
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func encodePhotos(photos []string) string {
	if len(photos) == 0 {
		return "[]"
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodePhotos(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var photos []string
	if err := json.Unmarshal([]byte(raw), &photos); err != nil {
		return nil
	}
	return photos
}

func fromLostRow(row lostRow) reports.LostReport {
	return reports.LostReport{
		ID:               row.ID,
		PetType:          row.PetType,
		Breed:            row.Breed,
		Color:            row.Color,
		Gender:           row.Gender,
		Age:              row.Age,
		Features:         row.Features,
		LostTime:         row.LostTime,
		LostLocationText: row.LostLocationText,
		Latitude:         fromNullFloat(row.Latitude),
		Longitude:        fromNullFloat(row.Longitude),
		ContactInfo:      row.ContactInfo,
		Photos:           decodePhotos(row.Photos),
		IsFound:          row.IsFound,
		FoundTime:        fromNullTime(row.FoundTime),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func fromFoundRow(row foundRow) reports.FoundReport {
	return reports.FoundReport{
		ID:                row.ID,
		PetType:           row.PetType,
		Breed:             row.Breed,
		Color:             row.Color,
		Gender:            row.Gender,
		Features:          row.Features,
		FoundTime:         row.FoundTime,
		FoundLocationText: row.FoundLocationText,
		Latitude:          fromNullFloat(row.Latitude),
		Longitude:         fromNullFloat(row.Longitude),
		ContactInfo:       row.ContactInfo,
		Photos:            decodePhotos(row.Photos),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
