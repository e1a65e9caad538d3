package turnos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"figaros/internal/models"
)

// Store is the persistence gateway for appointment rows. Multi-row
// mutations (CreateBatch, DeleteByIDs) are atomic: either every row is
// written or none are.
type Store interface {
	CreateBatch(ctx context.Context, rows []models.Turno) error
	GetByID(ctx context.Context, id string) (*models.Turno, error)
	Update(ctx context.Context, t *models.Turno) error
	ListByGroup(ctx context.Context, grupoID string) ([]models.Turno, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Turno, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

const turnoColumns = "id, nombre, servicio, otro_servicio, fecha, hora, telefono, grupo_id, turno_index, expires_at, created_at"

func (s *MySQLStore) CreateBatch(ctx context.Context, rows []models.Turno) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range rows {
		t := &rows[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO turnos (id, nombre, servicio, otro_servicio, fecha, hora, telefono, grupo_id, turno_index, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Nombre, t.Servicio, t.OtroServicio, t.Fecha, t.Hora, t.Telefono, t.GrupoID, t.TurnoIndex, t.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("insert turno %d: %w", t.TurnoIndex, err)
		}
	}
	return tx.Commit()
}

func (s *MySQLStore) GetByID(ctx context.Context, id string) (*models.Turno, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+turnoColumns+" FROM turnos WHERE id = ?", id)
	return scanTurno(row)
}

func (s *MySQLStore) Update(ctx context.Context, t *models.Turno) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE turnos
		SET nombre = ?, servicio = ?, otro_servicio = ?, fecha = ?, hora = ?, telefono = ?, grupo_id = ?, turno_index = ?, expires_at = ?
		WHERE id = ?`,
		t.Nombre, t.Servicio, t.OtroServicio, t.Fecha, t.Hora, t.Telefono, t.GrupoID, t.TurnoIndex, t.ExpiresAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update turno %s: %w", t.ID, err)
	}
	return nil
}

func (s *MySQLStore) ListByGroup(ctx context.Context, grupoID string) ([]models.Turno, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+turnoColumns+" FROM turnos WHERE grupo_id = ? ORDER BY turno_index ASC", grupoID)
	if err != nil {
		return nil, fmt.Errorf("query group %s: %w", grupoID, err)
	}
	return scanTurnos(rows)
}

func (s *MySQLStore) ListActive(ctx context.Context, now time.Time) ([]models.Turno, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+turnoColumns+" FROM turnos WHERE expires_at > ? ORDER BY fecha ASC, hora ASC, nombre ASC", now)
	if err != nil {
		return nil, fmt.Errorf("query active turnos: %w", err)
	}
	return scanTurnos(rows)
}

func (s *MySQLStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM turnos WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete turno %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *MySQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM turnos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete turno %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *MySQLStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM turnos WHERE expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("delete expired turnos: %w", err)
	}
	return res.RowsAffected()
}

func scanTurno(row *sql.Row) (*models.Turno, error) {
	var t models.Turno
	var otro, telefono, grupo sql.NullString
	err := row.Scan(&t.ID, &t.Nombre, &t.Servicio, &otro, &t.Fecha, &t.Hora, &telefono, &grupo, &t.TurnoIndex, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	applyNulls(&t, otro, telefono, grupo)
	return &t, nil
}

func scanTurnos(rows *sql.Rows) ([]models.Turno, error) {
	defer rows.Close()
	var out []models.Turno
	for rows.Next() {
		var t models.Turno
		var otro, telefono, grupo sql.NullString
		if err := rows.Scan(&t.ID, &t.Nombre, &t.Servicio, &otro, &t.Fecha, &t.Hora, &telefono, &grupo, &t.TurnoIndex, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turno row: %w", err)
		}
		applyNulls(&t, otro, telefono, grupo)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turno rows: %w", err)
	}
	return out, nil
}

func applyNulls(t *models.Turno, otro, telefono, grupo sql.NullString) {
	if otro.Valid {
		t.OtroServicio = &otro.String
	}
	if telefono.Valid {
		t.Telefono = &telefono.String
	}
	if grupo.Valid {
		t.GrupoID = &grupo.String
	}
}
