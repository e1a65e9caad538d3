package turnos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"figaros/internal/models"
)

const (
	MinBatchSize = 1
	MaxBatchSize = 20

	// Rows expire a week after the batch that produced them was written.
	rowTTL = 7 * 24 * time.Hour
)

var ErrBatchSize = errors.New("batch size out of range")

// BatchInput carries the shared fields of a new booking batch. Fecha must
// already be validated as "YYYY-MM-DD" and Hora as "HH:MM".
type BatchInput struct {
	Nombre       string
	Servicio     string
	OtroServicio string
	Fecha        string
	Hora         string
	Telefono     string
	NTurnos      int
}

// UpdateInput is a partial edit. Nil pointers mean "no change"; NTurnos,
// when present, requests a resize of the row's whole group.
type UpdateInput struct {
	Nombre       *string
	Servicio     *string
	OtroServicio *string
	Fecha        *string
	Hora         *string
	Telefono     *string
	NTurnos      *int
}

// Reconciler converges booking groups toward a requested row count while
// keeping the shared fields identical across the group.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// CreateBatch writes N rows under one fresh group id, indexed 1..N.
// All-or-nothing: a failed insert rolls the whole batch back.
func (r *Reconciler) CreateBatch(ctx context.Context, in BatchInput) (string, int, error) {
	if in.NTurnos < MinBatchSize || in.NTurnos > MaxBatchSize {
		return "", 0, ErrBatchSize
	}
	fecha, err := parseFecha(in.Fecha)
	if err != nil {
		return "", 0, err
	}

	// When the service is "otros" with a concrete description, the
	// description becomes the stored service and is kept in otro_servicio
	// as well; any other service leaves otro_servicio empty.
	servicio := in.Servicio
	var otro *string
	if in.Servicio == "otros" {
		if v := strings.TrimSpace(in.OtroServicio); v != "" {
			servicio = v
			otro = &v
		}
	}

	groupID := uuid.NewString()
	now := time.Now().UTC()
	expires := now.Add(rowTTL)

	rows := make([]models.Turno, 0, in.NTurnos)
	for i := 1; i <= in.NTurnos; i++ {
		rows = append(rows, models.Turno{
			ID:           uuid.NewString(),
			Nombre:       in.Nombre,
			Servicio:     servicio,
			OtroServicio: otro,
			Fecha:        fecha,
			Hora:         in.Hora,
			Telefono:     trimToNil(in.Telefono),
			GrupoID:      &groupID,
			TurnoIndex:   i,
			ExpiresAt:    expires,
		})
	}

	if err := r.store.CreateBatch(ctx, rows); err != nil {
		return "", 0, fmt.Errorf("create batch: %w", err)
	}
	log.WithFields(log.Fields{"grupo_id": groupID, "count": in.NTurnos}).Info("turno batch created")
	return groupID, in.NTurnos, nil
}

// Update applies a partial edit to one row and, when a resize count is
// supplied, converges the row's group to that size. The returned row
// reflects both the edit and any group assignment the resize performed.
func (r *Reconciler) Update(ctx context.Context, id string, in UpdateInput) (*models.Turno, error) {
	target, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyEdits(target, in)
	if err := r.store.Update(ctx, target); err != nil {
		return nil, err
	}

	if in.NTurnos == nil {
		return target, nil
	}
	if err := r.resize(ctx, target, clampBatchSize(*in.NTurnos)); err != nil {
		return nil, err
	}

	// A shrink can delete the edited row itself; the resize still committed,
	// so report the group's first surviving row instead of a missing one.
	after, err := r.store.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		rows, lerr := r.store.ListByGroup(ctx, *target.GrupoID)
		if lerr != nil {
			return nil, lerr
		}
		if len(rows) > 0 {
			return &rows[0], nil
		}
	}
	return after, err
}

// resize converges target's group to newCount rows. New rows copy the
// post-edit shared fields and continue numbering after the highest existing
// index; shrinking keeps the first newCount rows by index order.
func (r *Reconciler) resize(ctx context.Context, target *models.Turno, newCount int) error {
	// The group id must be persisted on the target before querying by it,
	// so a previously ungrouped row is always part of its own group.
	if target.GrupoID == nil {
		groupID := uuid.NewString()
		target.GrupoID = &groupID
		if target.TurnoIndex == 0 {
			target.TurnoIndex = 1
		}
		if err := r.store.Update(ctx, target); err != nil {
			return fmt.Errorf("assign group: %w", err)
		}
	}

	rows, err := r.store.ListByGroup(ctx, *target.GrupoID)
	if err != nil {
		return err
	}

	diff := newCount - len(rows)
	log.WithFields(log.Fields{"grupo_id": *target.GrupoID, "size": len(rows), "diff": diff}).Info("resizing turno batch")

	switch {
	case diff > 0:
		maxIdx := 0
		for _, row := range rows {
			if row.TurnoIndex > maxIdx {
				maxIdx = row.TurnoIndex
			}
		}
		expires := time.Now().UTC().Add(rowTTL)
		added := make([]models.Turno, 0, diff)
		for i := 1; i <= diff; i++ {
			added = append(added, models.Turno{
				ID:           uuid.NewString(),
				Nombre:       target.Nombre,
				Servicio:     target.Servicio,
				OtroServicio: target.OtroServicio,
				Fecha:        target.Fecha,
				Hora:         target.Hora,
				Telefono:     target.Telefono,
				GrupoID:      target.GrupoID,
				TurnoIndex:   maxIdx + i,
				ExpiresAt:    expires,
			})
		}
		return r.store.CreateBatch(ctx, added)
	case diff < 0:
		ids := make([]string, 0, -diff)
		for _, row := range rows[newCount:] {
			ids = append(ids, row.ID)
		}
		return r.store.DeleteByIDs(ctx, ids)
	}
	return nil
}

// List returns every row that has not expired yet, ordered by fecha, hora
// and nombre ascending.
func (r *Reconciler) List(ctx context.Context) ([]models.Turno, error) {
	return r.store.ListActive(ctx, time.Now().UTC())
}

// Delete removes a single row. Sibling rows keep their indices, so a group
// can be left with a gap; resize never renumbers survivors either.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}

func applyEdits(t *models.Turno, in UpdateInput) {
	if in.Nombre != nil {
		t.Nombre = *in.Nombre
	}
	if in.Servicio != nil {
		t.Servicio = *in.Servicio
	}
	if in.OtroServicio != nil {
		t.OtroServicio = trimToNil(*in.OtroServicio)
	}
	// Switching the service to "otros" without a new description keeps the
	// row's previous one instead of clearing it; that is what load-modify-
	// write gives us, so nothing to do here.
	if in.Fecha != nil {
		if fecha, err := parseFecha(*in.Fecha); err == nil {
			t.Fecha = fecha
		}
	}
	if in.Hora != nil {
		t.Hora = *in.Hora
	}
	if in.Telefono != nil {
		t.Telefono = trimToNil(*in.Telefono)
	}
}

func clampBatchSize(n int) int {
	if n < MinBatchSize {
		return MinBatchSize
	}
	if n > MaxBatchSize {
		return MaxBatchSize
	}
	return n
}

// parseFecha pins a "YYYY-MM-DD" date to UTC midnight.
func parseFecha(s string) (time.Time, error) {
	fecha, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fecha %q: %w", s, err)
	}
	return fecha, nil
}

func trimToNil(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}
