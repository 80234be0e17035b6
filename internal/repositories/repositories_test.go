package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/tastemaker/internal/models"
	"github.com/desertthunder/tastemaker/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		first := models.NewRun(0, "catalog.csv", "liked.csv", 42)
		second := models.NewRun(0, "catalog.csv", "liked.csv", 7)

		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if err := repo.Create(second); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if first.ID() == "" || first.ID() == second.ID() {
			t.Error("runs should get distinct IDs")
		}
		if first.Sequence() != 1 || second.Sequence() != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if err := repo.Create(models.NewRun(0, "", "liked.csv", 1)); err == nil {
			t.Error("expected validation error")
		}

		run := models.NewRun(0, "catalog.csv", "liked.csv", 1)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.Sequence() != 1 {
			t.Errorf("failed insert should not consume a sequence, got %d", run.Sequence())
		}
	})

	t.Run("Unknown Sequence Table", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		defer tx.Rollback()

		if _, err := NextSequence(tx, "recommendations"); err == nil {
			t.Error("expected error for a table without a sequence")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun(0, "catalog.csv", "liked.csv", 42)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.CatalogPath() != "catalog.csv" || got.Seed() != 42 || got.Status() != models.RunPending {
			t.Errorf("unexpected run %+v", got)
		}

		bySeq, err := repo.GetBySequence(run.Sequence())
		if err != nil || bySeq.ID() != run.ID() {
			t.Errorf("GetBySequence returned %v, %v", bySeq, err)
		}

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun(0, "catalog.csv", "liked.csv", 42)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		summary := models.RunSummary{CatalogRows: 1000, LikedRows: 30, SyntheticRows: 12, BalancedRows: 126, Accuracy: 0.8}
		run.SetSummary(summary)
		run.SetStatus(models.RunCompleted)
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Summary() != summary || got.Status() != models.RunCompleted {
			t.Errorf("update not persisted: %+v %s", got.Summary(), got.Status())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun(0, "catalog.csv", "liked.csv", 42)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("deleted run should not be found, got %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("second delete should report ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for i := range 3 {
			run := models.NewRun(0, "catalog.csv", "liked.csv", int64(i))
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
			if i == 1 {
				run.SetStatus(models.RunFailed)
				if err := repo.Update(run); err != nil {
					t.Fatalf("failed to update run: %v", err)
				}
			}
		}

		all, err := repo.List(models.RunFilter{})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 || all[0].Sequence() != 3 {
			t.Errorf("expected 3 runs newest first, got %d", len(all))
		}

		failed, err := repo.List(models.RunFilter{Status: models.RunFailed})
		if err != nil || len(failed) != 1 || failed[0].Seed() != 1 {
			t.Errorf("status filter returned %v, %v", failed, err)
		}

		limited, err := repo.List(models.RunFilter{Limit: 2})
		if err != nil || len(limited) != 2 {
			t.Errorf("limit returned %d runs, %v", len(limited), err)
		}

		latest, err := repo.Latest()
		if err != nil || latest.Sequence() != 3 {
			t.Errorf("Latest returned %v, %v", latest, err)
		}
	})
}

func TestRecommendationRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runs := NewRunRepository(db)
	run := models.NewRun(0, "catalog.csv", "liked.csv", 42)
	if err := runs.Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	repo := NewRecommendationRepository(db)
	rows := []*models.PersistedRecommendation{
		models.NewPersistedRecommendation(run.ID(), 2, models.Recommendation{Track: models.Track{ID: "b", Name: "B", Artists: "Y"}, Probability: 0.7}),
		models.NewPersistedRecommendation(run.ID(), 1, models.Recommendation{Track: models.Track{ID: "a", Name: "A", Artists: "X"}, Probability: 0.9}),
	}

	t.Run("CreateBatch", func(t *testing.T) {
		if err := repo.CreateBatch(rows); err != nil {
			t.Fatalf("failed to create batch: %v", err)
		}
		for _, r := range rows {
			if r.ID() == "" {
				t.Error("IDs should be assigned")
			}
		}
	})

	t.Run("ListByRun", func(t *testing.T) {
		got, err := repo.ListByRun(run.ID())
		if err != nil {
			t.Fatalf("failed to list recommendations: %v", err)
		}
		if len(got) != 2 || got[0].TrackID() != "a" || got[1].Rank() != 2 {
			t.Errorf("expected rank order, got %+v", got)
		}
		if rec := got[0].Recommendation(); rec.Probability != 0.9 || rec.Track.Artists != "X" {
			t.Errorf("unexpected recommendation %+v", rec)
		}
	})

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(rows[0].ID())
		if err != nil || got.TrackName() != "B" {
			t.Errorf("Get returned %v, %v", got, err)
		}
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("CreateBatch Rejects Invalid Rows Atomically", func(t *testing.T) {
		bad := []*models.PersistedRecommendation{
			models.NewPersistedRecommendation(run.ID(), 3, models.Recommendation{Track: models.Track{ID: "c"}, Probability: 0.5}),
			models.NewPersistedRecommendation(run.ID(), 4, models.Recommendation{Track: models.Track{ID: "d"}, Probability: 1.5}),
		}
		if err := repo.CreateBatch(bad); err == nil {
			t.Fatal("expected validation error")
		}
		got, _ := repo.ListByRun(run.ID())
		if len(got) != 2 {
			t.Errorf("expected no rows written, have %d", len(got))
		}
	})

	t.Run("Duplicate Rank", func(t *testing.T) {
		dup := []*models.PersistedRecommendation{
			models.NewPersistedRecommendation(run.ID(), 1, models.Recommendation{Track: models.Track{ID: "z"}, Probability: 0.1}),
		}
		if err := repo.CreateBatch(dup); err == nil {
			t.Error("expected unique constraint violation")
		}
	})

	t.Run("DeleteByRun", func(t *testing.T) {
		n, err := repo.DeleteByRun(run.ID())
		if err != nil || n != 2 {
			t.Errorf("DeleteByRun returned %d, %v", n, err)
		}
	})
}

func TestRunRecorder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	recorder := NewRunRecorder(db)

	t.Run("Complete", func(t *testing.T) {
		run, err := recorder.Start("catalog.csv", "liked.csv", 42)
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		recs := []models.Recommendation{
			{Track: models.Track{ID: "a", Name: "A", Artists: "X"}, Probability: 0.9},
			{Track: models.Track{ID: "b", Name: "B", Artists: "Y"}, Probability: 0.8},
		}
		summary := models.RunSummary{CatalogRows: 10, LikedRows: 2, BalancedRows: 6, Accuracy: 1}
		if err := recorder.Complete(run, summary, recs); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}

		got, err := recorder.Runs().Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status() != models.RunCompleted || got.Summary() != summary {
			t.Errorf("unexpected run state %s %+v", got.Status(), got.Summary())
		}

		stored, err := recorder.Recommendations().ListByRun(run.ID())
		if err != nil || len(stored) != 2 || stored[1].TrackID() != "b" || stored[1].Rank() != 2 {
			t.Errorf("unexpected stored recommendations %v, %v", stored, err)
		}
	})

	t.Run("Fail", func(t *testing.T) {
		run, err := recorder.Start("catalog.csv", "liked.csv", 1)
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if err := recorder.Fail(run, models.RunSummary{CatalogRows: 10}); err != nil {
			t.Fatalf("Fail failed: %v", err)
		}

		got, _ := recorder.Runs().Get(run.ID())
		if got.Status() != models.RunFailed || got.Summary().CatalogRows != 10 {
			t.Errorf("unexpected run state %s %+v", got.Status(), got.Summary())
		}
	})
}
