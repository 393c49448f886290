// Package database provides the SQLite connection used by Gray Timer's
// audit trail.
//
// The timer itself is never stored here; it lives only in process memory.
// The database records who did what to the timer and when.
//
// Migrations are plain SQL files embedded into the binary by the
// top-level migrations package and applied in version order:
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/graytimer.db", WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
