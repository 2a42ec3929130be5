// Command migrate copies publisher requests from the legacy publisher
// database into the portal database.  It runs once, inside a single
// transaction on the target side, and normalizes legacy status values as it
// goes.  Rows that fail to insert are logged and skipped.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/bigdrops/admin-portal/internal/database"
	"github.com/bigdrops/admin-portal/internal/model"
)

func main() {
	_ = godotenv.Load()
	dryRun := flag.Bool("dry-run", false, "read and report without writing")
	flag.Parse()

	srcURL := os.Getenv("PUBLISHER_DATABASE_URL")
	dstURL := os.Getenv("DATABASE_URL")
	if srcURL == "" || dstURL == "" {
		log.Fatal("PUBLISHER_DATABASE_URL and DATABASE_URL are required")
	}

	src, err := sql.Open("pgx", srcURL)
	if err != nil {
		log.Fatalf("source: %v", err)
	}
	defer src.Close()

	dst, err := database.Open(dstURL)
	if err != nil {
		log.Fatalf("target: %v", err)
	}
	defer dst.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := database.EnsureSchema(ctx, dst); err != nil {
		log.Fatalf("schema: %v", err)
	}

	copied, skipped, err := migrate(ctx, src, dst, *dryRun)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("done: %d copied, %d skipped (dry-run=%v)", copied, skipped, *dryRun)
}

// legacyRow mirrors the legacy publisher_requests table.  Nullable columns
// are scanned into pointers so missing values survive the copy as NULLs.
type legacyRow struct {
	PublisherName string
	Email         string
	CompanyName   *string
	TelegramID    *string
	OfferID       *string
	CreativeType  *string
	Priority      *string
	Status        string
	SubmittedData []byte
	AdminNotes    *string
	ClientNotes   *string
	CreatedAt     time.Time
}

func migrate(ctx context.Context, src, dst *sql.DB, dryRun bool) (copied, skipped int, err error) {
	rows, err := src.QueryContext(ctx, `
		SELECT publisher_name, email, company_name, telegram_id, offer_id,
		       creative_type, priority, status, submitted_data,
		       admin_notes, client_notes, created_at
		FROM publisher_requests
		ORDER BY created_at`)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	tx, err := dst.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.PublisherName, &r.Email, &r.CompanyName, &r.TelegramID,
			&r.OfferID, &r.CreativeType, &r.Priority, &r.Status, &r.SubmittedData,
			&r.AdminNotes, &r.ClientNotes, &r.CreatedAt); err != nil {
			log.Printf("scan failed, skipping row: %v", err)
			skipped++
			continue
		}

		status := model.NormalizeStatus(r.Status)
		if status == "" {
			log.Printf("unknown status %q for %s, importing as pending", r.Status, r.Email)
			status = model.StatusPending
		}
		priority := model.PriorityMedium
		if r.Priority != nil && model.ValidPriority(*r.Priority) {
			priority = *r.Priority
		}
		data := r.SubmittedData
		if len(data) == 0 {
			data = []byte("{}")
		}

		if dryRun {
			copied++
			continue
		}

		// A failed statement poisons the transaction, so each insert gets
		// its own savepoint to roll back to.
		if _, err := tx.ExecContext(ctx, `SAVEPOINT row_sp`); err != nil {
			return copied, skipped, err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO publisher_requests
				(publisher_name, email, company_name, telegram_id, offer_id,
				 creative_type, priority, status, submitted_data,
				 admin_notes, client_notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
			r.PublisherName, r.Email, r.CompanyName, r.TelegramID, r.OfferID,
			r.CreativeType, priority, status, data,
			r.AdminNotes, r.ClientNotes, r.CreatedAt)
		if err != nil {
			log.Printf("insert failed for %s, skipping: %v", r.Email, err)
			if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT row_sp`); rbErr != nil {
				return copied, skipped, rbErr
			}
			skipped++
			continue
		}
		copied++
	}
	if err := rows.Err(); err != nil {
		return copied, skipped, err
	}
	if dryRun {
		return copied, skipped, nil
	}
	return copied, skipped, tx.Commit()
}
