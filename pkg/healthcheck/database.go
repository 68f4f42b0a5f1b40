package healthcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/serum-errors/go-serum"

	"github.com/warptools/noidwrap/pkg/noid"
)

// DatabaseFile is where noid keeps a minter database, relative to the database directory.
var DatabaseFile = filepath.Join("NOID", "noid.bdb")

// DatabaseCheck looks at the database directory.
type DatabaseCheck struct {
	Dir string
}

func (c *DatabaseCheck) String() string {
	return fmt.Sprintf("Minter Database: %q", c.Dir)
}

// Run checks the directory exists and is writable, and says whether it holds a minter database.
//
// Errors:
//
//   - noidwrap-healthcheck-run-okay -- when a minter database is present
//   - noidwrap-healthcheck-run-fail -- when the directory is missing or unwritable
//   - noidwrap-healthcheck-run-ambiguous -- when the directory has no minter database yet
func (c *DatabaseCheck) Run(ctx context.Context) error {
	fi, err := os.Stat(c.Dir)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("database directory {{path|q}} is not accessible"),
			serum.WithDetail("path", c.Dir),
		)
	}
	if !fi.IsDir() {
		return serum.Error(CodeRunFailure,
			serum.WithMessageTemplate("database path {{path|q}} is not a directory"),
			serum.WithDetail("path", c.Dir),
		)
	}
	if err := writeAccess(c.Dir); err != nil {
		return err
	}
	dbFile := filepath.Join(c.Dir, DatabaseFile)
	if _, err := os.Stat(dbFile); err != nil {
		return serum.Error(CodeRunAmbiguous,
			serum.WithMessageTemplate("no minter database in {{path|q}}; run dbcreate first"),
			serum.WithDetail("path", c.Dir),
		)
	}
	return serum.Errorf(CodeRunOkay, "database: %s", dbFile)
}

// DBInfoCheck asks noid itself to describe the database.
type DBInfoCheck struct {
	Client *noid.Client
}

func (c *DBInfoCheck) String() string {
	return "Minter Database Info"
}

// Run runs "dbinfo brief" and reports a summary of what comes back.
//
// Errors:
//
//   - noidwrap-healthcheck-run-okay -- when noid answers
//   - noidwrap-healthcheck-run-fail -- when noid fails
func (c *DBInfoCheck) Run(ctx context.Context) error {
	report, err := c.Client.DBInfo(ctx, noid.DBInfoBrief)
	if err != nil {
		return serum.Errorf(CodeRunFailure, "noid dbinfo failed: %w", err)
	}
	summary := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		summary = append(summary, e.Key+"="+e.Value)
	}
	if len(summary) == 0 {
		return serum.Errorf(CodeRunAmbiguous, "noid answered, but reported nothing")
	}
	return serum.Errorf(CodeRunOkay, "%s", strings.Join(summary, ", "))
}
