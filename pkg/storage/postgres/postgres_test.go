package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/pkg/storage"
	"github.com/papercomputeco/quizpaper/pkg/storage/postgres"
	testutils "github.com/papercomputeco/quizpaper/pkg/utils/test"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("QUIZPAPER_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("QUIZPAPER_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	testutils.DescribeDriver(func() storage.Driver {
		ctx := context.Background()
		d, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())

		// Clean all papers before each test for isolation.
		_, err = d.Driver.DB().ExecContext(ctx, "DELETE FROM papers")
		Expect(err).NotTo(HaveOccurred())
		return d
	})
})
