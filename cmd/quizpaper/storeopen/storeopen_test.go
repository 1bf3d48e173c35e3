package storeopen_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quizpaper/cmd/quizpaper/sqlitepath"
	"github.com/papercomputeco/quizpaper/cmd/quizpaper/storeopen"
	"github.com/papercomputeco/quizpaper/pkg/config"
	"github.com/papercomputeco/quizpaper/pkg/storage/inmemory"
	"github.com/papercomputeco/quizpaper/pkg/storage/sqlite"
)

var _ = Describe("Open", func() {
	ctx := context.Background()

	It("opens the SQLite file in the config dir by default", func() {
		dir := GinkgoT().TempDir()

		driver, err := storeopen.Open(ctx, config.StorageConfig{Driver: config.StorageSQLite}, dir, nil)
		Expect(err).NotTo(HaveOccurred())
		defer driver.Close()

		Expect(driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(filepath.Join(dir, sqlitepath.FileName)).To(BeAnExistingFile())
	})

	It("opens the in-memory driver", func() {
		driver, err := storeopen.Open(ctx, config.StorageConfig{Driver: config.StorageMemory}, "", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	It("requires a DSN for postgres", func() {
		_, err := storeopen.Open(ctx, config.StorageConfig{Driver: config.StoragePostgres}, "", nil)
		Expect(err).To(MatchError(ContainSubstring("postgres_dsn")))
	})

	It("rejects unknown drivers", func() {
		_, err := storeopen.Open(ctx, config.StorageConfig{Driver: "mongo"}, "", nil)
		Expect(err).To(HaveOccurred())
	})
})
