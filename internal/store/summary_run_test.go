package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"phl311.app/bot/common/logger"
	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/store"
)

var _ = Describe("SummaryRunStore", func() {
	var (
		ctx  context.Context
		q    *fakeQuerier
		runs store.SummaryRunStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		q = &fakeQuerier{}
		runs = store.NewStores(q).SummaryRuns()
	})

	It("starts runs as running", func() {
		started := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
		run := &model.SummaryRun{ID: 5, StartedAt: started}

		Expect(runs.Start(ctx, run)).To(Succeed())
		Expect(run.Status).To(Equal(model.SummaryRunStatusRunning))
		Expect(q.execs[0].args).To(Equal([]any{int64(5), started, "running"}))
	})

	It("finishes runs with their outcome", func() {
		q.execFn = func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 1"), nil
		}
		errMsg := logger.Ptr("gitlab down")

		Expect(runs.Finish(ctx, 5, model.SummaryRunStatusFailed, 2, errMsg)).To(Succeed())
		Expect(q.execs[0].args).To(Equal([]any{int64(5), "failed", 2, errMsg}))
	})

	It("reports unknown runs", func() {
		q.execFn = func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		Expect(runs.Finish(ctx, 5, model.SummaryRunStatusSucceeded, 1, nil)).To(MatchError(store.ErrNotFound))
	})

	It("returns the latest run", func() {
		q.queryRowFn = func(context.Context, string, ...any) pgx.Row {
			return fakeRow{scanFn: func(dest ...any) error {
				*dest[0].(*int64) = 5
				*dest[3].(*string) = "succeeded"
				*dest[4].(*int) = 7
				return nil
			}}
		}
		run, err := runs.Latest(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.ID).To(Equal(int64(5)))
		Expect(run.Status).To(Equal(model.SummaryRunStatusSucceeded))
		Expect(run.Posts).To(Equal(7))
	})

	It("maps an empty table to ErrNotFound", func() {
		_, err := runs.Latest(ctx)
		Expect(err).To(MatchError(store.ErrNotFound))
	})
})
